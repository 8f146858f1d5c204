// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package locale

// NotFoundText is the default text shown for a key with no translation.
const NotFoundText = "No translation"

// Dictionary maps translation keys to translated text for one locale.
//
// A nil Dictionary is valid and behaves as an empty one.
type Dictionary map[string]string

// Lookup returns the translation for key and whether it exists.
func (d Dictionary) Lookup(key string) (string, bool) {
	text, ok := d[key]
	return text, ok
}

// Resolution is the outcome of resolving one key.
type Resolution struct {
	Key   string `json:"key"`
	Text  string `json:"text,omitempty"`
	Found bool   `json:"found"`
}

// Display returns the translated text, or notFound when the key was missing.
// An empty notFound falls back to NotFoundText.
func (r Resolution) Display(notFound string) string {
	if r.Found {
		return r.Text
	}
	if notFound == "" {
		return NotFoundText
	}
	return notFound
}

// Resolve looks key up in d.
//
// The translated value is returned verbatim. A missing key, including any
// lookup against an empty or nil dictionary, yields Found == false. Resolve
// never fails.
//
// Thread Safety: Safe for concurrent use as long as d is not mutated.
func Resolve(d Dictionary, key string) Resolution {
	text, ok := d.Lookup(key)
	recordLookup(ok)
	return Resolution{Key: key, Text: text, Found: ok}
}
