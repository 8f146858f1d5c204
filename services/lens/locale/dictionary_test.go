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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Found(t *testing.T) {
	dict := Dictionary{"greeting": "こんにちは"}

	res := Resolve(dict, "greeting")

	assert.True(t, res.Found)
	assert.Equal(t, "greeting", res.Key)
	assert.Equal(t, "こんにちは", res.Text)
	assert.Equal(t, "こんにちは", res.Display(""))
}

func TestResolve_Missing(t *testing.T) {
	res := Resolve(Dictionary{"greeting": "hi"}, "farewell")

	assert.False(t, res.Found)
	assert.Equal(t, "farewell", res.Key)
	assert.Empty(t, res.Text)
	assert.Equal(t, NotFoundText, res.Display(""))
	assert.Equal(t, "(missing)", res.Display("(missing)"))
}

func TestResolve_NilAndEmptyDictionary(t *testing.T) {
	for name, dict := range map[string]Dictionary{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			res := Resolve(dict, "anything")
			assert.False(t, res.Found)
		})
	}
}

func TestResolve_ValueReturnedVerbatim(t *testing.T) {
	dict := Dictionary{
		"empty":  "",
		"spaced": "  padded  ",
		"multi":  "line one\nline two",
	}

	for key, want := range dict {
		res := Resolve(dict, key)
		assert.True(t, res.Found, key)
		assert.Equal(t, want, res.Text, key)
	}

	// An empty translation is still a translation.
	assert.Equal(t, "", Resolve(dict, "empty").Display("fallback"))
}

func TestResolve_KeysAreExact(t *testing.T) {
	dict := Dictionary{"Greeting": "hi"}

	assert.False(t, Resolve(dict, "greeting").Found)
	assert.False(t, Resolve(dict, " Greeting").Found)
	assert.True(t, Resolve(dict, "Greeting").Found)
}
