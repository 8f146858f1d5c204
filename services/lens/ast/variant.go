// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Variant selects the grammar used to parse a document.
type Variant int

const (
	// VariantTypeScript parses plain TypeScript. Embedded markup is a syntax error.
	VariantTypeScript Variant = iota

	// VariantTSX parses JSX-flavored TypeScript.
	VariantTSX
)

// Editor language identifiers for the two supported variants.
const (
	LanguageIDTypeScript      = "typescript"
	LanguageIDTypeScriptReact = "typescriptreact"
)

// String returns the grammar name of the variant.
func (v Variant) String() string {
	switch v {
	case VariantTypeScript:
		return "typescript"
	case VariantTSX:
		return "tsx"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// language returns the tree-sitter grammar for the variant.
func (v Variant) language() (*sitter.Language, error) {
	switch v {
	case VariantTypeScript:
		return typescript.GetLanguage(), nil
	case VariantTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
}

// VariantFromJSX returns VariantTSX when jsx is true and VariantTypeScript otherwise.
func VariantFromJSX(jsx bool) Variant {
	if jsx {
		return VariantTSX
	}
	return VariantTypeScript
}

// VariantForPath picks the variant from a file extension.
//
// Outputs:
//   - Variant: VariantTSX for ".tsx", VariantTypeScript for ".ts", ".mts" and ".cts".
//   - bool: False when the extension is not a TypeScript extension.
func VariantForPath(path string) (Variant, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return VariantTSX, true
	case ".ts", ".mts", ".cts":
		return VariantTypeScript, true
	default:
		return VariantTypeScript, false
	}
}

// VariantForLanguageID maps an editor language identifier to a variant.
// Only "typescript" and "typescriptreact" are supported.
func VariantForLanguageID(id string) (Variant, bool) {
	switch id {
	case LanguageIDTypeScript:
		return VariantTypeScript, true
	case LanguageIDTypeScriptReact:
		return VariantTSX, true
	default:
		return VariantTypeScript, false
	}
}
