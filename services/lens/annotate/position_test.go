// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package annotate

import (
	"testing"

	"github.com/AleutianAI/i18nlens/services/lens/ast"
)

func TestUTF16Position(t *testing.T) {
	// Bytes: a b \n é(2) 😀(4) x
	source := []byte("ab\né😀x")

	tests := []struct {
		name   string
		offset int
		want   ast.Position
	}{
		{"start", 0, ast.Position{Line: 0, Column: 0}},
		{"before newline", 2, ast.Position{Line: 0, Column: 2}},
		{"second line", 3, ast.Position{Line: 1, Column: 0}},
		{"after two-byte rune", 5, ast.Position{Line: 1, Column: 1}},
		{"inside four-byte rune", 7, ast.Position{Line: 1, Column: 1}},
		{"after surrogate pair", 9, ast.Position{Line: 1, Column: 3}},
		{"end", 10, ast.Position{Line: 1, Column: 4}},
		{"past end clamps", 100, ast.Position{Line: 1, Column: 4}},
		{"negative clamps", -1, ast.Position{Line: 0, Column: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UTF16Position(source, tt.offset); got != tt.want {
				t.Errorf("UTF16Position(%d) = %+v, want %+v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestUTF16Range(t *testing.T) {
	source := []byte("const s = t(\"é\");")
	start, end := UTF16Range(source, ast.Range{Start: 10, End: len(source) - 1})

	if start != (ast.Position{Line: 0, Column: 10}) {
		t.Errorf("start = %+v", start)
	}
	// 17 bytes before ';' but é is one UTF-16 unit in two bytes.
	if end != (ast.Position{Line: 0, Column: 16}) {
		t.Errorf("end = %+v", end)
	}
}
