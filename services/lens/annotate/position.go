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
	"unicode/utf16"
	"unicode/utf8"

	"github.com/AleutianAI/i18nlens/services/lens/ast"
)

// UTF16Position converts a byte offset into a zero-based line and a column
// counted in UTF-16 code units, the addressing used by LSP and VS Code.
//
// Offsets past the end of source clamp to the end. An offset inside a
// multi-byte character is treated as the start of that character. Lines are
// split on "\n" only; a "\r" before it counts as a column.
func UTF16Position(source []byte, offset int) ast.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}

	var pos ast.Position
	for i := 0; i < offset; {
		if source[i] == '\n' {
			pos.Line++
			pos.Column = 0
			i++
			continue
		}
		r, size := utf8.DecodeRune(source[i:])
		if i+size > offset {
			break
		}
		if n := utf16.RuneLen(r); n > 0 {
			pos.Column += n
		} else {
			pos.Column++
		}
		i += size
	}
	return pos
}

// UTF16Range converts an annotation's byte range into UTF-16 positions.
func UTF16Range(source []byte, r ast.Range) (start, end ast.Position) {
	return UTF16Position(source, r.Start), UTF16Position(source, r.End)
}
