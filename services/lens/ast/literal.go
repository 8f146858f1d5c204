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
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// stringLiteralValue returns the decoded value of a tree-sitter "string" node.
//
// The grammar splits a literal into string_fragment and escape_sequence
// children; quotes are anonymous children and are dropped. Escaped UTF-16
// surrogate pairs ("\uD83D\uDE00") arrive as two escape_sequence nodes and are
// recombined here.
func stringLiteralValue(node *sitter.Node, content []byte) string {
	var b literalBuilder
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case tsNodeStringFragment:
			b.writeString(child.Content(content))
		case tsNodeEscapeSequence:
			for _, r := range decodeEscape(child.Content(content)) {
				b.writeRune(r)
			}
		}
	}
	return b.String()
}

// literalBuilder accumulates decoded literal text, pairing surrogate halves.
type literalBuilder struct {
	sb   strings.Builder
	high rune
}

func (b *literalBuilder) flushHigh() {
	if b.high != 0 {
		b.sb.WriteRune(utf8.RuneError)
		b.high = 0
	}
}

func (b *literalBuilder) writeString(s string) {
	b.flushHigh()
	b.sb.WriteString(s)
}

func (b *literalBuilder) writeRune(r rune) {
	if b.high != 0 {
		if r >= 0xDC00 && r <= 0xDFFF {
			b.sb.WriteRune(utf16.DecodeRune(b.high, r))
			b.high = 0
			return
		}
		b.flushHigh()
	}
	if r >= 0xD800 && r <= 0xDBFF {
		b.high = r
		return
	}
	b.sb.WriteRune(r)
}

func (b *literalBuilder) String() string {
	b.flushHigh()
	return b.sb.String()
}

// decodeEscape decodes one JavaScript escape sequence, backslash included.
// A line continuation decodes to nothing. Unknown escapes are identity escapes.
func decodeEscape(seq string) []rune {
	if len(seq) < 2 || seq[0] != '\\' {
		return []rune(seq)
	}
	body := seq[1:]
	switch body[0] {
	case '\n', '\r':
		return nil
	case 'b':
		return []rune{'\b'}
	case 'f':
		return []rune{'\f'}
	case 'n':
		return []rune{'\n'}
	case 'r':
		return []rune{'\r'}
	case 't':
		return []rune{'\t'}
	case 'v':
		return []rune{'\v'}
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// \0 and legacy octal escapes.
		if v, err := strconv.ParseUint(body, 8, 32); err == nil {
			return []rune{rune(v)}
		}
	case 'x':
		if v, err := strconv.ParseUint(body[1:], 16, 32); err == nil && len(body) == 3 {
			return []rune{rune(v)}
		}
	case 'u':
		hex := body[1:]
		if strings.HasPrefix(hex, "{") && strings.HasSuffix(hex, "}") {
			hex = hex[1 : len(hex)-1]
		}
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil && v <= utf8.MaxRune {
			return []rune{rune(v)}
		}
	}
	if r, _ := utf8.DecodeRuneInString(body); r == '\u2028' || r == '\u2029' {
		return nil
	}
	return []rune(body)
}
