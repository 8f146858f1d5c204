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
	"errors"
	"fmt"
)

// Sentinel errors for extraction.
var (
	// ErrUnknownVariant indicates a Variant value outside the supported set.
	ErrUnknownVariant = errors.New("unknown source variant")
)

// Range is a half-open interval [Start, End) of byte offsets into the source.
//
// Convention: a call site's range spans the full call expression, so End is
// the offset just past the closing parenthesis.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether offset lies inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Validate checks that the range is non-empty and lies within a source of
// sourceLen bytes.
func (r Range) Validate(sourceLen int) error {
	if r.Start < 0 || r.End > sourceLen || r.Start >= r.End {
		return fmt.Errorf("range [%d, %d) invalid for source of %d bytes", r.Start, r.End, sourceLen)
	}
	return nil
}

// Position is a zero-based line and byte column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// CallSite is a matched translation call and the literal keys it references.
//
// Keys holds at least one entry, in traversal order. For a conditional
// argument the false branch is collected before the true branch, so
// t(c ? "a" : "b") yields ["b", "a"]. Duplicates are kept.
type CallSite struct {
	// Range spans the full call expression.
	Range Range `json:"range"`

	// Start and End are the line/column positions of Range.
	Start Position `json:"start"`
	End   Position `json:"end"`

	// Callee is the matched name: "t" for a simple call, "ns.method" for a
	// namespaced call.
	Callee string `json:"callee"`

	// Keys are the literal keys reachable from the key-bearing argument.
	Keys []string `json:"keys"`
}
