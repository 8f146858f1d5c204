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

// DefaultSimpleCallName is the translate helper matched when no names are configured.
const DefaultSimpleCallName = "t"

// CallPatterns configures which calls carry a translation key.
//
// Description:
//
//	SimpleNames lists bare function names (t("key")). NamespacedCalls maps an
//	object identifier to the method names allowed on it
//	(snackbar.show("key")). In both shapes the first argument carries the key.
//
// Thread Safety: CallPatterns is a value; the extractor never mutates it.
type CallPatterns struct {
	SimpleNames     []string            `json:"simple_call_names" yaml:"simple_call_names"`
	NamespacedCalls map[string][]string `json:"object_property_calls" yaml:"object_property_calls"`
}

// DefaultCallPatterns matches t(...) and no namespaced calls.
func DefaultCallPatterns() CallPatterns {
	return CallPatterns{
		SimpleNames:     []string{DefaultSimpleCallName},
		NamespacedCalls: map[string][]string{},
	}
}

// IsEmpty reports whether no call shape can match.
func (p CallPatterns) IsEmpty() bool {
	if len(p.SimpleNames) > 0 {
		return false
	}
	for _, methods := range p.NamespacedCalls {
		if len(methods) > 0 {
			return false
		}
	}
	return true
}

// patternSet is the membership-test form of CallPatterns, built once per extraction.
type patternSet struct {
	simple     map[string]struct{}
	namespaced map[string]map[string]struct{}
}

func (p CallPatterns) compile() *patternSet {
	set := &patternSet{
		simple:     make(map[string]struct{}, len(p.SimpleNames)),
		namespaced: make(map[string]map[string]struct{}, len(p.NamespacedCalls)),
	}
	for _, name := range p.SimpleNames {
		set.simple[name] = struct{}{}
	}
	for object, methods := range p.NamespacedCalls {
		if len(methods) == 0 {
			continue
		}
		allowed := make(map[string]struct{}, len(methods))
		for _, m := range methods {
			allowed[m] = struct{}{}
		}
		set.namespaced[object] = allowed
	}
	return set
}

func (s *patternSet) matchSimple(name string) bool {
	_, ok := s.simple[name]
	return ok
}

func (s *patternSet) matchNamespaced(object, method string) bool {
	methods, ok := s.namespaced[object]
	if !ok {
		return false
	}
	_, ok = methods[method]
	return ok
}
