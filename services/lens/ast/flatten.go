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
	sitter "github.com/smacker/go-tree-sitter"
)

// exprKind is the closed set of argument shapes conditional flattening handles.
type exprKind int

const (
	exprOther exprKind = iota
	exprConditional
	exprParenthesized
	exprStringLiteral
)

func classifyExpr(node *sitter.Node) exprKind {
	switch node.Type() {
	case tsNodeTernaryExpression:
		return exprConditional
	case tsNodeParenthesizedExpression:
		return exprParenthesized
	case tsNodeString:
		return exprStringLiteral
	default:
		return exprOther
	}
}

// collectKeys appends every string literal statically reachable from node.
//
// Both branches of a conditional are collected, false branch first. Any
// other expression (template string, identifier, call) contributes nothing.
func collectKeys(node *sitter.Node, content []byte, keys []string) []string {
	if node == nil {
		return keys
	}
	switch classifyExpr(node) {
	case exprConditional:
		keys = collectKeys(node.ChildByFieldName("alternative"), content, keys)
		keys = collectKeys(node.ChildByFieldName("consequence"), content, keys)
	case exprParenthesized:
		keys = collectKeys(innerExpression(node), content, keys)
	case exprStringLiteral:
		keys = append(keys, stringLiteralValue(node, content))
	case exprOther:
	}
	return keys
}

// innerExpression returns the first named non-comment child of a parenthesized expression.
func innerExpression(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Type() != tsNodeComment {
			return child
		}
	}
	return nil
}
