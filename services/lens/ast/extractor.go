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
	"context"
	"fmt"
	"log/slog"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Tree-sitter node types used by the extractor. Both the typescript and tsx
// grammars share these names.
const (
	tsNodeCallExpression          = "call_expression"
	tsNodeMemberExpression        = "member_expression"
	tsNodeIdentifier              = "identifier"
	tsNodePropertyIdentifier      = "property_identifier"
	tsNodeArguments               = "arguments"
	tsNodeTernaryExpression       = "ternary_expression"
	tsNodeParenthesizedExpression = "parenthesized_expression"
	tsNodeString                  = "string"
	tsNodeStringFragment          = "string_fragment"
	tsNodeEscapeSequence          = "escape_sequence"
	tsNodeComment                 = "comment"
)

// cancelCheckInterval is how many nodes are visited between context checks.
const cancelCheckInterval = 256

// ExtractorOption configures an Extractor instance.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger used for debug diagnostics. A nil logger is ignored.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extractor finds translation call sites in TypeScript and TSX source.
//
// Description:
//
//	Extractor parses source with tree-sitter and walks every node of the
//	resulting tree. Calls matching the configured CallPatterns have their
//	first argument flattened through conditional expressions into the set
//	of string-literal keys it can evaluate to.
//
// Thread Safety:
//
//	Extractor holds no per-call state. Each Extract call creates its own
//	tree-sitter parser, so one Extractor may be shared across goroutines.
//
// Example:
//
//	ex := NewExtractor()
//	sites, err := ex.Extract(ctx, []byte(`t(ok ? "saved" : "failed")`), VariantTypeScript, DefaultCallPatterns())
//	// sites[0].Keys == []string{"failed", "saved"}
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the call sites in source that match patterns.
//
// Description:
//
//	The source is parsed with the grammar selected by variant. Syntax errors
//	do not fail extraction: tree-sitter always yields a best-effort tree, and
//	that tree is walked in full. A matched call produces a CallSite only when
//	its first argument yields at least one literal key.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before parsing and periodically
//     during the walk.
//   - source: Complete document text.
//   - variant: VariantTypeScript or VariantTSX.
//   - patterns: Call shapes that carry a translation key.
//
// Outputs:
//   - []CallSite: Matched call sites in pre-order (outer calls before the
//     calls nested in them, then left to right). Never nil on success.
//   - error: ErrUnknownVariant for an invalid variant, or the context error
//     if ctx ends before the walk completes.
//
// Thread Safety: Safe for concurrent use.
func (e *Extractor) Extract(ctx context.Context, source []byte, variant Variant, patterns CallPatterns) ([]CallSite, error) {
	ctx, span := startExtractSpan(ctx, variant, len(source))
	defer span.End()

	start := time.Now()
	sites, syntaxErrors, err := e.extract(ctx, source, variant, patterns)
	recordExtractMetrics(variant, time.Since(start), len(sites), syntaxErrors, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("call_sites", len(sites)),
		attribute.Bool("syntax_errors", syntaxErrors),
	)
	return sites, nil
}

func (e *Extractor) extract(ctx context.Context, source []byte, variant Variant, patterns CallPatterns) ([]CallSite, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("extract canceled before start: %w", err)
	}

	lang, err := variant.language()
	if err != nil {
		return nil, false, err
	}

	sites := make([]CallSite, 0)
	if len(source) == 0 || patterns.IsEmpty() {
		return sites, false, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, false, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return sites, false, nil
	}

	syntaxErrors := root.HasError()
	if syntaxErrors {
		e.logger.Debug("source contains syntax errors, walking best-effort tree",
			slog.String("variant", variant.String()),
			slog.Int("size_bytes", len(source)),
		)
	}

	sites, err = e.walk(ctx, root, source, patterns.compile(), sites)
	if err != nil {
		return nil, syntaxErrors, err
	}
	return sites, syntaxErrors, nil
}

// walk visits every node of the tree in pre-order using an explicit stack.
//
// The key-bearing argument of a matched call is consumed by collectKeys and
// is not pushed; every other child of the call is walked normally, so
// matches nested in callee chains or later arguments are still found.
func (e *Extractor) walk(ctx context.Context, root *sitter.Node, content []byte, patterns *patternSet, sites []CallSite) ([]CallSite, error) {
	stack := make([]*sitter.Node, 0, 64)
	stack = append(stack, root)

	visited := 0
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visited++
		if visited%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				e.logger.Debug("context canceled during call-site walk",
					slog.Int("nodes_visited", visited),
					slog.Int("call_sites", len(sites)),
				)
				return nil, fmt.Errorf("extract canceled: %w", err)
			}
		}

		if node.Type() != tsNodeCallExpression {
			stack = pushChildren(stack, node)
			continue
		}

		callee, matched := matchCall(node, content, patterns)
		if !matched {
			stack = pushChildren(stack, node)
			continue
		}

		arg, argIndex := keyArgument(node)
		if arg != nil {
			if keys := collectKeys(arg, content, nil); len(keys) > 0 {
				if site, ok := newCallSite(node, callee, keys); ok {
					sites = append(sites, site)
				}
			}
		}
		stack = pushCallChildren(stack, node, argIndex)
	}

	return sites, nil
}

// pushChildren pushes all children in reverse so they pop left to right.
func pushChildren(stack []*sitter.Node, node *sitter.Node) []*sitter.Node {
	for i := int(node.ChildCount()) - 1; i >= 0; i-- {
		if child := node.Child(i); child != nil {
			stack = append(stack, child)
		}
	}
	return stack
}

// pushCallChildren pushes the children of a matched call, replacing its
// arguments node with the arguments other than the one at skipIndex.
func pushCallChildren(stack []*sitter.Node, call *sitter.Node, skipIndex int) []*sitter.Node {
	for i := int(call.ChildCount()) - 1; i >= 0; i-- {
		child := call.Child(i)
		if child == nil {
			continue
		}
		if child.Type() != tsNodeArguments || skipIndex < 0 {
			stack = append(stack, child)
			continue
		}
		for j := int(child.ChildCount()) - 1; j >= 0; j-- {
			if j == skipIndex {
				continue
			}
			if arg := child.Child(j); arg != nil {
				stack = append(stack, arg)
			}
		}
	}
	return stack
}

// matchCall classifies a call_expression against the patterns.
//
// Outputs:
//   - string: "name" for a simple call, "object.method" for a namespaced call.
//   - bool: True when the call matched.
func matchCall(call *sitter.Node, content []byte, patterns *patternSet) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}

	switch fn.Type() {
	case tsNodeMemberExpression:
		object := fn.ChildByFieldName("object")
		property := fn.ChildByFieldName("property")
		if object == nil || property == nil {
			return "", false
		}
		if object.Type() != tsNodeIdentifier || property.Type() != tsNodePropertyIdentifier {
			return "", false
		}
		objectName := object.Content(content)
		method := property.Content(content)
		if patterns.matchNamespaced(objectName, method) {
			return objectName + "." + method, true
		}
	case tsNodeIdentifier:
		name := fn.Content(content)
		if patterns.matchSimple(name) {
			return name, true
		}
	}
	return "", false
}

// keyArgument returns the first argument of a call and its child index within
// the arguments node. Comments are skipped. Returns (nil, -1) when the call has
// no arguments or uses a tagged template instead of an argument list.
func keyArgument(call *sitter.Node) (*sitter.Node, int) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != tsNodeArguments {
		return nil, -1
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		child := args.Child(i)
		if child == nil || !child.IsNamed() || child.Type() == tsNodeComment {
			continue
		}
		return child, i
	}
	return nil, -1
}

func newCallSite(call *sitter.Node, callee string, keys []string) (CallSite, bool) {
	r := Range{Start: int(call.StartByte()), End: int(call.EndByte())}
	if r.End <= r.Start {
		return CallSite{}, false
	}
	sp, ep := call.StartPoint(), call.EndPoint()
	return CallSite{
		Range:  r,
		Start:  Position{Line: int(sp.Row), Column: int(sp.Column)},
		End:    Position{Line: int(ep.Row), Column: int(ep.Column)},
		Callee: callee,
		Keys:   keys,
	}, true
}
