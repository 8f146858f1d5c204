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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

// KeySeparator joins nested object keys when a dictionary is flattened.
const KeySeparator = "."

// Sentinel errors for dictionary loading.
var (
	// ErrInvalidDictionary indicates the file parsed but is not a key/value mapping,
	// or did not parse at all.
	ErrInvalidDictionary = errors.New("invalid dictionary")
)

// Format is the on-disk encoding of a dictionary.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatPO
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatPO:
		return "po"
	default:
		return "json"
	}
}

// FormatForPath picks the format from the file extension. Unknown extensions are read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".po":
		return FormatPO
	default:
		return FormatJSON
	}
}

// Load reads and parses the dictionary at path.
//
// Description:
//
//	The format follows the file extension. Nested JSON and YAML objects are
//	flattened into dotted keys alongside the literal top-level keys, and a
//	literal key wins when both spell the same string.
//
// Outputs:
//   - Dictionary: Parsed entries. Never nil on success.
//   - error: The read error (fs.ErrNotExist can be tested with errors.Is), or
//     ErrInvalidDictionary for content that is not a mapping.
func Load(ctx context.Context, path string) (Dictionary, error) {
	format := FormatForPath(path)
	_, span := tracer.Start(ctx, "locale.Load")
	defer span.End()
	span.SetAttributes(
		attribute.String("path", path),
		attribute.String("format", format.String()),
	)

	data, err := os.ReadFile(path)
	if err != nil {
		recordLoad(format, 0, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}

	dict, err := Parse(format, data)
	recordLoad(format, len(dict), err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}

	span.SetAttributes(attribute.Int("entries", len(dict)))
	return dict, nil
}

// LoadOrEmpty loads the dictionary at path and degrades any failure to an
// empty dictionary, logging the cause.
func LoadOrEmpty(ctx context.Context, path string, logger *slog.Logger) Dictionary {
	if logger == nil {
		logger = slog.Default()
	}
	dict, err := Load(ctx, path)
	if err != nil {
		logger.Warn("dictionary unavailable, using empty dictionary",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return Dictionary{}
	}
	return dict
}

// Parse decodes dictionary content in the given format.
func Parse(format Format, data []byte) (Dictionary, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatPO:
		return parsePO(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) (Dictionary, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDictionary)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top-level JSON value is not an object", ErrInvalidDictionary)
	}

	keys, values := jsonMembers(root)
	dict := make(Dictionary, len(keys))
	literal := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if text, ok := jsonScalar(values[key]); ok {
			dict[key] = text
			literal[key] = struct{}{}
		}
	}
	for _, key := range keys {
		if value := values[key]; value.IsObject() {
			flattenJSON(key, value, dict, literal)
		}
	}
	return dict, nil
}

// jsonMembers returns the member names of obj in first-seen order and the
// last value given for each, so a repeated name keeps its final value.
func jsonMembers(obj gjson.Result) ([]string, map[string]gjson.Result) {
	var keys []string
	values := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if _, seen := values[name]; !seen {
			keys = append(keys, name)
		}
		values[name] = value
		return true
	})
	return keys, values
}

// flattenJSON writes the scalars under obj as dotted keys. Literal keys are
// never overwritten; among flattened values the later one wins.
func flattenJSON(prefix string, obj gjson.Result, dict Dictionary, literal map[string]struct{}) {
	keys, values := jsonMembers(obj)
	for _, key := range keys {
		path := prefix + KeySeparator + key
		value := values[key]
		if value.IsObject() {
			flattenJSON(path, value, dict, literal)
			continue
		}
		if text, ok := jsonScalar(value); ok {
			if _, isLiteral := literal[path]; !isLiteral {
				dict[path] = text
			}
		}
	}
}

// jsonScalar returns strings verbatim and numbers/booleans as their JSON text.
// Null, arrays and objects have no scalar text.
func jsonScalar(value gjson.Result) (string, bool) {
	switch value.Type {
	case gjson.String:
		return value.Str, true
	case gjson.Number, gjson.True, gjson.False:
		return value.Raw, true
	default:
		return "", false
	}
}

func parseYAML(data []byte) (Dictionary, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDictionary, err)
	}

	dict := make(Dictionary, len(raw))
	literal := make(map[string]struct{}, len(raw))
	for key, value := range raw {
		if text, ok := yamlScalar(value); ok {
			dict[key] = text
			literal[key] = struct{}{}
		}
	}
	for key, value := range raw {
		if nested, ok := yamlMapping(value); ok {
			flattenYAML(key, nested, dict, literal)
		}
	}
	return dict, nil
}

func flattenYAML(prefix string, obj map[string]any, dict Dictionary, literal map[string]struct{}) {
	for key, value := range obj {
		path := prefix + KeySeparator + key
		if nested, ok := yamlMapping(value); ok {
			flattenYAML(path, nested, dict, literal)
			continue
		}
		if text, ok := yamlScalar(value); ok {
			if _, isLiteral := literal[path]; !isLiteral {
				dict[path] = text
			}
		}
	}
}

// yamlMapping returns value as a string-keyed mapping. Nested mappings with
// any non-string key decode as map[any]any; their keys are printed.
func yamlMapping(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func yamlScalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// parsePO reads a gettext catalog. Each translated msgid becomes a key;
// untranslated entries and the header are skipped.
func parsePO(data []byte) (Dictionary, error) {
	po := gotext.NewPo()
	po.Parse(data)

	translations := po.GetDomain().GetTranslations()
	dict := make(Dictionary, len(translations))
	for id, tr := range translations {
		if id == "" || tr == nil || !tr.IsTranslated() {
			continue
		}
		dict[id] = tr.Get()
	}
	return dict, nil
}
