// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"os"

	"github.com/AleutianAI/i18nlens/services/lens/annotate"
	"github.com/spf13/cobra"
)

var (
	annotateConcurrency int
	annotateJSON        bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <files...>",
	Short: "Print the translation of every i18n call in the given files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnnotate,
}

func init() {
	annotateCmd.Flags().IntVarP(&annotateConcurrency, "concurrency", "j", annotate.DefaultConcurrency, "Files annotated in parallel")
	annotateCmd.Flags().BoolVar(&annotateJSON, "json", false, "Print annotations as JSON")
}

type fileAnnotations struct {
	Path        string                `json:"path"`
	Annotations []annotate.Annotation `json:"annotations"`
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := newService(ctx, nil)
	if err != nil {
		return err
	}

	docs, err := readDocuments(args)
	if err != nil {
		return err
	}
	results, err := svc.AnnotateAll(ctx, docs, annotateConcurrency)
	if err != nil {
		return err
	}

	if annotateJSON {
		out := make([]fileAnnotations, 0, len(docs))
		for i, doc := range docs {
			out = append(out, fileAnnotations{Path: doc.Path, Annotations: results[i]})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	renderer := annotate.NewRenderer(os.Stdout, annotate.WithPrefix(svc.Config().Prefix))
	for i, doc := range docs {
		if err := renderer.Render(doc.Path, results[i]); err != nil {
			return err
		}
	}
	return nil
}
