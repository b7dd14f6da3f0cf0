// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "strings"

// Split divides a command line on "|" separators. A character scan
// keeps track of double quotes: pipes inside a quoted span do not
// split. Each segment is whitespace-trimmed and empty segments are
// dropped.
func Split(line string) []string {
	var stages []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == '|' && !inQuotes:
			stage := strings.TrimSpace(current.String())
			if stage != "" {
				stages = append(stages, stage)
			}
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	stage := strings.TrimSpace(current.String())
	if stage != "" {
		stages = append(stages, stage)
	}
	return stages
}

// HasPipe reports whether the line is a multi-stage pipeline. It uses
// the same quote-aware scan as Split, so a line like `echo "a|b"` is
// one plain command, not a pipeline.
func HasPipe(line string) bool {
	return len(Split(line)) >= 2
}
