// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import "strings"

// Tokenize splits a command segment into a name and arguments.
// Double-quoted spans group into a single token with the quotes
// stripped; there is no escape syntax inside quotes. An unterminated
// quote runs to the end of the line.
func Tokenize(segment string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	tokenStarted := false

	for _, r := range segment {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			// An empty quoted pair still produces a token.
			tokenStarted = true
		case !inQuotes && (r == ' ' || r == '\t'):
			if tokenStarted {
				tokens = append(tokens, current.String())
				current.Reset()
				tokenStarted = false
			}
		default:
			current.WriteRune(r)
			tokenStarted = true
		}
	}
	if tokenStarted {
		tokens = append(tokens, current.String())
	}
	return tokens
}
