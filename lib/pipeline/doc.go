// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline turns one raw command line into connected stages
// and collects a single terminal status.
//
// Builtin stages run as goroutines against an explicit stdio
// capability struct and a cloned filesystem view — stream isolation
// without forking, and a cd inside a stage visibly cannot move the
// shell's prompt. External stages run as real OS processes wired to
// the same os.Pipe pairs, so a builtin can feed an external and vice
// versa within one pipeline.
//
// The reported status derives solely from the last stage, matching
// the usual shell convention: earlier stages may fail or die on
// SIGPIPE without surfacing.
package pipeline
