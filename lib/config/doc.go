// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the shell.
//
// Configuration is loaded from a single YAML file specified by:
//   - the VSH_CONFIG environment variable, or
//   - the --config flag passed to the binary
//
// There are no fallbacks or automatic discovery; with neither set, the
// built-in defaults apply. Passphrases are never part of the config —
// preconfigured mounts always prompt.
package config
