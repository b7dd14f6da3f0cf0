// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import "github.com/vaultshell/vsh/lib/shell"

// Commands returns the full builtin set for a shell session.
func Commands() []*shell.Builtin {
	return []*shell.Builtin{
		catCommand(),
		cdCommand(),
		checksumCommand(),
		cpCommand(),
		echoCommand(),
		exitCommand(),
		grepCommand(),
		gunzipCommand(),
		gzipCommand(),
		headCommand(),
		helpCommand(),
		lsCommand(),
		mkdirCommand(),
		mountCommand(),
		mountsCommand(),
		pwdCommand(),
		rmCommand(),
		sleepCommand(),
		touchCommand(),
		unmountCommand(),
		wcCommand(),
	}
}
