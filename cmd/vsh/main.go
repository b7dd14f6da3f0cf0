// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// vsh is an interactive shell with encrypted virtual mounts. Commands
// operate on a unified namespace where passphrase-protected container
// files appear as directory trees alongside the real filesystem.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/vaultshell/vsh/lib/builtins"
	"github.com/vaultshell/vsh/lib/config"
	"github.com/vaultshell/vsh/lib/cryptstore"
	"github.com/vaultshell/vsh/lib/pipeline"
	"github.com/vaultshell/vsh/lib/process"
	"github.com/vaultshell/vsh/lib/secret"
	"github.com/vaultshell/vsh/lib/shell"
	"github.com/vaultshell/vsh/lib/version"
	"github.com/vaultshell/vsh/lib/vfs"
)

func main() {
	code, err := run()
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(code)
}

func run() (int, error) {
	flags := pflag.NewFlagSet("vsh", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to the config file (default: $VSH_CONFIG)")
	command := flags.StringP("command", "c", "", "run a single command line and exit")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, nil
		}
		return 0, err
	}
	if *showVersion {
		fmt.Println("vsh", version.Full())
		return 0, nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return 0, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	session := &shell.Session{
		Registry:          shell.NewRegistry(builtins.Commands()),
		FS:                vfs.New(logger),
		Logger:            logger,
		Stdin:             os.Stdin,
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
		Color:             colorEnabled(cfg.Color),
		DefaultQuotaBytes: cfg.DefaultQuotaMB * 1024 * 1024,
	}
	defer closeMounts(session.FS, logger)

	if err := openConfiguredMounts(session, cfg); err != nil {
		return 0, err
	}

	// SIGINT sets the cooperative interrupt flag instead of killing the
	// process. Long-running builtins poll it; the REPL clears it before
	// each prompt.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT)
	defer signal.Stop(signals)
	go func() {
		for range signals {
			session.Interrupt()
			fmt.Fprintln(session.Stderr)
		}
	}()

	executor := pipeline.New(session.Registry, logger)

	if *command != "" {
		status := executor.Run(context.Background(), *command, session)
		if status.Message != "" {
			fmt.Fprintln(session.Stderr, "vsh:", status.Message)
		}
		return status.Code, nil
	}

	repl := &repl{
		session:     session,
		executor:    executor,
		prompt:      cfg.Prompt,
		historyPath: cfg.HistoryFile,
		terminal:    term.IsTerminal(int(os.Stdin.Fd())),
	}
	return repl.loop(context.Background())
}

// openConfiguredMounts opens each mount listed in the config, prompting
// for its passphrase. A mount that fails to open aborts startup so the
// user never works against a partially assembled namespace.
func openConfiguredMounts(session *shell.Session, cfg *config.Config) error {
	for _, mc := range cfg.Mounts {
		passphrase, err := secret.ReadPassphrase(fmt.Sprintf("passphrase for %s: ", mc.Name))
		if err != nil {
			return err
		}

		quota := session.DefaultQuotaBytes
		if mc.QuotaMB > 0 {
			quota = mc.QuotaMB * 1024 * 1024
		}
		store, err := cryptstore.New(cryptstore.Config{
			ContainerPath: mc.Container,
			QuotaBytes:    quota,
			Logger:        session.Logger,
		})
		if err != nil {
			passphrase.Close()
			return err
		}
		err = store.Open(passphrase)
		passphrase.Close()
		if err != nil {
			if errors.Is(err, cryptstore.ErrBadPassphrase) {
				return fmt.Errorf("mount %s: wrong passphrase", mc.Name)
			}
			return fmt.Errorf("mount %s: %w", mc.Name, err)
		}

		mount := &vfs.Mount{Name: mc.Name, MountPoint: mc.MountPoint, Store: store}
		if err := session.FS.AddMount(mount); err != nil {
			store.Close()
			return fmt.Errorf("mount %s: %w", mc.Name, err)
		}
	}
	return nil
}

// closeMounts flushes and seals every open store on the way out.
func closeMounts(fs *vfs.VFS, logger *slog.Logger) {
	for _, name := range fs.MountNames() {
		if err := fs.RemoveMount(name); err != nil {
			logger.Error("closing mount", "mount", name, "error", err)
		}
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		// EnvColorProfile honors NO_COLOR and CLICOLOR on top of the
		// terminal's advertised capabilities.
		return term.IsTerminal(int(os.Stdout.Fd())) && termenv.EnvColorProfile() != termenv.Ascii
	}
}
