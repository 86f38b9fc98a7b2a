// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/llama"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	overrides  config.Overrides
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "llmchat",
		Short:         "Chat with a local language model",
		Long:          "llmchat opens a chat window for a local language model served in-process (llama) or by Ollama.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default ~/.llmchat/config.toml)")
	pf.StringVar(&f.overrides.Backend, "backend", "", "inference backend: llama|ollama")
	pf.StringVar(&f.overrides.Model, "model", "", "model selected at startup")
	pf.StringVar(&f.overrides.ModelsDir, "models-dir", "", "directory scanned for *.gguf models")
	pf.StringVar(&f.overrides.OllamaURL, "ollama-url", "", "Ollama server URL")
	pf.StringVar(&f.overrides.LogFile, "log-file", "", "log file path")
	pf.StringVar(&f.overrides.LogLevel, "log-level", "", "log level: off|error|warn|info|debug|trace")

	root.AddCommand(newModelsCmd(f), newVersionCmd(), newConfigCmd(f))
	return root
}

func newModelsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the selector offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closer, err := setup(f)
			if err != nil {
				return err
			}
			defer closer.Close()

			eng, err := newEngine(cfg, log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range listModels(cmd.Context(), cfg, eng, log) {
				marker := " "
				if name == cfg.Engine.DefaultModel {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			llamaState := "not built"
			if llama.Available() {
				llamaState = "built"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "llmchat %s\n", Version)
			fmt.Fprintf(out, "  commit:  %s\n", GitCommit)
			fmt.Fprintf(out, "  built:   %s\n", BuildDate)
			fmt.Fprintf(out, "  llama:   %s\n", llamaState)
		},
	}
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOverrides(f.configPath, f.overrides)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := config.Default()
			cfg.SetDefaults()
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
