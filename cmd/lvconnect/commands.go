// SPDX-License-Identifier: MIT
// Package: lvconnect/cmd/lvconnect
//
// commands.go - cobra command tree.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/network"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

// exitCode maps configuration and description errors to exitConfig.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case connect.IsConfigError(err),
		errors.Is(err, network.ErrInvalidDescription),
		errors.Is(err, network.ErrUnknownPopulation):
		return exitConfig
	default:
		return exitError
	}
}

// runFlags holds the flags of "lvconnect run".
type runFlags struct {
	seed      uint64
	processes int
	threads   int
	edges     string
	logLevel  string
	logJSON   bool
}

// newRootCmd assembles the command tree. A fresh tree per call keeps flag
// state out of package variables.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lvconnect",
		Short: "Build and inspect network connectivity",
		Long: `lvconnect creates the populations of a YAML network description,
executes its connection calls on an in-process process/thread grid and
reports what was installed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newValidateCmd(), newRulesCmd(), newFirstIndexCmd())

	return root
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <network.yaml>",
		Short: "Execute a network description and print its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetwork(cmd, args[0], f)
		},
	}
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "override the description seed")
	cmd.Flags().IntVar(&f.processes, "processes", 0, "override the number of processes")
	cmd.Flags().IntVar(&f.threads, "threads", 0, "override the threads per process")
	cmd.Flags().StringVar(&f.edges, "edges", "", "write installed connections as CSV to this file (- for stdout)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&f.logJSON, "log-json", false, "log as JSON")

	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <network.yaml>",
		Short: "Parse and validate a network description without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateNetwork(cmd, args[0])
		},
	}
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the registered connection rules and synapse models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listRules(cmd.OutOrStdout())
		},
	}
}

func newFirstIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "first-index <period> <phase0> <step> <phase>",
		Short: "Smallest index whose phase in a strided traversal equals phase",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return firstIndex(cmd.OutOrStdout(), args)
		},
	}
}

// newLogger builds the slog logger selected by the flags.
func newLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("--log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}
