// SPDX-License-Identifier: MIT
// Package: lvconnect/cmd/lvconnect
//
// cmd_run.go - handlers of the run, validate, rules and first-index commands.

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvconnect/connect"
	"github.com/katalvlaran/lvconnect/network"
	"github.com/katalvlaran/lvconnect/numerics"
	"github.com/katalvlaran/lvconnect/synapse"
)

// runNetwork loads path, applies the flag overrides, executes it and prints
// the report as YAML.
func runNetwork(cmd *cobra.Command, path string, f runFlags) error {
	logger, err := newLogger(cmd.ErrOrStderr(), f.logLevel, f.logJSON)
	if err != nil {
		return err
	}
	d, err := network.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		d.Seed = f.seed
	}
	if f.processes > 0 {
		d.Layout.NumProcesses = f.processes
	}
	if f.threads > 0 {
		d.Layout.ThreadsPerProcess = f.threads
	}

	store := synapse.NewStore()
	rep, err := network.Run(cmd.Context(), d, store, network.WithLogger(logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err = enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err = enc.Close(); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	switch f.edges {
	case "":
		return nil
	case "-":
		return writeEdges(out, store.All())
	default:
		file, err := os.Create(f.edges)
		if err != nil {
			return fmt.Errorf("--edges: %w", err)
		}
		if err = writeEdges(file, store.All()); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}
}

var edgeHeader = []string{"source", "target", "channel", "model", "weight", "delay", "receptor", "vp"}

// writeEdges writes conns as CSV, one row per connection.
func writeEdges(w io.Writer, conns []synapse.Connection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(edgeHeader); err != nil {
		return fmt.Errorf("write edges: %w", err)
	}
	for _, c := range conns {
		row := []string{
			strconv.FormatUint(c.Source, 10),
			strconv.FormatUint(c.Target, 10),
			strconv.Itoa(c.Channel),
			c.Model,
			strconv.FormatFloat(c.Weight, 'g', -1, 64),
			strconv.FormatFloat(c.Delay, 'g', -1, 64),
			strconv.Itoa(c.Receptor),
			strconv.Itoa(c.VP),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write edges: %w", err)
		}
	}
	cw.Flush()

	return cw.Error()
}

// validateNetwork parses path and prints a one-line summary.
func validateNetwork(cmd *cobra.Command, path string) error {
	d, err := network.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d populations, %d connections, layout %dx%d\n",
		path, len(d.Populations), len(d.Connections), d.Layout.NumProcesses, d.Layout.ThreadsPerProcess)

	return nil
}

// listRules prints the built-in rules and synapse models.
func listRules(w io.Writer) error {
	reg := connect.DefaultRegistry()
	listing := struct {
		Rules      []string `yaml:"rules"`
		ThirdRules []string `yaml:"third_factor_rules"`
		Models     []string `yaml:"synapse_models"`
		Dists      []string `yaml:"distributions"`
	}{
		Rules:      reg.Rules(),
		ThirdRules: reg.ThirdRules(),
		Models:     synapse.NewCatalog().Names(),
		Dists:      synapse.Distributions(),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(listing); err != nil {
		return err
	}

	return enc.Close()
}

// firstIndex parses four integers and prints numerics.FirstIndex, or
// "none" when the congruence has no solution.
func firstIndex(w io.Writer, args []string) error {
	var v [4]int64
	for i, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		v[i] = n
	}
	idx := numerics.FirstIndex(v[0], v[1], v[2], v[3])
	if idx == numerics.InvalidIndex {
		fmt.Fprintln(w, "none")
		return nil
	}
	fmt.Fprintln(w, idx)

	return nil
}
