// SPDX-License-Identifier: MIT
// Package: lvconnect/cmd/lvconnect
//
// main.go - command line entry point.

// Command lvconnect builds the connectivity of a network description and
// reports what was installed.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lvconnect:", err)
		os.Exit(exitCode(err))
	}
}
