// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the ccmeta command tree.
//
// The root command wires configuration, logging and error rendering; the
// subcommands check, combine, refresh, fix and config delegate to the
// internal packages and only handle flags, files and output.
package cmd
