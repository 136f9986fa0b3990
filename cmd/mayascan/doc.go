// Package mayascan provides the command-line interface for mayascan. It
// configures subcommands (scan, watch, history, quarantine, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/hannesdelbeke/maya-security-tools/cmd/mayascan"
//	func main() { mayascan.Execute() }
package mayascan
