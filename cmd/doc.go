// Package cmd implements the command-line interface of the mongomaint
// maintenance job. It provides a flat command structure with one command
// per task plus shared configuration handling.
//
// The package is organized into several subpackages:
//
//   - run: Command executing one full maintenance pass (cleanup, index, compaction, stats)
//   - check: Command verifying the connection preflight without touching data
//   - stats: Command reporting collection statistics only
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See mongomaint -help for a list of all commands.
package cmd
