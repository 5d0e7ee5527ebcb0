// Package cmd implements the command-line interface for freeweek.
//
// This package provides the following commands:
//   - serve: Start the Slack slash-command server
//   - slots: Compute and print this week's free slots once
//   - version: Display version information
//
// The slots command is the default command when no subcommand is specified.
package cmd
