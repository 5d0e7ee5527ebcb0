package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the freeweek application
var rootCmd = &cobra.Command{
	Use:   "freeweek",
	Short: "Finds shared free time across team Google Calendars",
	Long: `freeweek computes the time slots this week where every team calendar is
free during working hours and shares them in Slack.

It can run as:
  - A standalone CLI tool printing the slots (default)
  - A Slack slash-command server`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "freeweek version %s\n" .Version}}`)

	// If no subcommand is provided, run the slots command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "slots")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
