package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/mongomaint/cmd/check"
	"github.com/ValentinKolb/mongomaint/cmd/run"
	"github.com/ValentinKolb/mongomaint/cmd/stats"
	"github.com/spf13/cobra"
)

const (
	Version = "1.2.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "mongomaint",
		Short: "MongoDB collection maintenance job",
		Long: fmt.Sprintf(`mongomaint (v%s)

A bounded maintenance job for MongoDB collections: deletes documents past
their retention period, keeps the retention index in place, compacts the
collection and reports its statistics. Designed to run as a cron job or
Kubernetes CronJob, the exit status signals success or failure.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mongomaint",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mongomaint v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(run.RunCmd)
	RootCmd.AddCommand(check.CheckCmd)
	RootCmd.AddCommand(stats.StatsCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
