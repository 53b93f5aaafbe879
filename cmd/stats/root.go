package stats

import (
	"context"

	cmdUtil "github.com/ValentinKolb/mongomaint/cmd/util"
	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/config"
	"github.com/ValentinKolb/mongomaint/lib/logging"
	"github.com/ValentinKolb/mongomaint/lib/maintain"
	"github.com/spf13/cobra"
)

var (
	statsCmdConfig *config.Config
	statsCmdLogger logging.ILogger

	// StatsCmd reports collection statistics without running maintenance
	StatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Report statistics of the configured collection",
		Long: `Report statistics of the configured collection (document count, storage
size and total index size) without deleting, indexing or compacting
anything.`,
		PreRunE:       processConfig,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitEnvConfig)

	// add flags
	cmdUtil.SetupClusterFlags(StatsCmd)
	cmdUtil.SetupMaintenanceFlags(StatsCmd)
}

// processConfig reads the configuration from the command line flags and
// environment variables and validates it
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	log, err := cmdUtil.GetLogger()
	if err != nil {
		logging.New(logging.LevelInfo).Errorf(logging.TagSystem, "Invalid configuration: %v", err)
		return err
	}

	conf := cmdUtil.GetConfig()
	if err := conf.Validate(); err != nil {
		log.Errorf(logging.TagSystem, "Invalid configuration: %v", err)
		return err
	}

	statsCmdConfig = conf
	statsCmdLogger = log
	return nil
}

// run connects and reports the collection statistics
func run(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	conn, err := cluster.Connect(ctx, statsCmdConfig, cluster.MongoDial, statsCmdLogger)
	if err != nil {
		statsCmdLogger.Errorf(maintain.TagOf(err), "%v", err)
		return err
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			statsCmdLogger.Errorf(logging.TagNetwork, "Closing connection failed: %v", cerr)
		} else {
			statsCmdLogger.Infof(logging.TagNetwork, "Connection closed")
		}
	}()

	reporter := maintain.NewStatsReporter(statsCmdLogger)
	if _, err := reporter.Report(ctx, conn.Coll); err != nil {
		statsCmdLogger.Errorf(maintain.TagOf(err), "%v", err)
		return err
	}
	return nil
}
