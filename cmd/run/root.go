package run

import (
	"context"
	"time"

	cmdUtil "github.com/ValentinKolb/mongomaint/cmd/util"
	"github.com/ValentinKolb/mongomaint/lib/cluster"
	"github.com/ValentinKolb/mongomaint/lib/config"
	"github.com/ValentinKolb/mongomaint/lib/logging"
	"github.com/ValentinKolb/mongomaint/lib/maintain"
	"github.com/ValentinKolb/mongomaint/lib/telemetry"
	"github.com/spf13/cobra"
)

var (
	runCmdConfig *config.Config
	runCmdLogger logging.ILogger

	// RunCmd executes one full maintenance pass
	RunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run one maintenance pass over the configured collection",
		Long: `Run one maintenance pass over the configured collection: delete documents
older than the retention period, ensure the retention index, compact the
collection (unless the cluster is sharded) and report collection statistics.
The configuration can be set via command line flags or environment variables.
The format of the environment variables is MONGODB_<flag> (e.g. MONGODB_RETENTION_DAYS=30)`,
		PreRunE: processConfig,
		RunE:    run,
		// the exit status is the only machine-readable outcome, all
		// diagnostics go through the stage logger
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitEnvConfig)

	// add flags
	cmdUtil.SetupClusterFlags(RunCmd)
	cmdUtil.SetupMaintenanceFlags(RunCmd)
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

	runCmdConfig = conf
	runCmdLogger = log
	return nil
}

// run executes the maintenance pipeline and exports the run metrics
func run(_ *cobra.Command, _ []string) error {
	start := time.Now()

	pipeline := maintain.New(runCmdConfig, cluster.MongoDial, runCmdLogger)
	res, err := pipeline.Run(context.Background())

	if path := runCmdConfig.MetricsFile; path != "" {
		snap := &telemetry.Snapshot{
			Success:     err == nil,
			CompletedAt: time.Now().UTC(),
			Duration:    time.Since(start),

			Deleted:    res.Deleted,
			Index:      string(res.Index),
			Compaction: string(res.Compaction),

			Database:   runCmdConfig.Database,
			Collection: runCmdConfig.Collection,

			Documents:    res.Stats.Documents,
			StorageBytes: res.Stats.StorageBytes,
			IndexBytes:   res.Stats.IndexBytes,
		}
		// a failed export never fails the run
		if werr := snap.WriteFile(path); werr != nil {
			runCmdLogger.Errorf(logging.TagSystem, "Writing metrics file failed: %v", werr)
		}
	}

	return err
}
