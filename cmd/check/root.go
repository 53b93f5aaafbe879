package check

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
	checkCmdConfig *config.Config
	checkCmdLogger logging.ILogger

	// CheckCmd runs the connection preflight without touching any data
	CheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify that a maintenance run could connect",
		Long: `Verify that a maintenance run could connect: try the configured hosts in
order, check the primary role and the existence of the target collection,
then disconnect. No data is modified.`,
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
	cmdUtil.SetupClusterFlags(CheckCmd)
	cmdUtil.SetupMaintenanceFlags(CheckCmd)
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

	checkCmdConfig = conf
	checkCmdLogger = log
	return nil
}

// run performs the connection preflight
func run(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	conn, err := cluster.Connect(ctx, checkCmdConfig, cluster.MongoDial, checkCmdLogger)
	if err != nil {
		checkCmdLogger.Errorf(maintain.TagOf(err), "%v", err)
		checkCmdLogger.Errorf(logging.TagSystem, "Preflight check failed")
		return err
	}

	checkCmdLogger.Infof(logging.TagSystem, "Preflight check passed (target %s)", conn.Target)

	if err := conn.Close(ctx); err != nil {
		checkCmdLogger.Errorf(logging.TagNetwork, "Closing connection failed: %v", err)
		return err
	}
	checkCmdLogger.Infof(logging.TagNetwork, "Connection closed")
	return nil
}
