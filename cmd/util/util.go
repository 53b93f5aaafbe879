package util

import (
	"strings"
	"time"

	"github.com/ValentinKolb/mongomaint/lib/config"
	"github.com/ValentinKolb/mongomaint/lib/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClusterFlags adds common MongoDB connection flags to a command
func SetupClusterFlags(cmd *cobra.Command) {
	key := "host"
	cmd.PersistentFlags().String(key, "localhost", WrapString("MongoDB host to connect to. Multiple hosts can be specified as a comma-separated list, they are tried in order until one passes all connection checks"))

	key = "port"
	cmd.PersistentFlags().Int(key, 27017, WrapString("Default port for hosts given without a port"))

	key = "uri"
	cmd.PersistentFlags().String(key, "", WrapString("Full MongoDB connection string. When set it replaces the host list and the driver performs server selection itself"))

	key = "username"
	cmd.PersistentFlags().String(key, "", WrapString("Username for authentication. Authentication is only configured when a username is set"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("Password for authentication"))

	key = "auth-source"
	cmd.PersistentFlags().String(key, "", WrapString("Database to authenticate against (empty for the driver default)"))

	key = "direct-connection"
	cmd.PersistentFlags().Bool(key, true, WrapString("Dial each host directly instead of discovering the topology"))

	key = "require-primary"
	cmd.PersistentFlags().Bool(key, true, WrapString("Only accept hosts reporting themselves as writable primary"))

	key = "app-name"
	cmd.PersistentFlags().String(key, "mongomaint", WrapString("Application name reported in the connection handshake"))

	key = "connect-timeout"
	cmd.PersistentFlags().Int(key, 5000, WrapString("Connect timeout in milliseconds (0 for the driver default)"))

	key = "socket-timeout"
	cmd.PersistentFlags().Int(key, 30000, WrapString("Socket timeout in milliseconds (0 for the driver default)"))

	key = "server-selection-timeout"
	cmd.PersistentFlags().Int(key, 20000, WrapString("Server selection timeout in milliseconds (0 for the driver default)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("LogLevel is the level at which logs will be output (debug, info, error)"))
}

// SetupMaintenanceFlags adds the flags naming the maintenance target
// and retention policy to a command
func SetupMaintenanceFlags(cmd *cobra.Command) {
	key := "db-name"
	cmd.PersistentFlags().String(key, "db", WrapString("Name of the database holding the collection"))

	key = "collection-name"
	cmd.PersistentFlags().String(key, "collection", WrapString("Name of the collection to maintain. The collection must exist, it is never created"))

	key = "retention-field"
	cmd.PersistentFlags().String(key, "createdAt", WrapString("Timestamp field deciding document age"))

	key = "retention-days"
	cmd.PersistentFlags().Int(key, 30, WrapString("Documents whose retention field is older than this many days are deleted"))

	key = "index-order"
	cmd.PersistentFlags().Int32(key, 1, WrapString("Sort order of the retention index (1 ascending, -1 descending)"))

	key = "metrics-file"
	cmd.PersistentFlags().String(key, "", WrapString("Path the run metrics are written to in Prometheus text format (empty disables the export)"))
}

// InitEnvConfig initializes configuration from environment variables
func InitEnvConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("mongodb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// legacy aliases kept from earlier deployments
	_ = viper.BindEnv("uri", "MONGODB_URI", "MONGODB_URI_STRING")
	_ = viper.BindEnv("username", "MONGODB_USERNAME", "MONGODB_DATABASE_ADMIN_USER")
	_ = viper.BindEnv("password", "MONGODB_PASSWORD", "MONGODB_USER_ADMIN_PASSWORD")
}

// GetConfig reads the maintenance configuration from viper
func GetConfig() *config.Config {
	conf := &config.Config{
		URI:              viper.GetString("uri"),
		Hosts:            config.ParseHostList(viper.GetString("host"), viper.GetInt("port")),
		Username:         viper.GetString("username"),
		Password:         viper.GetString("password"),
		AuthSource:       viper.GetString("auth-source"),
		DirectConnection: viper.GetBool("direct-connection"),
		AppName:          viper.GetString("app-name"),

		Database:   viper.GetString("db-name"),
		Collection: viper.GetString("collection-name"),

		RetentionField: viper.GetString("retention-field"),
		RetentionDays:  viper.GetInt("retention-days"),
		IndexOrder:     viper.GetInt32("index-order"),
		RequirePrimary: viper.GetBool("require-primary"),

		ConnectTimeout:         time.Duration(viper.GetInt("connect-timeout")) * time.Millisecond,
		SocketTimeout:          time.Duration(viper.GetInt("socket-timeout")) * time.Millisecond,
		ServerSelectionTimeout: time.Duration(viper.GetInt("server-selection-timeout")) * time.Millisecond,

		LogLevel:    viper.GetString("log-level"),
		MetricsFile: viper.GetString("metrics-file"),
	}

	return conf
}

// GetLogger creates the stage logger based on configuration
func GetLogger() (logging.ILogger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
