package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/datazip-inc/olake-configurator/metrics"
	"github.com/datazip-inc/olake-configurator/telemetry"
	"github.com/datazip-inc/olake-configurator/utils"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath    string
	streamsPath   string
	outputPath    string
	noSave        bool
	verbose       bool
	encryptionKey string
	metricsFile   string

	commands = []*cobra.Command{}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "olake-configurator",
	Short: "discover source streams and merge them with the saved stream selection",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		viper.SetDefault(constants.ConfigFolder, os.TempDir())
		if !noSave && configPath != "" {
			viper.Set(constants.ConfigFolder, filepath.Dir(configPath))
		}
		if outputPath != "" {
			viper.Set(constants.StreamsPath, outputPath)
		}
		if encryptionKey != "" {
			viper.Set(constants.EncryptionKey, encryptionKey)
		}
		viper.Set(constants.NoSave, noSave)
		viper.Set(constants.Verbose, verbose)

		// logger uses CONFIG_FOLDER
		logger.Init()
		metrics.Init(metricsFile != "")
		telemetry.Init()

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'olake-configurator --help' to display usage guide", args[0])
		}

		return nil
	},
}

func CreateRootCommand() *cobra.Command {
	return RootCmd
}

// flushMetrics writes the metrics textfile when one was requested
func flushMetrics() {
	if metricsFile == "" {
		return
	}
	if err := metrics.WriteToTextfile(metricsFile); err != nil {
		logger.Warnf("failed to write metrics file %s: %s", metricsFile, err)
	}
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, RootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func init() {
	commands = append(commands, discoverCmd, reconcileCmd)
	RootCmd.AddCommand(commands...)

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "", "", "(Required) Connector config sent to the discovery endpoint (json or yaml)")
	flags.StringVarP(&streamsPath, "streams", "", "", "(Optional) Previously saved stream selection or source document")
	flags.StringVarP(&outputPath, "output", "", "", "(Optional) Path of the reconciled streams file, defaults to streams.json next to the config")
	flags.BoolVarP(&noSave, "no-save", "", false, "(Optional) Flag to skip writing artifacts to files")
	flags.BoolVarP(&verbose, "verbose", "v", false, "(Optional) Enable debug logs")
	flags.StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key. Provide the ARN of a KMS key or a custom passphrase used to encrypt the config.")
	flags.StringVarP(&metricsFile, "metrics-file", "", "", "(Optional) Write prometheus metrics to this file after the run")

	flags.String("base-url", "", "Backend base url, e.g. https://app.example.com/api")
	flags.String("endpoint", "", "Source specific discovery endpoint, e.g. /airbyte/source-postgres/catalog")
	flags.String("project-id", "", "Project id passed as the project_id query parameter")
	flags.Bool("proxy", false, "Route the discovery request through the backend proxy")
	flags.Duration("poll-interval", constants.DefaultPollInterval, "Wait between two pending discovery attempts")
	flags.Duration("timeout", constants.DefaultPollTimeout, "Give up discovery after this long; 0 disables the bound")

	bindFlag(constants.BaseURL, "base-url")
	bindFlag(constants.Endpoint, "endpoint")
	bindFlag(constants.ProjectID, "project-id")
	bindFlag(constants.Proxy, "proxy")
	bindFlag(constants.PollInterval, "poll-interval")
	bindFlag(constants.PollTimeout, "timeout")

	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
