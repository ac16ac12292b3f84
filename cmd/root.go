package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcanaland/scryfetch/internal/config"
	"github.com/arcanaland/scryfetch/internal/logging"
)

var (
	configPath string
	verbose    bool

	appConfig *config.Config
	log       = logrus.StandardLogger()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "scryfetch",
	Short: "Download card images from a Scryfall JSON export",
	Long: `Scryfetch downloads the image of every card in a Scryfall card export
(a card array such as bulk data, or a search result list object saved
as JSON) into a directory, optionally
resizing them. Transparent images are saved as PNG, everything else as JPEG.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			appConfig, err = config.LoadConfigFrom(configPath)
		} else {
			appConfig, err = config.LoadConfig()
		}
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		level := appConfig.LogLevel
		if verbose {
			level = "debug"
		}
		log = logging.New(os.Stderr, level)
		log.WithField("config", configFile()).Debug("configuration loaded")
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/scryfetch/config.toml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.GetConfigFilePath()
}
