package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/arcanaland/scryfetch/internal/card"
	"github.com/arcanaland/scryfetch/internal/config"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the scryfetch configuration",
	Long:  `Commands for inspecting and changing the scryfetch config file.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already created it if it was missing
		fmt.Fprintln(cmd.OutOrStdout(), "Config file initialized at:", configFile())
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", configFile())
		if err := toml.NewEncoder(out).Encode(appConfig); err != nil {
			return fmt.Errorf("error encoding config: %w", err)
		}
		return nil
	},
}

// configSetSizeCmd represents the config set-size command
var configSetSizeCmd = &cobra.Command{
	Use:   "set-size [size]",
	Short: "Set the default image size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := card.ParseSize(args[0])
		if err != nil {
			return err
		}

		if configPath != "" {
			// an explicit --config file is edited in place
			appConfig.DefaultSize = string(size)
			err = config.SaveConfigTo(configPath, appConfig)
		} else {
			err = config.SetDefaultSize(string(size))
		}
		if err != nil {
			return fmt.Errorf("error setting default size: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Default size set to: %s\n", size)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetSizeCmd)
}
