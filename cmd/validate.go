package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/scryfetch/internal/card"
	"github.com/arcanaland/scryfetch/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [json_file]",
	Short: "Check a JSON export without downloading anything",
	Long: `Validate loads a Scryfall JSON export and reports which cards would be
skipped for the chosen image size, which image URLs are unusable, and which
cards will get numbered file names.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		sizeFlag, _ := cmd.Flags().GetString("size")
		if sizeFlag == "" {
			sizeFlag = appConfig.DefaultSize
		}
		size, err := card.ParseSize(sizeFlag)
		if err != nil {
			return err
		}
		noFaces, _ := cmd.Flags().GetBool("no-faces")

		v := validator.NewValidator(card.TrimPathInput(args[0]), size, appConfig.FaceFallback && !noFaces)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")
		fmt.Fprintf(out, "%d of %d cards have a %s image.\n", results.Downloadable, results.Total, size)

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "✅ '%s' is ready to download.\n", args[0])
		} else {
			fmt.Fprintf(out, "❌ '%s' has %d errors:\n", args[0], len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("size", "s", "", "image size to check for (default from config)")
	validateCmd.Flags().Bool("no-faces", false, "do not fall back to the first face of multi-faced cards")
}
