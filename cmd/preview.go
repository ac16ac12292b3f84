package cmd

import (
	"fmt"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/scryfetch/internal/ansi"
	"github.com/arcanaland/scryfetch/internal/downloader"
)

var previewCmd = &cobra.Command{
	Use:   "preview [image_file]",
	Short: "Show a downloaded card image as ANSI art",
	Long: `Preview renders an image file in the terminal using half-block characters.
Handy for checking a download directory without leaving the shell.

Examples:
  scryfetch preview cards/Lightning\ Bolt.jpg
  scryfetch preview --width 30 cards/Island_1.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading image: %w", err)
		}
		img, format, err := downloader.Decode(data)
		if err != nil {
			return err
		}

		width, _ := cmd.Flags().GetInt("width")
		if width <= 0 {
			width = previewWidth()
		}

		art := ansi.Render(img, ansi.Options{
			Columns:    width,
			TrueColor:  trueColorTerminal(),
			Background: colorful.Color{R: 0, G: 0, B: 0},
		})

		b := img.Bounds()
		fmt.Fprintln(out)
		fmt.Fprint(out, art)
		fmt.Fprintln(out, colorize.CyanString("File:   ")+colorize.HiWhiteString("%s", args[0]))
		fmt.Fprintln(out, colorize.CyanString("Format: ")+colorize.HiWhiteString("%s, %dx%dpx", format, b.Dx(), b.Dy()))
		fmt.Fprintln(out, colorize.CyanString("Alpha:  ")+colorize.HiWhiteString("%t", downloader.HasAlpha(img)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(previewCmd)

	previewCmd.Flags().IntP("width", "w", 0, "width in terminal columns (default: fit the terminal, at most 60)")
}

// previewWidth fits the art to the terminal
func previewWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80 // Default if we can't get terminal width
	}
	width -= 4
	if width > 60 {
		width = 60
	}
	if width < 10 {
		width = 10
	}
	return width
}

func trueColorTerminal() bool {
	ct := strings.ToLower(os.Getenv("COLORTERM"))
	return ct == "truecolor" || ct == "24bit"
}
