package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/scryfetch/internal/downloader"
	"github.com/arcanaland/scryfetch/internal/extractor"
	"github.com/arcanaland/scryfetch/internal/params"
)

var downloadCmd = &cobra.Command{
	Use:   "download [json_file]",
	Short: "Download the image of every card in a JSON export",
	Long: `Download fetches one image per card in a Scryfall JSON export and saves it
as <card name>.jpg, or .png when the image is transparent. Cards sharing a
name get numbered suffixes (Bolt.jpg, Bolt_1.jpg, ...).

Without arguments on a terminal, or with --interactive, every value is
asked for interactively. Otherwise flags and config defaults are used.

Examples:
  scryfetch download cards.json
  scryfetch download --size art_crop --resize 488x680 -o ./art cards.json
  scryfetch download -i`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		src, err := paramSource(cmd, args)
		if err != nil {
			return err
		}

		p, err := src.Params(cmd.Context())
		if errors.Is(err, params.ErrCancelled) {
			fmt.Fprintln(out, "Operation canceled by user.")
			return nil
		}
		if err != nil {
			return err
		}

		noFaces, _ := cmd.Flags().GetBool("no-faces")
		delay := appConfig.Delay.Duration
		if cmd.Flags().Changed("delay") {
			delay, _ = cmd.Flags().GetDuration("delay")
		}

		dl := downloader.New(downloader.Options{
			Timeout:   appConfig.Timeout.Duration,
			UserAgent: appConfig.UserAgent,
			Logger:    log,
		})
		ex := extractor.New(dl, extractor.Options{
			Dir:          p.OutputDir,
			Size:         p.Size,
			Resize:       p.Resize,
			FaceFallback: appConfig.FaceFallback && !noFaces,
			Delay:        delay,
			Reporter:     newConsoleReporter(out, p.Resize != nil),
			Logger:       log,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(out, "\nStarting download of %d cards to: %s\n", len(p.Cards), p.OutputDir)
		log.WithFields(logrus.Fields{
			"json":   p.JSONPath,
			"size":   p.Size,
			"resize": p.Resize,
			"delay":  delay,
		}).Debug("starting run")

		printSummary(out, ex.Run(ctx, p.Cards))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringP("size", "s", "", "image size: small, normal, large, png, art_crop, border_crop (default from config)")
	downloadCmd.Flags().String("resize", "", "resize every image to WIDTHxHEIGHT pixels")
	downloadCmd.Flags().StringP("out", "o", "", "target directory (default from config)")
	downloadCmd.Flags().BoolP("interactive", "i", false, "ask for every value interactively")
	downloadCmd.Flags().Bool("no-faces", false, "do not fall back to the first face of multi-faced cards")
	downloadCmd.Flags().Duration("delay", 0, "pause between downloads (default from config)")
}

// paramSource picks the front end: prompts on a terminal, flags otherwise
func paramSource(cmd *cobra.Command, args []string) (params.Source, error) {
	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive || (len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd()))) {
		return params.NewPromptSource(cmd.InOrStdin(), cmd.OutOrStdout()), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no JSON file given (use --interactive to be prompted)")
	}

	size, _ := cmd.Flags().GetString("size")
	if size == "" {
		size = appConfig.DefaultSize
	}
	resize, _ := cmd.Flags().GetString("resize")
	if !cmd.Flags().Changed("resize") {
		resize = appConfig.Resize
	}
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = appConfig.OutputDir
	}

	return &params.FlagSource{
		JSONPath:  args[0],
		Size:      size,
		Resize:    resize,
		OutputDir: outDir,
	}, nil
}

// consoleReporter prints one progress line per card
type consoleReporter struct {
	out     io.Writer
	resized bool

	ok   *color.Color
	skip *color.Color
	fail *color.Color
}

func newConsoleReporter(out io.Writer, resized bool) *consoleReporter {
	return &consoleReporter{
		out:     out,
		resized: resized,
		ok:      color.New(color.FgGreen),
		skip:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
	}
}

func (r *consoleReporter) Report(ev extractor.Event) {
	prefix := fmt.Sprintf("[%d/%d] ", ev.Index, ev.Total)
	name := ev.Card.DisplayName()

	switch ev.Outcome {
	case extractor.Downloaded:
		status := "Downloaded"
		if r.resized {
			status = "Downloaded and resized"
		}
		r.ok.Fprintf(r.out, "%s%s: %s\n", prefix, status, filepath.Base(ev.Result.Path))
	case extractor.SkippedNoImages:
		r.skip.Fprintf(r.out, "%sNo images for card: %s\n", prefix, name)
	case extractor.SkippedNoSize:
		r.skip.Fprintf(r.out, "%sNo %s size for card: %s\n", prefix, ev.Size, name)
	default:
		r.fail.Fprintf(r.out, "%sError processing card %s: %v\n", prefix, name, ev.Err)
	}
}

func printSummary(out io.Writer, sum *extractor.Summary) {
	if sum.Cancelled {
		fmt.Fprintln(out, "\nOperation canceled by user.")
	}
	if sum.Processed() == 0 {
		return
	}

	color.New(color.Bold).Fprintf(out, "\nDownload complete! Downloaded: %d, Skipped: %d\n", sum.Downloaded, sum.Skipped)
	if sum.Resize != nil {
		fmt.Fprintf(out, "Resized to: %dx%dpx\n", sum.Resize.Width, sum.Resize.Height)
	}
	fmt.Fprintf(out, "Location: %s\n", sum.Dir)
}
