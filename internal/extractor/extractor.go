// Package extractor walks a card list and downloads one image per card.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/arcanaland/scryfetch/internal/card"
	"github.com/arcanaland/scryfetch/internal/downloader"
	"github.com/arcanaland/scryfetch/internal/naming"
)

// Outcome is the terminal state of a single card
type Outcome int

const (
	Downloaded Outcome = iota
	SkippedNoImages
	SkippedNoSize
	SkippedError
)

func (o Outcome) String() string {
	switch o {
	case Downloaded:
		return "downloaded"
	case SkippedNoImages:
		return "no images"
	case SkippedNoSize:
		return "no size"
	case SkippedError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Skipped reports whether no file was written for the card
func (o Outcome) Skipped() bool {
	return o != Downloaded
}

// Fetcher downloads a single image into dir
type Fetcher interface {
	// ext is the extension suggested by the size tag; the fetcher may
	// replace it based on the image content.
	Download(ctx context.Context, url, dir, base, ext string, size *card.Resize) (*downloader.Result, error)
}

// Event is sent to the Reporter once per processed card
type Event struct {
	Index   int // 1-based
	Total   int
	Card    *card.Card
	Size    card.Size
	Outcome Outcome
	Result  *downloader.Result // set when Outcome is Downloaded
	Err     error
}

// Reporter receives progress events
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Options controls a run
type Options struct {
	Dir          string
	Size         card.Size
	Resize       *card.Resize
	FaceFallback bool
	// Delay is the minimum pause between two downloads. Zero disables it.
	Delay    time.Duration
	Reporter Reporter
	Logger   logrus.FieldLogger
}

// Summary holds the counters of a run
type Summary struct {
	Total      int
	Downloaded int
	Skipped    int
	Cancelled  bool
	Dir        string
	Resize     *card.Resize
}

// Processed is the number of cards with a recorded outcome
func (s *Summary) Processed() int {
	return s.Downloaded + s.Skipped
}

// Extractor runs the per-card pipeline
type Extractor struct {
	fetcher Fetcher
	opts    Options
	log     logrus.FieldLogger
}

// New creates an Extractor
func New(fetcher Fetcher, opts Options) *Extractor {
	var log logrus.FieldLogger = logrus.StandardLogger()
	if opts.Logger != nil {
		log = opts.Logger
	}
	if opts.Reporter == nil {
		opts.Reporter = ReporterFunc(func(Event) {})
	}
	return &Extractor{fetcher: fetcher, opts: opts, log: log}
}

// Run processes cards in order. A failing card is counted as skipped and
// never stops the run; only cancellation of ctx does, in which case the
// summary holds the counters accumulated so far.
func (e *Extractor) Run(ctx context.Context, cards []card.Card) *Summary {
	sum := &Summary{Total: len(cards), Dir: e.opts.Dir, Resize: e.opts.Resize}

	var limiter *rate.Limiter
	if e.opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(e.opts.Delay), 1)
	}

	for i := range cards {
		if ctx.Err() != nil {
			sum.Cancelled = true
			break
		}

		c := &cards[i]
		ev := Event{Index: i + 1, Total: len(cards), Card: c, Size: e.opts.Size}
		ev.Outcome, ev.Result, ev.Err = e.process(ctx, limiter, c)

		if ev.Err != nil && ctx.Err() != nil && errors.Is(ev.Err, ctx.Err()) {
			// interrupted mid-card; the card has no outcome
			sum.Cancelled = true
			break
		}

		if ev.Outcome.Skipped() {
			sum.Skipped++
			if ev.Outcome == SkippedError {
				e.log.WithError(ev.Err).WithFields(logrus.Fields{
					"card":  c.DisplayName(),
					"index": ev.Index,
				}).Warn("card skipped")
			}
		} else {
			sum.Downloaded++
		}
		e.opts.Reporter.Report(ev)
	}

	return sum
}

func (e *Extractor) process(ctx context.Context, limiter *rate.Limiter, c *card.Card) (outcome Outcome, res *downloader.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, res, err = SkippedError, nil, fmt.Errorf("panic processing card: %v", r)
		}
	}()

	if c.DecodeErr != nil {
		return SkippedError, nil, c.DecodeErr
	}

	url, err := c.ImageURL(e.opts.Size, e.opts.FaceFallback)
	if errors.Is(err, card.ErrNoImages) {
		return SkippedNoImages, nil, err
	}
	if err != nil {
		return SkippedNoSize, nil, err
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return SkippedError, nil, err
		}
	}

	base := naming.FileBase(c.DisplayName())
	res, err = e.fetcher.Download(ctx, url, e.opts.Dir, base, e.opts.Size.Ext(), e.opts.Resize)
	if err != nil {
		return SkippedError, nil, err
	}
	return Downloaded, res, nil
}
