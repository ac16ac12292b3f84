// Package params collects the inputs of a download run. Each front end
// (command-line flags, interactive console) implements Source.
package params

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/arcanaland/scryfetch/internal/card"
)

var ErrCancelled = errors.New("operation canceled by user")

// Params are the inputs of one download run
type Params struct {
	JSONPath  string
	Cards     []card.Card
	Size      card.Size
	Resize    *card.Resize // nil means keep the original dimensions
	OutputDir string
}

// Source supplies Params
type Source interface {
	Params(ctx context.Context) (*Params, error)
}

// FlagSource takes every value up front, as given on the command line
type FlagSource struct {
	JSONPath  string
	Size      string
	Resize    string
	OutputDir string
}

// Params validates the values, loads the card list and makes sure the
// output directory exists.
func (s *FlagSource) Params(ctx context.Context) (*Params, error) {
	if s.JSONPath == "" {
		return nil, fmt.Errorf("no JSON file given")
	}

	size, err := card.ParseSize(s.Size)
	if err != nil {
		return nil, err
	}

	var resize *card.Resize
	if s.Resize != "" {
		if resize, err = card.ParseResize(s.Resize); err != nil {
			return nil, err
		}
	}

	path := card.TrimPathInput(s.JSONPath)
	cards, err := card.LoadCards(path)
	if err != nil {
		return nil, err
	}

	if s.OutputDir == "" {
		return nil, fmt.Errorf("no output directory given")
	}
	if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	return &Params{
		JSONPath:  path,
		Cards:     cards,
		Size:      size,
		Resize:    resize,
		OutputDir: s.OutputDir,
	}, nil
}
