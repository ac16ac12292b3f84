package validator

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/arcanaland/scryfetch/internal/card"
	"github.com/arcanaland/scryfetch/internal/naming"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string

	Total        int
	Downloadable int
}

type Validator struct {
	JSONPath     string
	Size         card.Size
	FaceFallback bool
	Results      ValidationResults
}

func NewValidator(jsonPath string, size card.Size, faceFallback bool) *Validator {
	return &Validator{
		JSONPath:     jsonPath,
		Size:         size,
		FaceFallback: faceFallback,
		Results:      ValidationResults{},
	}
}

// Validate loads the export and reports, without downloading anything,
// which cards would be skipped and why.
func (v *Validator) Validate() (ValidationResults, error) {
	cards, err := card.LoadCards(v.JSONPath)
	if err != nil {
		return v.Results, err
	}
	v.ValidateCards(cards)
	return v.Results, nil
}

// ValidateCards checks an already loaded card list
func (v *Validator) ValidateCards(cards []card.Card) {
	v.Results.Total = len(cards)
	if len(cards) == 0 {
		v.Results.Errors = append(v.Results.Errors, "export contains no cards")
		return
	}

	names := make(map[string]int)
	for i := range cards {
		v.validateCard(i+1, &cards[i])
		names[naming.FileBase(cards[i].DisplayName())]++
	}
	v.validateNames(names)
}

func (v *Validator) validateCard(index int, c *card.Card) {
	if c.DecodeErr != nil {
		v.Results.Errors = append(v.Results.Errors,
			fmt.Sprintf("card %d (%s): %v", index, c.DisplayName(), c.DecodeErr))
		return
	}
	if c.Name == "" && c.ID == "" {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("card %d has neither name nor id, it will be saved as %q", index, naming.FileBase(c.DisplayName())))
	}

	imageURL, err := c.ImageURL(v.Size, v.FaceFallback)
	if err != nil {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("card %d (%s): %v", index, c.DisplayName(), err))
		return
	}

	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.Results.Errors = append(v.Results.Errors,
			fmt.Sprintf("card %d (%s): invalid image URL %q", index, c.DisplayName(), imageURL))
		return
	}

	v.Results.Downloadable++
}

// validateNames warns about cards that will receive numbered file names
func (v *Validator) validateNames(names map[string]int) {
	var dupes []string
	for name, n := range names {
		if n > 1 {
			dupes = append(dupes, name)
		}
	}
	sort.Strings(dupes)

	for _, name := range dupes {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("%d cards share the file name %q, numbered suffixes will be added", names[name], name))
	}
}
