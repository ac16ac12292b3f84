package card

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrNoImages    = errors.New("no images")
	ErrNoSize      = errors.New("no image for requested size")
	ErrInvalidSize = errors.New("invalid image size")
)

// Card represents a Scryfall card object. Only the fields needed to locate
// an image are decoded; everything else in the record is ignored.
type Card struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ImageURIs map[string]string `json:"image_uris"`
	CardFaces []Face            `json:"card_faces"`

	// DecodeErr is set when the record could not be decoded. Such a card
	// has no images and is skipped.
	DecodeErr error `json:"-"`
}

// Face is one side of a multi-faced card
type Face struct {
	Name      string            `json:"name"`
	ImageURIs map[string]string `json:"image_uris"`
}

// DisplayName returns the name used for progress output and file names
func (c *Card) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.ID != "" {
		return c.ID
	}
	return "unnamed"
}

// Images returns the image_uris mapping for the card. When the card has
// none of its own and faceFallback is set, the first face's mapping is used.
func (c *Card) Images(faceFallback bool) map[string]string {
	if len(c.ImageURIs) > 0 {
		return c.ImageURIs
	}
	if faceFallback && len(c.CardFaces) > 0 && len(c.CardFaces[0].ImageURIs) > 0 {
		return c.CardFaces[0].ImageURIs
	}
	return nil
}

// ImageURL resolves the URL for the given size
func (c *Card) ImageURL(size Size, faceFallback bool) (string, error) {
	uris := c.Images(faceFallback)
	if len(uris) == 0 {
		return "", ErrNoImages
	}
	url := uris[string(size)]
	if url == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSize, size)
	}
	return url, nil
}

// LoadCards reads a JSON array of card objects, or a Scryfall list object
// ({"object":"list","data":[...]}). Only a document that is not valid JSON
// or has the wrong shape is an error; a record that does not decode as a
// card is returned with DecodeErr set.
func LoadCards(path string) ([]Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	records, err := splitRecords(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON format in %s: %w", path, err)
	}

	cards := make([]Card, len(records))
	for i, raw := range records {
		cards[i] = decodeCard(raw)
	}
	return cards, nil
}

func splitRecords(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var list struct {
			Object string            `json:"object"`
			Data   []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		if list.Object != "list" {
			return nil, fmt.Errorf("expected a card array or a list object, got object %q", list.Object)
		}
		return list.Data, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeCard(raw json.RawMessage) Card {
	var c Card
	if err := json.Unmarshal(raw, &c); err != nil {
		// keep what identifies the record, drop anything that could be downloaded
		return Card{ID: c.ID, Name: c.Name, DecodeErr: fmt.Errorf("invalid card record: %w", err)}
	}
	return c
}

// TrimPathInput strips the quotes and whitespace a terminal adds to a
// dragged-and-dropped path.
func TrimPathInput(s string) string {
	return strings.Trim(strings.TrimSpace(s), ` "'`)
}
