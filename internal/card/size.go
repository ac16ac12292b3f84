package card

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is one of the image variants Scryfall publishes for a card
type Size string

const (
	SizeSmall      Size = "small"
	SizeNormal     Size = "normal"
	SizeLarge      Size = "large"
	SizePNG        Size = "png"
	SizeArtCrop    Size = "art_crop"
	SizeBorderCrop Size = "border_crop"
)

// Sizes lists every size in menu order
var Sizes = []Size{SizeSmall, SizeNormal, SizeLarge, SizePNG, SizeArtCrop, SizeBorderCrop}

// ParseSize validates a size tag
func ParseSize(s string) (Size, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, size := range Sizes {
		if string(size) == s {
			return size, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidSize, s, sizeList())
}

// Ext is the extension suggested by the size tag. The downloader may
// replace it once the image has been decoded.
func (s Size) Ext() string {
	if s == SizePNG {
		return ".png"
	}
	return ".jpg"
}

// Label is the human readable menu entry for the size
func (s Size) Label() string {
	switch s {
	case SizePNG:
		return "PNG (recommended)"
	case SizeArtCrop:
		return "Art Crop"
	case SizeBorderCrop:
		return "Border Crop"
	default:
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	}
}

func sizeList() string {
	names := make([]string, len(Sizes))
	for i, s := range Sizes {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Resize is an exact output size in pixels
type Resize struct {
	Width  int
	Height int
}

func (r Resize) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseResize parses "WxH". Both dimensions must be positive.
func ParseResize(s string) (*Resize, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid resize %q: expected WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	return NewResize(w, h)
}

// NewResize validates a width and height
func NewResize(width, height int) (*Resize, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %dx%d", width, height)
	}
	return &Resize{Width: width, Height: height}, nil
}
