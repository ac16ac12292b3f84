// Package ansi renders images as half-block terminal art.
package ansi

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

const halfBlock = '▀'

// Options controls rendering
type Options struct {
	// Columns is the output width in terminal cells
	Columns int
	// TrueColor selects 24-bit escapes; otherwise the 256 color cube is used
	TrueColor bool
	// Background is composited under transparent pixels
	Background colorful.Color
}

// Render draws img with one upper-half block per cell: the upper pixel is
// the foreground and the lower pixel the background. Each line ends with
// a reset sequence.
func Render(img image.Image, opts Options) string {
	b := img.Bounds()
	if opts.Columns <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	// Two pixel rows per text row
	rows := (opts.Columns*b.Dy()/b.Dx() + 1) / 2
	if rows < 1 {
		rows = 1
	}
	scaled := resize.Resize(uint(opts.Columns), uint(rows*2), img, resize.Lanczos3)
	sb := scaled.Bounds()

	var out strings.Builder
	for y := 0; y < rows*2; y += 2 {
		for x := 0; x < opts.Columns; x++ {
			upper := blend(pixel(scaled, sb.Min.X+x, sb.Min.Y+y), opts.Background)
			lower := blend(pixel(scaled, sb.Min.X+x, sb.Min.Y+y+1), opts.Background)
			out.WriteString(cell(upper, lower, opts.TrueColor))
		}
		out.WriteString("\x1b[0m\n")
	}
	return out.String()
}

func pixel(img image.Image, x, y int) color.Color {
	if image.Pt(x, y).In(img.Bounds()) {
		return img.At(x, y)
	}
	return color.Transparent
}

// blend composites c over bg
func blend(c color.Color, bg colorful.Color) colorful.Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return bg
	}
	fg := colorful.Color{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
	}
	if a == 0xffff {
		return fg
	}
	return bg.BlendRgb(fg, float64(a)/0xffff).Clamped()
}

func cell(fg, bg colorful.Color, trueColor bool) string {
	if trueColor {
		r1, g1, b1 := fg.RGB255()
		r2, g2, b2 := bg.RGB255()
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c", r1, g1, b1, r2, g2, b2, halfBlock)
	}
	return fmt.Sprintf("\x1b[38;5;%dm\x1b[48;5;%dm%c", cube(fg), cube(bg), halfBlock)
}

// cube maps a color onto the 6x6x6 cube of the 256 color palette
func cube(c colorful.Color) int {
	r, g, b := c.RGB255()
	q := func(v uint8) int { return (int(v)*5 + 127) / 255 }
	return 16 + 36*q(r) + 6*q(g) + q(b)
}

// Strip removes ANSI escape sequences from s
func Strip(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}
