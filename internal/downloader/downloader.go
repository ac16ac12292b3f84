// Package downloader fetches card images and writes them to disk,
// optionally resized, as PNG or JPEG depending on transparency.
package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"github.com/arcanaland/scryfetch/internal/card"
	"github.com/arcanaland/scryfetch/internal/naming"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "scryfetch/1.0"
	JPEGQuality      = 90

	// maxImageBytes caps a single response body
	maxImageBytes = 64 << 20
)

var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Options configures a Downloader
type Options struct {
	Client    *http.Client // optional, built from Timeout when nil
	Timeout   time.Duration
	UserAgent string
	Logger    logrus.FieldLogger
}

// Downloader turns an image URL into a file on disk
type Downloader struct {
	client    *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// Result describes a written image
type Result struct {
	Path      string
	Requested string // extension asked for by the caller, may differ from Path's
	Format    string // "png" or "jpeg"
	Width     int
	Height    int
}

// New creates a Downloader
func New(opts Options) *Downloader {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	var log logrus.FieldLogger = logrus.StandardLogger()
	if opts.Logger != nil {
		log = opts.Logger
	}
	return &Downloader{client: client, userAgent: ua, log: log}
}

// Download fetches url, decodes and optionally resizes the image, and writes
// it into dir under a collision-free name derived from base. ext is the
// extension the caller expects; the decoded image has the final say:
// .png when it has an alpha channel, .jpg otherwise. Nothing is written
// unless every step succeeds.
func (d *Downloader) Download(ctx context.Context, url, dir, base, ext string, size *card.Resize) (*Result, error) {
	data, err := d.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}
	d.log.WithFields(logrus.Fields{"url": url, "format": format, "bounds": img.Bounds().Size()}).Debug("decoded image")

	alpha := HasAlpha(img)
	if size != nil {
		img = Resize(img, *size)
	}

	encoded, finalExt, err := Encode(img, alpha)
	if err != nil {
		return nil, err
	}
	if ext != "" && normalizeExt(ext) != finalExt {
		d.log.WithFields(logrus.Fields{"url": url, "requested": ext, "saved": finalExt}).
			Debug("extension replaced by image format")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	path, err := naming.UniquePath(dir, base, finalExt)
	if err != nil {
		return nil, err
	}
	if err := writeNew(path, encoded); err != nil {
		return nil, err
	}

	b := img.Bounds()
	res := &Result{Path: path, Requested: normalizeExt(ext), Format: "jpeg", Width: b.Dx(), Height: b.Dy()}
	if alpha {
		res.Format = "png"
	}
	return res, nil
}

// Fetch performs a GET request and returns the response body. Transport
// errors and non-2xx statuses are returned as errors.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response from %s: %w", url, err)
	}
	return data, nil
}

// Decode decodes JPEG, PNG, GIF or WebP data
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Resize scales img to exactly the requested dimensions with a Lanczos3
// filter. The aspect ratio is not preserved.
func Resize(img image.Image, size card.Resize) image.Image {
	return resize.Resize(uint(size.Width), uint(size.Height), img, resize.Lanczos3)
}

// HasAlpha reports whether the decoded image carries an alpha channel.
// Truecolor PNGs without transparency decode to *image.RGBA, so the
// premultiplied types only count when some pixel is not opaque.
func HasAlpha(img image.Image) bool {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA, *image.Alpha, *image.Alpha16:
		return true
	case *image.RGBA:
		return !m.Opaque()
	case *image.RGBA64:
		return !m.Opaque()
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// Encode encodes img as PNG with the best compression when alpha is set,
// and as a quality 90 baseline JPEG otherwise. It returns the encoded
// bytes and the matching file extension.
func Encode(img image.Image, alpha bool) ([]byte, string, error) {
	var buf bytes.Buffer
	if alpha {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
		}
		return buf.Bytes(), ".png", nil
	}

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), ".jpg", nil
}

func normalizeExt(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		return "." + strings.ToLower(ext)
	}
	return strings.ToLower(ext)
}

// writeNew creates path, failing if it already exists, and removes it
// again if the write does not complete.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
