package extractor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/scryfetch/internal/card"
	"github.com/arcanaland/scryfetch/internal/downloader"
)

// fakeFetcher records calls and returns canned results
type fakeFetcher struct {
	calls []string
	exts  []string
	fail  map[string]error
	panic map[string]bool
	hook  func(url string)
}

func (f *fakeFetcher) Download(ctx context.Context, url, dir, base, ext string, size *card.Resize) (*downloader.Result, error) {
	f.calls = append(f.calls, url)
	f.exts = append(f.exts, ext)
	if f.hook != nil {
		f.hook(url)
	}
	if f.panic[url] {
		panic("boom")
	}
	if err := f.fail[url]; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &downloader.Result{Path: filepath.Join(dir, base+".jpg"), Requested: ext, Format: "jpeg"}, nil
}

func withImages(name string, uris map[string]string) card.Card {
	return card.Card{Name: name, ImageURIs: uris}
}

func TestRunOutcomes(t *testing.T) {
	logger, hook := test.NewNullLogger()
	f := &fakeFetcher{
		fail:  map[string]error{"http://x/bad": downloader.ErrHTTPStatus},
		panic: map[string]bool{"http://x/panic": true},
	}

	cards := []card.Card{
		withImages("Ok", map[string]string{"normal": "http://x/ok"}),
		{Name: "No Images"},
		withImages("Only Small", map[string]string{"small": "http://x/small"}),
		withImages("Bad", map[string]string{"normal": "http://x/bad"}),
		withImages("Panics", map[string]string{"normal": "http://x/panic"}),
		{Name: "Face", CardFaces: []card.Face{{ImageURIs: map[string]string{"normal": "http://x/face"}}}},
	}

	var events []Event
	e := New(f, Options{
		Dir:          t.TempDir(),
		Size:         card.SizeNormal,
		FaceFallback: true,
		Logger:       logger,
		Reporter:     ReporterFunc(func(ev Event) { events = append(events, ev) }),
	})
	sum := e.Run(context.Background(), cards)

	assert.Equal(t, 6, sum.Total)
	assert.Equal(t, 2, sum.Downloaded)
	assert.Equal(t, 4, sum.Skipped)
	assert.False(t, sum.Cancelled)
	assert.Equal(t, 6, sum.Processed())

	require.Len(t, events, 6)
	want := []Outcome{Downloaded, SkippedNoImages, SkippedNoSize, SkippedError, SkippedError, Downloaded}
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Index)
		assert.Equal(t, 6, ev.Total)
		assert.Equal(t, want[i], ev.Outcome, "card %d", i+1)
	}
	assert.ErrorIs(t, events[3].Err, downloader.ErrHTTPStatus)
	assert.ErrorContains(t, events[4].Err, "panic")

	assert.Equal(t, []string{"http://x/ok", "http://x/bad", "http://x/panic", "http://x/face"}, f.calls)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestRunUndecodableRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.json")
	data := `[{"name":"Ok","image_uris":{"normal":"http://x/ok"}},
		{"name":42,"image_uris":{"normal":"http://x/bad"}}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cards, err := card.LoadCards(path)
	require.NoError(t, err)

	f := &fakeFetcher{}
	var events []Event
	logger, _ := test.NewNullLogger()
	sum := New(f, Options{
		Dir:      dir,
		Size:     card.SizeNormal,
		Logger:   logger,
		Reporter: ReporterFunc(func(ev Event) { events = append(events, ev) }),
	}).Run(context.Background(), cards)

	assert.Equal(t, 1, sum.Downloaded)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, []string{"http://x/ok"}, f.calls)
	require.Len(t, events, 2)
	assert.Equal(t, SkippedError, events[1].Outcome)
	assert.ErrorContains(t, events[1].Err, "invalid card record")
}

func TestRunPassesSizeExtension(t *testing.T) {
	f := &fakeFetcher{}
	cards := []card.Card{withImages("Bolt", map[string]string{"png": "http://x/1", "large": "http://x/2"})}
	logger, _ := test.NewNullLogger()

	New(f, Options{Size: card.SizePNG, Logger: logger}).Run(context.Background(), cards)
	New(f, Options{Size: card.SizeLarge, Logger: logger}).Run(context.Background(), cards)
	assert.Equal(t, []string{".png", ".jpg"}, f.exts)
}

func TestRunWithoutFaceFallback(t *testing.T) {
	f := &fakeFetcher{}
	cards := []card.Card{
		{Name: "Face", CardFaces: []card.Face{{ImageURIs: map[string]string{"normal": "http://x/face"}}}},
	}
	logger, _ := test.NewNullLogger()
	sum := New(f, Options{Size: card.SizeNormal, Logger: logger}).Run(context.Background(), cards)
	assert.Equal(t, 0, sum.Downloaded)
	assert.Equal(t, 1, sum.Skipped)
	assert.Empty(t, f.calls)
}

func TestRunSanitizesNames(t *testing.T) {
	var bases []string
	f := &fakeFetcher{}
	cards := []card.Card{
		withImages("Fire // Ice", map[string]string{"png": "http://x/1"}),
		withImages(`???`, map[string]string{"png": "http://x/2"}),
	}
	e := New(f, Options{
		Dir:  "out",
		Size: card.SizePNG,
		Reporter: ReporterFunc(func(ev Event) {
			bases = append(bases, filepath.Base(ev.Result.Path))
		}),
	})
	e.Run(context.Background(), cards)
	assert.Equal(t, []string{"Fire  Ice.jpg", "unnamed.jpg"}, bases)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{}
	f.hook = func(url string) {
		if url == "http://x/2" {
			cancel()
		}
	}
	cards := []card.Card{
		withImages("One", map[string]string{"normal": "http://x/1"}),
		withImages("Two", map[string]string{"normal": "http://x/2"}),
		withImages("Three", map[string]string{"normal": "http://x/3"}),
	}
	logger, _ := test.NewNullLogger()
	sum := New(f, Options{Size: card.SizeNormal, Logger: logger}).Run(ctx, cards)

	assert.True(t, sum.Cancelled)
	assert.Equal(t, 1, sum.Downloaded)
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, []string{"http://x/1", "http://x/2"}, f.calls)
}

func TestRunDelay(t *testing.T) {
	f := &fakeFetcher{}
	cards := []card.Card{
		withImages("One", map[string]string{"normal": "http://x/1"}),
		withImages("Two", map[string]string{"normal": "http://x/2"}),
		withImages("Three", map[string]string{"normal": "http://x/3"}),
	}
	start := time.Now()
	sum := New(f, Options{Size: card.SizeNormal, Delay: 20 * time.Millisecond}).Run(context.Background(), cards)
	assert.Equal(t, 3, sum.Downloaded)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "downloaded", Downloaded.String())
	assert.Equal(t, "no images", SkippedNoImages.String())
	assert.True(t, SkippedNoSize.Skipped())
	assert.False(t, Downloaded.Skipped())
}

func TestRunEndToEnd(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(1, 1, color.NRGBA{})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	dl := downloader.New(downloader.Options{Logger: logger})
	dir := t.TempDir()

	t.Run("SingleCard", func(t *testing.T) {
		out := filepath.Join(dir, "single")
		cards := []card.Card{{ID: "c1", ImageURIs: map[string]string{"normal": srv.URL + "/a.png"}}}
		sum := New(dl, Options{Dir: out, Size: card.SizeNormal, Logger: logger}).Run(context.Background(), cards)
		assert.Equal(t, 1, sum.Downloaded)
		assert.Equal(t, 0, sum.Skipped)
		assert.FileExists(t, filepath.Join(out, "c1.png"))
	})

	t.Run("DuplicateNames", func(t *testing.T) {
		out := filepath.Join(dir, "dupes")
		cards := []card.Card{
			withImages("Bolt", map[string]string{"large": srv.URL + "/1"}),
			withImages("Bolt", map[string]string{"large": srv.URL + "/2"}),
			withImages("Bolt", map[string]string{"large": srv.URL + "/3"}),
		}
		sum := New(dl, Options{Dir: out, Size: card.SizeLarge, Resize: &card.Resize{Width: 2, Height: 3}, Logger: logger}).
			Run(context.Background(), cards)
		assert.Equal(t, 3, sum.Downloaded)
		assert.Equal(t, 0, sum.Skipped)

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.ElementsMatch(t, []string{"Bolt.png", "Bolt_1.png", "Bolt_2.png"}, names)
	})
}
