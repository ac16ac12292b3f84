package card

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageURL(t *testing.T) {
	t.Run("DirectImages", func(t *testing.T) {
		c := Card{Name: "Bolt", ImageURIs: map[string]string{"normal": "http://x/a.jpg"}}
		url, err := c.ImageURL(SizeNormal, true)
		require.NoError(t, err)
		assert.Equal(t, "http://x/a.jpg", url)
	})

	t.Run("MissingSize", func(t *testing.T) {
		c := Card{Name: "Bolt", ImageURIs: map[string]string{"normal": "http://x/a.jpg"}}
		_, err := c.ImageURL(SizePNG, true)
		assert.True(t, errors.Is(err, ErrNoSize))
	})

	t.Run("NoImages", func(t *testing.T) {
		c := Card{Name: "Bolt"}
		_, err := c.ImageURL(SizeNormal, true)
		assert.ErrorIs(t, err, ErrNoImages)
	})

	t.Run("FaceFallback", func(t *testing.T) {
		c := Card{
			Name: "Delver of Secrets // Insectile Aberration",
			CardFaces: []Face{
				{Name: "Delver of Secrets", ImageURIs: map[string]string{"png": "http://x/front.png"}},
				{Name: "Insectile Aberration", ImageURIs: map[string]string{"png": "http://x/back.png"}},
			},
		}
		url, err := c.ImageURL(SizePNG, true)
		require.NoError(t, err)
		assert.Equal(t, "http://x/front.png", url)

		_, err = c.ImageURL(SizePNG, false)
		assert.ErrorIs(t, err, ErrNoImages)
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Bolt", (&Card{Name: "Bolt", ID: "c1"}).DisplayName())
	assert.Equal(t, "c1", (&Card{ID: "c1"}).DisplayName())
	assert.Equal(t, "unnamed", (&Card{}).DisplayName())
}

func TestParseSize(t *testing.T) {
	for _, s := range Sizes {
		got, err := ParseSize(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseSize(" Art_Crop ")
	require.NoError(t, err)
	assert.Equal(t, SizeArtCrop, got)

	_, err = ParseSize("huge")
	assert.ErrorIs(t, err, ErrInvalidSize)

	assert.Equal(t, ".png", SizePNG.Ext())
	assert.Equal(t, ".jpg", SizeLarge.Ext())
	assert.Equal(t, "Small", SizeSmall.Label())
}

func TestParseResize(t *testing.T) {
	r, err := ParseResize("488x680")
	require.NoError(t, err)
	assert.Equal(t, Resize{Width: 488, Height: 680}, *r)
	assert.Equal(t, "488x680", r.String())

	for _, bad := range []string{"", "488", "0x680", "-1x2", "axb", "1x2x3"} {
		_, err := ParseResize(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadCards(t *testing.T) {
	dir := t.TempDir()

	t.Run("Valid", func(t *testing.T) {
		path := filepath.Join(dir, "cards.json")
		data := `[{"id":"c1","name":"Bolt","image_uris":{"normal":"http://x/a.png"},"set":"lea"},
			{"id":"c2","card_faces":[{"image_uris":{"normal":"http://x/b.png"}}]}]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cards, err := LoadCards(path)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, "Bolt", cards[0].Name)
		assert.Equal(t, "http://x/b.png", cards[1].CardFaces[0].ImageURIs["normal"])
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadCards(filepath.Join(dir, "nope.json"))
		assert.ErrorContains(t, err, "file not found")
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"`), 0644))
		_, err := LoadCards(path)
		assert.ErrorContains(t, err, "invalid JSON")
	})

	t.Run("BadRecordKeepsOthers", func(t *testing.T) {
		path := filepath.Join(dir, "mixed.json")
		data := `[{"name":"Ok","image_uris":{"normal":"http://x/a.jpg"}},
			{"id":"c2","name":42,"image_uris":{"normal":"http://x/b.jpg"}},
			"not a card"]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cards, err := LoadCards(path)
		require.NoError(t, err)
		require.Len(t, cards, 3)

		assert.NoError(t, cards[0].DecodeErr)
		assert.Equal(t, "Ok", cards[0].Name)

		assert.ErrorContains(t, cards[1].DecodeErr, "invalid card record")
		assert.Equal(t, "c2", cards[1].DisplayName())
		assert.Nil(t, cards[1].ImageURIs)

		assert.Error(t, cards[2].DecodeErr)
		assert.Equal(t, "unnamed", cards[2].DisplayName())
	})

	t.Run("ListObject", func(t *testing.T) {
		path := filepath.Join(dir, "search.json")
		data := `{"object":"list","total_cards":1,"has_more":false,
			"data":[{"id":"c1","name":"Bolt","image_uris":{"png":"http://x/a.png"}}]}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cards, err := LoadCards(path)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "Bolt", cards[0].Name)
	})

	t.Run("OtherObject", func(t *testing.T) {
		path := filepath.Join(dir, "card.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"object":"card","name":"Bolt"}`), 0644))
		_, err := LoadCards(path)
		assert.ErrorContains(t, err, `got object "card"`)
	})
}

func TestTrimPathInput(t *testing.T) {
	assert.Equal(t, "/tmp/cards.json", TrimPathInput(` "/tmp/cards.json" `))
	assert.Equal(t, "/tmp/a b.json", TrimPathInput(`'/tmp/a b.json'`))
}
