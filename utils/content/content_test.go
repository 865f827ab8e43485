package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLegacyEnvelope(t *testing.T) {
	env := DecodeLegacy(`{"url":"https://a.com","links":[{"name":"x","url":"https://b.com"}]}`)

	assert.Equal(t, "https://a.com", env.URL)
	require.Len(t, env.Links, 1)
	assert.Equal(t, Link{Name: "x", URL: "https://b.com"}, env.Links[0])
}

func TestDecodeLegacyNeverFails(t *testing.T) {
	inputs := []string{
		"https://example.com/page",
		"",
		"{not json",
		`["https://a.com"]`,
		"42",
		`{"url": 5}`,
	}
	for _, in := range inputs {
		env := DecodeLegacy(in)
		assert.Equal(t, in, env.URL, "input %q", in)
		assert.NotNil(t, env.Links, "input %q", in)
		assert.Empty(t, env.Links, "input %q", in)
	}
}

func TestDecodeLegacyObjectWithoutURL(t *testing.T) {
	env := DecodeLegacy(`{"links":[{"name":"doc","url":"https://d.com"}]}`)
	assert.Equal(t, "", env.URL)
	assert.Len(t, env.Links, 1)
}

func TestEncodeLegacy(t *testing.T) {
	assert.Equal(t, "https://a.com", EncodeLegacy(Envelope{URL: "https://a.com"}))

	raw := EncodeLegacy(Envelope{URL: "https://a.com", Links: []Link{{Name: "x", URL: "https://b.com"}}})
	assert.JSONEq(t, `{"url":"https://a.com","links":[{"name":"x","url":"https://b.com"}]}`, raw)
	assert.Equal(t, "https://a.com", DecodeLegacy(raw).URL)
}

func TestFromLegacyAndBack(t *testing.T) {
	ref := FromLegacy("https://a.com")
	assert.Equal(t, SchemaVersion, ref.Version)
	require.NotNil(t, ref.Primary)
	assert.Equal(t, KindURL, ref.Primary.Kind)
	assert.Equal(t, "https://a.com", ref.Legacy())

	empty := FromLegacy("")
	assert.Nil(t, empty.Primary)
	assert.True(t, empty.IsSet())
}

func TestNewReferenceDropsEmptyLinks(t *testing.T) {
	ref := NewReference(" https://a.com ", []Link{{Name: "a", URL: ""}, {Name: " b ", URL: "https://b.com"}})
	assert.Equal(t, "https://a.com", ref.PrimaryURL())
	assert.Equal(t, []Link{{Name: "b", URL: "https://b.com"}}, ref.Links)
}

func TestBuildViewFromEnvelope(t *testing.T) {
	ref := FromLegacy(`{"url":"https://a.com","links":[{"name":"x","url":"https://b.com"}]}`)

	view, err := BuildView(ref, nil)
	require.NoError(t, err)

	require.NotNil(t, view.Primary)
	assert.Equal(t, ViewLink, view.Primary.Kind)
	assert.Equal(t, "https://a.com", view.Primary.URL)

	require.Len(t, view.Resources, 1)
	assert.Equal(t, ResourceView{Kind: ViewLink, Label: "x", URL: "https://b.com"}, view.Resources[0])
}

func TestBuildViewEmbedsYouTube(t *testing.T) {
	view, err := BuildView(FromLegacy("https://www.youtube.com/watch?v=abc123&t=10"), nil)
	require.NoError(t, err)
	assert.Equal(t, ViewEmbed, view.Primary.Kind)
	assert.Equal(t, "https://www.youtube.com/embed/abc123", view.Primary.EmbedURL)

	view, err = BuildView(FromLegacy("https://youtu.be/xyz789"), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/embed/xyz789", view.Primary.EmbedURL)
}

func TestBuildViewResolvesFiles(t *testing.T) {
	ref := Reference{Version: SchemaVersion, Primary: &Resource{Kind: KindFile, Key: "modules/1/guide.pdf", Name: "guide.pdf"}}

	view, err := BuildView(ref, func(key string) (string, error) {
		return "https://cdn.example.com/" + key, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/modules/1/guide.pdf", view.Primary.URL)
	assert.Equal(t, "guide.pdf", view.Primary.Label)

	_, err = BuildView(ref, func(string) (string, error) { return "", errors.New("boom") })
	assert.Error(t, err)
}

func TestYouTubeID(t *testing.T) {
	assert.Equal(t, "abc", YouTubeID("youtube.com/watch?v=abc"))
	assert.Equal(t, "abc", YouTubeID("https://m.youtube.com/watch?v=abc"))
	assert.Equal(t, "", YouTubeID("https://youtube.com/channel/abc"))
	assert.Equal(t, "", YouTubeID("https://vimeo.com/123"))
	assert.Equal(t, "", YouTubeID(""))
}
