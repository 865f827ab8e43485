package objectstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey("/modules/12/", "Week 1 Intro (final).PDF")
	assert.True(t, strings.HasPrefix(key, "modules/12/"), key)
	assert.True(t, strings.HasSuffix(key, "_Week-1-Intro-final.pdf"), key)

	assert.NotEqual(t, NewKey("x", "a.pdf"), NewKey("x", "a.pdf"))
	assert.True(t, strings.HasSuffix(NewKey("x", "!!!.zip"), "_file.zip"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.PDF"))
	assert.Equal(t, "video/mp4", ContentType("lesson.mp4"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/k", ObjectURL("https://cdn.example.com", "b", "nyc3.example.com", "k"))
	assert.Equal(t, "https://b.nyc3.example.com/k", ObjectURL("", "b", "nyc3.example.com", "k"))
	assert.Equal(t, "https://b.s3.amazonaws.com/k", ObjectURL("", "b", "", "k"))
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(Config{Bucket: "b"})
	require.ErrorIs(t, err, ErrNotConfigured)
}
