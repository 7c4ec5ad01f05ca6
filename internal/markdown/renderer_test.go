package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	html, meta, err := r.Render([]byte("# Hello\n\nSome **bold** text."))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1")
	assert.Contains(t, string(html), "<strong>bold</strong>")
	assert.Nil(t, meta)
}

func TestRenderFrontmatter(t *testing.T) {
	r := NewRenderer()
	source := "---\ntitle: Trip Notes\ndraft: true\n---\n\n# Notes\n"

	html, meta, err := r.Render([]byte(source))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1")
	assert.NotContains(t, string(html), "title: Trip Notes")
	require.NotNil(t, meta)
	assert.Equal(t, "Trip Notes", meta["title"])
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Trip Notes 2024", Title("trip-notes_2024.md"))
	assert.Equal(t, "Readme", Title("readme"))
	assert.Equal(t, "Meeting Minutes", Title("meeting-minutes.txt"))
}
