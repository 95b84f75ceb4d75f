package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWithFrontmatter(t *testing.T) {
	doc, err := NewRenderer().Render("---\ntitle: Your Stress Card\n---\n# Breathe\n\nTwo minutes, twice a day.\n")
	require.NoError(t, err)

	assert.Equal(t, "Your Stress Card", doc.Title)
	assert.Contains(t, doc.HTML, `<h1 id="breathe">Breathe</h1>`)
	assert.NotContains(t, doc.HTML, "title:")
}

func TestRenderWithoutFrontmatter(t *testing.T) {
	doc, err := NewRenderer().Render("**Sleep** by ten")
	require.NoError(t, err)

	assert.Empty(t, doc.Title)
	assert.Contains(t, doc.HTML, "<strong>Sleep</strong>")
}

func TestRenderMalformedFrontmatterKeepsBody(t *testing.T) {
	doc, err := NewRenderer().Render("---\ntitle: [unclosed\n---\nbody text\n")
	require.NoError(t, err)

	assert.Empty(t, doc.Title)
	assert.Contains(t, doc.HTML, "body text")
}

func TestRenderDropsRawHTML(t *testing.T) {
	doc, err := NewRenderer().Render("<script>alert(1)</script>\n\nhi")
	require.NoError(t, err)

	assert.NotContains(t, doc.HTML, "<script>")
	assert.Contains(t, doc.HTML, "hi")
}
