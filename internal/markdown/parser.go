package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Document is a rendered card.
type Document struct {
	HTML string
	// Title comes from a "title" key in the YAML frontmatter, if present.
	Title string
}

// Renderer turns coach-reviewed card markdown into HTML. Raw HTML in the
// source is omitted. Safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
				&frontmatter.Extender{},
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
				goldmarkhtml.WithXHTML(),
			),
		),
	}
}

func (r *Renderer) Render(source string) (*Document, error) {
	pc := parser.NewContext()
	var buf bytes.Buffer

	err := r.md.Convert([]byte(source), &buf, parser.WithContext(pc))
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	return &Document{
		HTML:  buf.String(),
		Title: frontmatterTitle(pc),
	}, nil
}

// frontmatterTitle ignores malformed frontmatter; the body still renders.
func frontmatterTitle(pc parser.Context) string {
	data := frontmatter.Get(pc)
	if data == nil {
		return ""
	}

	var meta struct {
		Title string `yaml:"title"`
	}
	if data.Decode(&meta) != nil {
		return ""
	}
	return strings.TrimSpace(meta.Title)
}
