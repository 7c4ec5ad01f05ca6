package markdown

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Renderer converts text-file content to HTML for in-browser previews.
// Frontmatter blocks are parsed out so notes written for static site
// generators preview cleanly.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	return &Renderer{
		md: md,
	}
}

// Render converts markdown source to HTML, returning the content and any
// frontmatter metadata found.
func (r *Renderer) Render(source []byte) (content []byte, meta map[string]any, err error) {
	context := parser.NewContext()
	var buf bytes.Buffer

	err = r.md.Convert(source, &buf, parser.WithContext(context))
	if err != nil {
		return nil, nil, err
	}

	data := frontmatter.Get(context)
	if data != nil {
		meta = map[string]any{}
		if decodeErr := data.Decode(&meta); decodeErr != nil {
			meta = nil
		}
	}

	return buf.Bytes(), meta, nil
}

// Title derives a display title from a filename: "trip-notes_2024.md" becomes
// "Trip Notes 2024".
func Title(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(base)
}
