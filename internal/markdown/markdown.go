// Package markdown converts page bodies to HTML with syntax-highlighted code blocks.
//
// A Renderer is built once at startup and shared by every build step and
// request; nothing about it changes after New returns.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/MrSnakeDoc/tutor/internal/logger"
)

// Options configures a Renderer.
type Options struct {
	Languages []string // highlighter languages to register, by chroma lexer name or alias
	Style     string   // chroma style used by CSS
}

// Renderer turns Markdown into HTML.
type Renderer struct {
	md        goldmark.Markdown
	code      *codeBlockRenderer
	languages []string
	css       string
}

// New registers the requested languages and builds the Markdown pipeline.
// A language chroma does not know is logged and left out; fences using it
// are highlighted as plain text.
func New(opts Options, log logger.Logger) *Renderer {
	registered := make(map[string]chroma.Lexer, len(opts.Languages))
	names := make([]string, 0, len(opts.Languages))
	for _, lang := range opts.Languages {
		key := strings.ToLower(strings.TrimSpace(lang))
		if key == "" {
			continue
		}
		lexer := lexers.Get(key)
		if lexer == nil {
			log.Error("failed to register highlight language",
				logger.String("language", lang))
			continue
		}
		if _, dup := registered[key]; !dup {
			names = append(names, key)
		}
		registered[key] = chroma.Coalesce(lexer)
	}

	style := styles.Get(opts.Style)
	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.PreventSurroundingPre(true),
	)

	code := &codeBlockRenderer{
		lexers:    registered,
		fallback:  chroma.Coalesce(lexers.Fallback),
		formatter: formatter,
		style:     style,
		log:       log,
	}

	var css bytes.Buffer
	if err := formatter.WriteCSS(&css, style); err != nil {
		log.Warn("failed to generate highlight stylesheet",
			logger.String("style", opts.Style),
			logger.Error(err))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(code, 100)),
		),
	)

	log.Debug("markdown renderer ready",
		logger.Strings("languages", names),
		logger.String("style", style.Name))

	return &Renderer{
		md:        md,
		code:      code,
		languages: names,
		css:       css.String(),
	}
}

// Render converts a Markdown body to HTML. Headings get auto-generated ids.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// CSS returns the stylesheet matching the classes emitted in code blocks.
func (r *Renderer) CSS() string { return r.css }

// Languages returns the registered highlighter languages in registration order.
func (r *Renderer) Languages() []string {
	out := make([]string, len(r.languages))
	copy(out, r.languages)
	return out
}
