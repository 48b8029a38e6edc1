// Package render merges page data into the site layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/tutor/internal/menu"
	"github.com/MrSnakeDoc/tutor/internal/toc"
)

//go:embed templates/*.html
var templatesFS embed.FS

const defaultLayout = "templates/index.html"

// Data is everything the layout can show. Exactly one of the route flags is set.
type Data struct {
	Title        string
	Description  string
	Content      template.HTML // rendered Markdown body
	MainMenu     []menu.Group
	TOC          []toc.Entry
	TOCLength    int
	HighlightCSS template.CSS

	EntryRoute    bool
	TutorialRoute bool
	NotFoundRoute bool
}

// Renderer executes the parsed layout. It is safe for concurrent use.
type Renderer struct {
	tpl *template.Template
}

// New parses the layout at layoutPath, or the embedded layout when layoutPath is empty.
func New(layoutPath string) (*Renderer, error) {
	var (
		tpl *template.Template
		err error
	)
	if layoutPath == "" {
		tpl, err = template.New("index.html").ParseFS(templatesFS, defaultLayout)
	} else {
		tpl, err = template.New(filepath.Base(layoutPath)).ParseFiles(layoutPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render writes the layout for data to w. Output is buffered: nothing reaches
// w when the layout fails.
func (r *Renderer) Render(w io.Writer, data Data) error {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute layout: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}

// RenderToFile renders data into path, creating parent directories.
func (r *Renderer) RenderToFile(path string, data Data) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
