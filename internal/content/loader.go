package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoHref is returned for content pages without an href slug.
	ErrNoHref = errors.New("frontmatter has no href")
	// ErrDuplicateHref is returned when two content pages share an href.
	ErrDuplicateHref = errors.New("duplicate href")
)

// yamlFormat decodes `---` delimited frontmatter with yaml.v3.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Loader reads Markdown content files from a directory.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the content directory.
func (l *Loader) Dir() string { return l.dir }

// ParseFile reads a single Markdown file and splits its frontmatter from the body.
// It does not require an href, so it is also used for the entry page.
func ParseFile(path string) (Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	page, err := Parse(data)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	page.FileName = path
	return page, nil
}

// Parse splits raw file contents into frontmatter and Markdown body.
func Parse(data []byte) (Page, error) {
	var fm Frontmatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm, yamlFormat)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return Page{Content: string(body), Frontmatter: fm}, nil
}

// LoadAll reads every .md file below the content directory in lexical path order.
//
// Files that cannot be read or parsed, have no href, or reuse an href already
// seen are skipped; their errors are joined into the returned error while the
// valid pages are still returned. A missing directory or a cancelled context
// fails the whole load.
func (l *Loader) LoadAll(ctx context.Context) ([]Page, error) {
	var paths []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list content directory %s: %w", l.dir, err)
	}

	pages := make([]Page, 0, len(paths))
	seen := make(map[string]string, len(paths))
	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := ParseFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if rel, relErr := filepath.Rel(l.dir, path); relErr == nil {
			page.FileName = filepath.ToSlash(rel)
		}

		href := page.Frontmatter.Href
		if href == "" {
			errs = append(errs, fmt.Errorf("%s: %w", page.FileName, ErrNoHref))
			continue
		}
		if first, dup := seen[href]; dup {
			errs = append(errs, fmt.Errorf("%s: %w %q (already used by %s)", page.FileName, ErrDuplicateHref, href, first))
			continue
		}
		seen[href] = page.FileName
		pages = append(pages, page)
	}

	return pages, errors.Join(errs...)
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}
