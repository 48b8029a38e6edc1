// Package testutil writes throwaway site sources for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// SitePaths points at the sources written by WriteSite.
type SitePaths struct {
	Root       string
	ContentDir string
	IndexFile  string
	StaticDir  string
	OutputDir  string
}

// Page describes one content file.
type Page struct {
	File        string
	Title       string
	Description string
	Href        string
	Category    string
	CatIndex    int
	SubCatIndex int
	Body        string
}

// Markdown renders p as a content file with frontmatter.
func (p Page) Markdown() string {
	return fmt.Sprintf(`---
title: %q
description: %q
category: %q
catIndex: %d
subcategory: "General"
subCatIndex: %d
href: %q
---
%s`, p.Title, p.Description, p.Category, p.CatIndex, p.SubCatIndex, p.Href, p.Body)
}

// DefaultPages are two tutorials: "a" with two headings and "b" with none.
func DefaultPages() []Page {
	return []Page{
		{
			File: "a.md", Title: "Page A", Description: "About A", Href: "a",
			Category: "Basics", CatIndex: 1, SubCatIndex: 1,
			Body: "# Alpha\n\nIntro.\n\n## Alpha details\n\n```bash\necho a\n```\n",
		},
		{
			File: "b.md", Title: "Page B", Description: "About B", Href: "b",
			Category: "Advanced", CatIndex: 2, SubCatIndex: 1,
			Body: "Just text.\n",
		},
	}
}

// WriteSite creates index.md, a content directory with pages and a static
// directory with a nested asset below a fresh temp dir.
func WriteSite(t testing.TB, pages []Page) SitePaths {
	t.Helper()

	root := t.TempDir()
	paths := SitePaths{
		Root:       root,
		ContentDir: filepath.Join(root, "markdown"),
		IndexFile:  filepath.Join(root, "index.md"),
		StaticDir:  filepath.Join(root, "static"),
		OutputDir:  filepath.Join(root, "_site"),
	}

	write(t, paths.IndexFile, "---\ntitle: Welcome\ndescription: Tutorial home\n---\n# Welcome\n\nStart here.\n")
	for _, p := range pages {
		write(t, filepath.Join(paths.ContentDir, p.File), p.Markdown())
	}
	if len(pages) == 0 {
		if err := os.MkdirAll(paths.ContentDir, 0o755); err != nil {
			t.Fatalf("failed to create content dir: %v", err)
		}
	}
	write(t, filepath.Join(paths.StaticDir, "js", "scrollToId.js"), "// scroll\n")
	write(t, filepath.Join(paths.StaticDir, "css", "style.css"), "body{}\n")

	return paths
}

func write(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
