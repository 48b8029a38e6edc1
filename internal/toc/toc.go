// Package toc builds a table of contents from rendered page HTML.
package toc

import (
	"strings"

	"golang.org/x/net/html"
)

// Entry is one heading of a page.
type Entry struct {
	Level int    // 1 for h1 ... 6 for h6
	Text  string // heading text with markup stripped and whitespace collapsed
	ID    string // id attribute of the heading element, used as the link anchor
}

// Extract lists every h1-h6 heading of body in document order.
// It never fails: malformed markup ends the scan and an HTML fragment without
// headings yields an empty, non-nil slice.
func Extract(body string) []Entry {
	return ExtractLevels(body, 1, 6)
}

// ExtractLevels is Extract restricted to headings between minLevel and maxLevel.
func ExtractLevels(body string, minLevel, maxLevel int) []Entry {
	entries := make([]Entry, 0)
	z := html.NewTokenizer(strings.NewReader(body))

	var (
		open *Entry
		text strings.Builder
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			return entries

		case html.StartTagToken:
			if open != nil {
				continue
			}
			name, hasAttr := z.TagName()
			level := headingLevel(name)
			if level == 0 {
				continue
			}
			open = &Entry{Level: level}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "id" {
					open.ID = string(val)
				}
			}
			text.Reset()

		case html.TextToken:
			if open != nil {
				text.Write(z.Text())
			}

		case html.EndTagToken:
			if open == nil {
				continue
			}
			name, _ := z.TagName()
			if headingLevel(name) != open.Level {
				continue
			}
			open.Text = strings.Join(strings.Fields(text.String()), " ")
			if open.Level >= minLevel && open.Level <= maxLevel {
				entries = append(entries, *open)
			}
			open = nil
		}
	}
}

// headingLevel returns 1-6 for h1-h6 tag names and 0 otherwise.
func headingLevel(tag []byte) int {
	if len(tag) != 2 || tag[0] != 'h' || tag[1] < '1' || tag[1] > '6' {
		return 0
	}
	return int(tag[1] - '0')
}
