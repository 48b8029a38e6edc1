// Package menu groups content pages into the category/subcategory navigation
// menu shown on tutorial pages.
package menu

import (
	"cmp"
	"math"
	"slices"

	"github.com/MrSnakeDoc/tutor/internal/content"
)

// DefaultCategory collects pages whose frontmatter has no category.
const DefaultCategory = "Uncategorized"

// Unranked is the sort key used for a missing catIndex or subCatIndex.
const Unranked = math.MaxInt

// Entry is the subset of a page's metadata the menu needs.
type Entry struct {
	Title       string
	Href        string
	Category    string
	CatIndex    int
	Subcategory string
	SubCatIndex int
}

// Group is one category of the menu with its ordered entries.
type Group struct {
	Key     string
	Entries []Entry
}

// Build groups pages by category and orders them.
//
// Entries inside a group are stable-sorted by SubCatIndex. Groups are then
// stable-sorted by the CatIndex of their first entry after that sort, so the
// second pass depends on the first. Groups start in first-occurrence order,
// which decides ties. pages is not modified.
func Build(pages []content.Page) []Group {
	order := make([]string, 0)
	byKey := make(map[string][]Entry)

	for _, p := range pages {
		e := entryFor(p)
		if _, ok := byKey[e.Category]; !ok {
			order = append(order, e.Category)
		}
		byKey[e.Category] = append(byKey[e.Category], e)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		entries := slices.Clone(byKey[key])
		slices.SortStableFunc(entries, func(a, b Entry) int {
			return cmp.Compare(a.SubCatIndex, b.SubCatIndex)
		})
		groups = append(groups, Group{Key: key, Entries: entries})
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Compare(a.Entries[0].CatIndex, b.Entries[0].CatIndex)
	})

	return groups
}

func entryFor(p content.Page) Entry {
	fm := p.Frontmatter
	category := fm.Category
	if category == "" {
		category = DefaultCategory
	}
	return Entry{
		Title:       fm.Title,
		Href:        fm.Href,
		Category:    category,
		CatIndex:    rank(fm.CatIndex),
		Subcategory: fm.Subcategory,
		SubCatIndex: rank(fm.SubCatIndex),
	}
}

func rank(v *int) int {
	if v == nil {
		return Unranked
	}
	return *v
}
