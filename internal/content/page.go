package content

// Frontmatter is the metadata block at the top of every content file.
//
// The index fields are pointers so that a missing value can be told apart
// from an explicit zero; the menu sorts missing indexes last.
type Frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Href        string `yaml:"href"`
	Category    string `yaml:"category"`
	CatIndex    *int   `yaml:"catIndex"`
	Subcategory string `yaml:"subcategory"`
	SubCatIndex *int   `yaml:"subCatIndex"`
}

// Page is one loaded content file. Pages are never modified after loading.
type Page struct {
	FileName    string // path relative to the content directory (or the file path for single loads)
	Content     string // Markdown body with the frontmatter removed
	Frontmatter Frontmatter
}

// Find returns the page whose href equals href.
func Find(pages []Page, href string) (Page, bool) {
	for _, p := range pages {
		if p.Frontmatter.Href == href {
			return p, true
		}
	}
	return Page{}, false
}

// IntPtr is a small helper for building frontmatter literals.
func IntPtr(v int) *int { return &v }
