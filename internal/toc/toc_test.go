package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_NoHeadings(t *testing.T) {
	entries := Extract("<p>Just a paragraph</p><pre><code>h2</code></pre>")
	require.NotNil(t, entries)
	assert.Len(t, entries, 0)
}

func TestExtract_EmptyBody(t *testing.T) {
	assert.Len(t, Extract(""), 0)
}

func TestExtract_PreservesDocumentOrder(t *testing.T) {
	body := `<h1 id="intro">Intro</h1>
<p>text</p>
<h2 id="setup">Setup</h2>
<h3 id="install-node">Install <code>node</code></h3>
<h2 class="x" id="usage">Usage &amp; tips</h2>`

	entries := Extract(body)

	require.Len(t, entries, 4)
	assert.Equal(t, Entry{Level: 1, Text: "Intro", ID: "intro"}, entries[0])
	assert.Equal(t, Entry{Level: 2, Text: "Setup", ID: "setup"}, entries[1])
	assert.Equal(t, Entry{Level: 3, Text: "Install node", ID: "install-node"}, entries[2])
	assert.Equal(t, Entry{Level: 2, Text: "Usage & tips", ID: "usage"}, entries[3])
}

func TestExtract_HeadingWithoutID(t *testing.T) {
	entries := Extract("<h4>Plain</h4>")
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Level)
	assert.Equal(t, "Plain", entries[0].Text)
	assert.Empty(t, entries[0].ID)
}

func TestExtract_CollapsesWhitespace(t *testing.T) {
	entries := Extract("<h2 id=\"a\">\n  Multi\n  line  </h2>")
	require.Len(t, entries, 1)
	assert.Equal(t, "Multi line", entries[0].Text)
}

func TestExtract_IgnoresHeaderAndHrTags(t *testing.T) {
	entries := Extract("<header>Site</header><hr><h2 id=\"real\">Real</h2><h7>nope</h7>")
	require.Len(t, entries, 1)
	assert.Equal(t, "real", entries[0].ID)
}

func TestExtractLevels_FiltersByRange(t *testing.T) {
	body := `<h1 id="a">A</h1><h2 id="b">B</h2><h3 id="c">C</h3><h4 id="d">D</h4>`

	entries := ExtractLevels(body, 2, 3)

	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "c", entries[1].ID)
}

func TestExtract_CountMatchesHeadings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "zero", body: "<p>none</p>", want: 0},
		{name: "one", body: "<h2 id=\"x\">X</h2>", want: 1},
		{name: "mixed levels", body: "<h1>a</h1><h2>b</h2><h3>c</h3><h4>d</h4><h5>e</h5><h6>f</h6>", want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Extract(tt.body), tt.want)
		})
	}
}
