package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/toc"
)

func newTestRenderer(langs ...string) *Renderer {
	if len(langs) == 0 {
		langs = []string{"javascript", "bash", "plaintext"}
	}
	return New(Options{Languages: langs, Style: "github"}, logger.NewNop())
}

func TestNew_SkipsUnknownLanguages(t *testing.T) {
	r := newTestRenderer("javascript", "definitely-not-a-language", "BASH", "bash")
	assert.Equal(t, []string{"javascript", "bash"}, r.Languages())
}

func TestRender_HeadingIDsMatchTOC(t *testing.T) {
	r := newTestRenderer()

	out, err := r.Render("# Getting Started\n\n## Install the tools\n\ntext\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<h1 id="getting-started">Getting Started</h1>`)
	assert.Contains(t, out, `<h2 id="install-the-tools">Install the tools</h2>`)

	entries := toc.Extract(out)
	require.Len(t, entries, 2)
	assert.Equal(t, "getting-started", entries[0].ID)
	assert.Equal(t, "install-the-tools", entries[1].ID)
}

func TestRender_HighlightsRegisteredLanguage(t *testing.T) {
	r := newTestRenderer()

	out, err := r.Render("```javascript\nconst x = 1\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<pre class="chroma"><code class="hljs language-javascript">`)
	assert.Contains(t, out, `<span class="`)
	assert.Contains(t, out, "</code></pre>")
}

func TestRender_UnregisteredLanguageFallsBackToPlaintext(t *testing.T) {
	r := newTestRenderer("javascript")

	out, err := r.Render("```cobol\nDISPLAY 'HI' <b>\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, `class="hljs language-plaintext"`)
	assert.Contains(t, out, "DISPLAY")
	assert.NotContains(t, out, "<b>")
}

func TestRender_FenceWithoutLanguage(t *testing.T) {
	r := newTestRenderer()

	out, err := r.Render("```\nplain\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, `language-plaintext`)
}

func TestRender_PassesRawHTMLAndGFM(t *testing.T) {
	r := newTestRenderer()

	out, err := r.Render("<div class=\"note\">hi</div>\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<div class="note">hi</div>`)
	assert.Contains(t, out, "<table>")
}

func TestCSS_NotEmpty(t *testing.T) {
	r := newTestRenderer()
	assert.True(t, strings.Contains(r.CSS(), ".chroma"), "stylesheet should target the chroma wrapper")
}
