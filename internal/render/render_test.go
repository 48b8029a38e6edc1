package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tutor/internal/menu"
	"github.com/MrSnakeDoc/tutor/internal/toc"
)

func tutorialData() Data {
	return Data{
		Title:       "Routing",
		Description: "How routes work",
		Content:     "<h2 id=\"params\">Params</h2><p>body</p>",
		MainMenu: []menu.Group{
			{Key: "Basics", Entries: []menu.Entry{{Title: "Intro", Href: "intro"}}},
			{Key: "Advanced", Entries: []menu.Entry{{Title: "Routing", Href: "routing", Subcategory: "HTTP"}}},
		},
		TOC:           []toc.Entry{{Level: 2, Text: "Params", ID: "params"}},
		TOCLength:     1,
		TutorialRoute: true,
	}
}

func TestRender_TutorialPage(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, tutorialData()))
	out := buf.String()

	assert.Contains(t, out, "<title>Routing</title>")
	assert.Contains(t, out, `content="How routes work"`)
	assert.Contains(t, out, `<h2 id="params">Params</h2>`)
	assert.Contains(t, out, `<a href="/tutorial/intro">Intro</a>`)
	assert.Contains(t, out, `data-subcategory="HTTP"`)
	assert.Contains(t, out, `<li class="toc-level-2"><a href="#params">Params</a></li>`)
	assert.Contains(t, out, `class="tutorial"`)
}

func TestRender_OmitsTOCWhenEmpty(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	data := tutorialData()
	data.TOC = nil
	data.TOCLength = 0

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, data))
	assert.NotContains(t, buf.String(), `class="toc"`)
}

func TestRender_EntryPageHasNoMenu(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Data{Title: "Welcome", Content: "<p>hi</p>", EntryRoute: true}))

	assert.Contains(t, buf.String(), "<p>hi</p>")
	assert.NotContains(t, buf.String(), "main-menu")
}

func TestRender_NotFoundPage(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Data{
		Title:         "Page Not Found",
		Description:   "The server cannot find the requested resource",
		NotFoundRoute: true,
	}))

	assert.Contains(t, buf.String(), "<h1>Page Not Found</h1>")
	assert.Contains(t, buf.String(), `class="not-found"`)
}

func TestRender_EscapesMetadata(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Data{Title: "<script>x</script>", EntryRoute: true}))
	assert.NotContains(t, buf.String(), "<script>x</script>")
}

func TestNew_CustomLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.html")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Title}}|{{.TOCLength}}`), 0o644))

	r, err := New(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, tutorialData()))
	assert.Equal(t, "Routing|1", buf.String())
}

func TestNew_MissingLayout(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}

func TestRender_FailingLayoutWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.html")
	require.NoError(t, os.WriteFile(path, []byte(`start {{.Missing}}`), 0o644))

	r, err := New(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.Error(t, r.Render(&buf, tutorialData()))
	assert.Zero(t, buf.Len())
}

func TestRenderToFile_CreatesParents(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tutorial", "routing", "index.html")
	require.NoError(t, r.RenderToFile(path, tutorialData()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Routing</title>")
}
