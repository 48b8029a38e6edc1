package markdown

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/MrSnakeDoc/tutor/internal/logger"
)

const plaintext = "plaintext"

// codeBlockRenderer replaces goldmark's fenced code block output with
// chroma-highlighted markup.
type codeBlockRenderer struct {
	lexers    map[string]chroma.Lexer
	fallback  chroma.Lexer
	formatter *chromahtml.Formatter
	style     *chroma.Style
	log       logger.Logger
}

func (c *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, c.renderFencedCodeBlock)
}

// lexerFor resolves a fence language against the registered set.
func (c *codeBlockRenderer) lexerFor(lang string) (chroma.Lexer, string) {
	key := strings.ToLower(lang)
	if lexer, ok := c.lexers[key]; ok {
		return lexer, key
	}
	if key != "" {
		c.log.Debug("highlight language not registered, using plaintext",
			logger.String("language", lang))
	}
	return c.fallback, plaintext
}

func (c *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	lexer, name := c.lexerFor(string(n.Language(source)))

	_, _ = w.WriteString(`<pre class="chroma"><code class="hljs language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(name)))
	_, _ = w.WriteString(`">`)

	iterator, err := lexer.Tokenise(nil, code.String())
	if err == nil {
		err = c.formatter.Format(w, c.style, iterator)
	}
	if err != nil {
		c.log.Warn("failed to highlight code block, writing it unstyled",
			logger.String("language", name),
			logger.Error(err))
		_, _ = w.Write(util.EscapeHTML(code.Bytes()))
	}

	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}
