package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultCodeStyle is the chroma style used for highlighted code.
const DefaultCodeStyle = "github"

// Renderer converts cleaned Markdown into HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GitHub Flavored Markdown enabled and code
// highlighted using the named chroma style.
func NewRenderer(codeStyle string) *Renderer {
	style := styles.Get(codeStyle)
	if style == nil {
		style = styles.Fallback
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&nodeRenderer{style: style}, 100),
			),
		),
	)
	return &Renderer{md: md}
}

// Render cleans src and writes its HTML rendering to w.
func (r *Renderer) Render(w io.Writer, src string) error {
	if err := r.md.Convert([]byte(Clean(src)), w); err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	return nil
}

// RenderHTML cleans src and returns its HTML rendering.
func (r *Renderer) RenderHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, src); err != nil {
		return "", err
	}
	// goldmark drops raw HTML from the source unless WithUnsafe is set
	return template.HTML(buf.String()), nil
}

// nodeRenderer overrides how rules, tables, links and code are written.
type nodeRenderer struct {
	style *chroma.Style
}

// funcCapture records node renderer functions so they can be wrapped.
type funcCapture map[ast.NodeKind]renderer.NodeRendererFunc

func (c funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	c[kind] = fn
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindThematicBreak, r.renderThematicBreak)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)

	tables := funcCapture{}
	extension.NewTableHTMLRenderer().RegisterFuncs(tables)
	for kind, fn := range tables {
		if kind == extast.KindTable {
			reg.Register(kind, wrapTable(fn))
			continue
		}
		reg.Register(kind, fn)
	}
}

// renderThematicBreak drops horizontal rules entirely.
func (r *nodeRenderer) renderThematicBreak(_ util.BufWriter, _ []byte, _ ast.Node, _ bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}

// wrapTable puts tables inside a horizontally scrolling container.
func wrapTable(fn renderer.NodeRendererFunc) renderer.NodeRendererFunc {
	return func(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			_, _ = w.WriteString(`<div class="table-scroll">` + "\n")
			return fn(w, source, node, entering)
		}
		status, err := fn(w, source, node, entering)
		_, _ = w.WriteString("</div>\n")
		return status, err
	}
}

func (r *nodeRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	if !gmhtml.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer">`)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	if !entering {
		return ast.WalkContinue, nil
	}
	url := n.URL(source)
	label := n.Label(source)
	_, _ = w.WriteString(`<a href="`)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
		_, _ = w.WriteString("mailto:")
	}
	if !gmhtml.IsDangerousURL(url) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(url, false)))
	}
	_, _ = w.WriteString(`" target="_blank" rel="noopener noreferrer">`)
	_, _ = w.Write(util.EscapeHTML(label))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	code := blockLines(n, source)
	lang := string(n.Language(source))
	if lang == "" {
		lang = GuessLanguage(code)
	}
	return ast.WalkSkipChildren, r.highlight(w, code, lang)
}

func (r *nodeRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	code := blockLines(node, source)
	return ast.WalkSkipChildren, r.highlight(w, code, GuessLanguage(code))
}

// renderCodeSpan keeps short snippets inline and promotes long ones to blocks.
func (r *nodeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	code := buf.String()
	if IsBlockCode(code, "") {
		return ast.WalkSkipChildren, r.highlight(w, code, GuessLanguage(code))
	}
	_, _ = w.WriteString("<code>")
	_, _ = w.Write(util.EscapeHTML([]byte(code)))
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}

// highlight writes code as a chroma-highlighted block.
func (r *nodeRenderer) highlight(w io.Writer, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("failed to tokenise %s code: %w", lang, err)
	}

	_, _ = fmt.Fprintf(w, `<div class="code-block" data-language="%s">`, template.HTMLEscapeString(lang))
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	if err := formatter.Format(w, r.style, iter); err != nil {
		return fmt.Errorf("failed to format %s code: %w", lang, err)
	}
	_, _ = io.WriteString(w, "</div>\n")
	return nil
}

// blockLines joins the raw source lines of a code block.
func blockLines(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}
