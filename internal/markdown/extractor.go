package markdown

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-annocat/pkg/interfaces"
)

// Extractor walks a note's Markdown structure and pulls out annotation
// entries, index references, and fenced code blocks. The document grammar is
// positional: headings whose text starts with the "@" sigil open an entry,
// other headings set the active category, paragraphs attach to the open
// entry as description, and the first fence after an entry heading becomes
// its example.
type Extractor struct {
	engine goldmark.Markdown
}

// NewExtractor builds an Extractor with a GFM-enabled goldmark parser. The
// extractor only reads the AST, so renderer configuration is irrelevant here.
func NewExtractor() *Extractor {
	return &Extractor{
		engine: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Extract parses the note body and returns the structured extraction. Line
// numbers are relative to the Markdown body, after any frontmatter block.
func (e *Extractor) Extract(note *interfaces.Note) (*interfaces.Extraction, error) {
	if note == nil {
		return nil, errors.New("markdown extractor: nil note")
	}

	source := note.Body
	root := e.engine.Parser().Parse(text.NewReader(source))

	walk := &extractionWalk{
		note:     note,
		source:   source,
		category: strings.TrimSpace(note.FrontMatter.Category),
	}

	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		walk.visit(child)
	}
	walk.flush()

	walk.collectFences(root)

	return &interfaces.Extraction{
		Note:       note,
		Entries:    walk.entries,
		References: walk.references,
		Fences:     walk.fences,
	}, nil
}

type extractionWalk struct {
	note     *interfaces.Note
	source   []byte
	category string

	current    *interfaces.EntryDraft
	entries    []interfaces.EntryDraft
	references []interfaces.IndexReference
	fences     []interfaces.FenceInfo
}

func (w *extractionWalk) visit(node ast.Node) {
	switch n := node.(type) {
	case *ast.Heading:
		w.visitHeading(n)
	case *ast.Paragraph:
		w.visitParagraph(n)
	case *ast.FencedCodeBlock:
		w.visitFence(n)
	case *ast.List:
		w.visitList(n)
	}
}

func (w *extractionWalk) visitHeading(n *ast.Heading) {
	w.flush()

	heading := collectText(n, w.source)
	if heading == "" {
		return
	}

	if name := annotationToken(heading); name != "" {
		w.current = &interfaces.EntryDraft{
			Name:       name,
			Category:   w.category,
			SourcePath: w.note.FilePath,
			Line:       nodeLine(n, w.source),
		}
		return
	}

	w.category = heading
}

func (w *extractionWalk) visitParagraph(n *ast.Paragraph) {
	if w.current == nil {
		return
	}
	paragraph := collectText(n, w.source)
	if paragraph == "" {
		return
	}
	if w.current.Description == "" {
		w.current.Description = paragraph
		return
	}
	w.current.Description += "\n\n" + paragraph
}

func (w *extractionWalk) visitFence(n *ast.FencedCodeBlock) {
	if w.current == nil || w.current.Example != "" {
		return
	}
	w.current.Example = fenceContent(n, w.source)
	w.current.ExampleLanguage = fenceLanguage(n, w.source)
}

// visitList records annotation tokens listed without an explanatory body.
// Index sections enumerate names this way; lint later checks that each
// referenced name has a full entry somewhere in the corpus.
func (w *extractionWalk) visitList(n *ast.List) {
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		lead := item.FirstChild()
		if lead == nil {
			continue
		}
		itemText := collectText(lead, w.source)
		name := annotationToken(itemText)
		if name == "" {
			continue
		}
		w.references = append(w.references, interfaces.IndexReference{
			Name:       name,
			Category:   w.category,
			SourcePath: w.note.FilePath,
			Line:       nodeLine(lead, w.source),
		})
	}
}

func (w *extractionWalk) flush() {
	if w.current == nil {
		return
	}
	w.entries = append(w.entries, *w.current)
	w.current = nil
}

// collectFences records every fenced block in the document, including those
// nested inside lists or quotes, so lint can flag fences without a language.
func (w *extractionWalk) collectFences(root ast.Node) {
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		w.fences = append(w.fences, interfaces.FenceInfo{
			Language:   fenceLanguage(fence, w.source),
			SourcePath: w.note.FilePath,
			Line:       fenceLine(fence, w.source),
		})
		return ast.WalkContinue, nil
	})
}

// annotationToken returns the leading annotation identifier from text, or ""
// when the text does not start with the "@" sigil. Trailing punctuation and
// explanatory suffixes ("@Autowired - injects ...") are stripped.
func annotationToken(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "@") {
		return ""
	}

	token := text
	if idx := strings.IndexFunc(token, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ':' || r == '(' || r == ','
	}); idx >= 0 {
		token = token[:idx]
	}
	token = strings.TrimRight(token, ".:;,")
	if token == "@" {
		return ""
	}
	return token
}

func collectText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func fenceContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func fenceLanguage(n *ast.FencedCodeBlock, source []byte) string {
	lang := n.Language(source)
	if len(lang) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(string(lang)))
}

func fenceLine(n *ast.FencedCodeBlock, source []byte) int {
	if n.Info != nil {
		return lineForOffset(source, n.Info.Segment.Start)
	}
	if n.Lines().Len() > 0 {
		if line := lineForOffset(source, n.Lines().At(0).Start); line > 1 {
			// Opening fence sits on the line before the first content line.
			return line - 1
		}
	}
	return 0
}

func nodeLine(n ast.Node, source []byte) int {
	type lined interface {
		Lines() *text.Segments
	}
	if withLines, ok := n.(lined); ok {
		lines := withLines.Lines()
		if lines != nil && lines.Len() > 0 {
			return lineForOffset(source, lines.At(0).Start)
		}
	}
	return 0
}

func lineForOffset(source []byte, offset int) int {
	if offset < 0 || offset > len(source) {
		return 0
	}
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}
