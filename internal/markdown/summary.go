package markdown

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FirstParagraph returns the plain text of the first Markdown paragraph
// that contains text. Paragraphs holding only images are skipped. Plain
// text input works too: it is a paragraph per blank-line separated block.
func FirstParagraph(source string) string {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var found string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindParagraph {
			return ast.WalkContinue, nil
		}
		if t := paragraphText(n, src); t != "" {
			found = t
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	return found
}

func paragraphText(p ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(p, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// PlainText returns the text content of an HTML fragment with whitespace
// collapsed.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// FirstHTMLParagraph returns the text of the first non-empty <p> in an HTML
// fragment, falling back to the first paragraph of its plain text.
func FirstHTMLParagraph(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return FirstParagraph(fragment)
	}
	var found string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.Join(strings.Fields(s.Text()), " ")
		return found == ""
	})
	if found != "" {
		return found
	}
	return FirstParagraph(doc.Text())
}
