// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// Converter turns an HTML fragment into Markdown.
type Converter interface {
	Convert(body string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(body string) (string, error)

func (f ConverterFunc) Convert(body string) (string, error) { return f(body) }

var (
	captionOpenRe  = regexp.MustCompile(`\[caption[^\]]*\]`)
	captionCloseRe = regexp.MustCompile(`\[/caption\]`)
	embedRe        = regexp.MustCompile(`\[embed\]([^\[]+)\[/embed\]`)
	blankLineRe    = regexp.MustCompile(`\n\s*\n`)
	paragraphRe    = regexp.MustCompile(`(?i)<p[\s>]`)
	blockTagRe     = regexp.MustCompile(`(?i)^<(p|div|h[1-6]|ul|ol|li|blockquote|pre|table|figure|iframe|hr|!--)`)
)

// HTMLConverter converts WordPress post HTML. Bodies are normalized before
// conversion: caption and embed shortcodes are resolved, bare text blocks
// are wrapped in paragraphs the way WordPress renders them, and
// presentation-only markup is dropped.
type HTMLConverter struct {
	conv *md.Converter
}

// NewHTMLConverter returns a converter producing fenced code blocks and
// GitHub-flavored tables. Relative links are resolved against domain when
// it is non-empty.
func NewHTMLConverter(domain string) *HTMLConverter {
	conv := md.NewConverter(domain, true, &md.Options{
		CodeBlockStyle: "fenced",
		EscapeMode:     "basic",
	})
	conv.Use(plugin.GitHubFlavored(), plugin.YoutubeEmbed())
	conv.Remove("form", "noscript")
	return &HTMLConverter{conv: conv}
}

// Convert implements Converter.
func (c *HTMLConverter) Convert(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Autop(resolveShortcodes(body))))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	clean(doc.Selection)
	return c.conv.Convert(doc.Selection), nil
}

func resolveShortcodes(body string) string {
	body = captionOpenRe.ReplaceAllString(body, "<figure>")
	body = captionCloseRe.ReplaceAllString(body, "</figure>")
	return embedRe.ReplaceAllStringFunc(body, func(m string) string {
		u := strings.TrimSpace(embedRe.FindStringSubmatch(m)[1])
		u = html.EscapeString(u)
		return fmt.Sprintf(`<p><a href="%s">%s</a></p>`, u, u)
	})
}

// Autop wraps blank-line separated text blocks in <p> elements unless they
// already start with a block-level tag. Bodies that already contain
// paragraphs are returned unchanged.
func Autop(body string) string {
	if paragraphRe.MatchString(body) {
		return body
	}
	blocks := blankLineRe.Split(strings.TrimSpace(body), -1)
	var b strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if blockTagRe.MatchString(block) {
			b.WriteString(block)
		} else {
			b.WriteString("<p>")
			b.WriteString(strings.ReplaceAll(block, "\n", "<br>\n"))
			b.WriteString("</p>")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// clean removes markup that has no Markdown meaning and would otherwise
// leave empty lines or stray attributes behind.
func clean(sel *goquery.Selection) {
	sel.Find("script, style, link, meta").Remove()
	sel.Find("span").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})
	sel.Find("p").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" && s.Find("img, iframe").Length() == 0 {
			s.Remove()
		}
	})
	sel.Find("figcaption").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("<p><em>" + html.EscapeString(strings.TrimSpace(s.Text())) + "</em></p>")
	})
}
