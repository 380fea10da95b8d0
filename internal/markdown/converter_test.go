package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLConverter(t *testing.T) {
	c := NewHTMLConverter("")

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "paragraphs and emphasis",
			html: "<p>One <em>two</em></p><p>Three</p>",
			want: "One _two_\n\nThree",
		},
		{
			name: "bare text blocks become paragraphs",
			html: "First line\n\nSecond block",
			want: "First line\n\nSecond block",
		},
		{
			name: "headings and lists",
			html: "<h2>Apps</h2><ul><li>Xcode</li><li>Tower</li></ul>",
			want: "## Apps\n\n- Xcode\n- Tower",
		},
		{
			name: "fenced code",
			html: "<pre><code>let x = 1</code></pre>",
			want: "```\nlet x = 1\n```",
		},
		{
			name: "image",
			html: `<p><img src="/media/wp-assets/leogdion/2018/12/a.png" alt="shot"></p>`,
			want: "![shot](/media/wp-assets/leogdion/2018/12/a.png)",
		},
		{
			name: "empty paragraphs and scripts dropped",
			html: "<p>kept</p><p> </p><script>alert(1)</script>",
			want: "kept",
		},
		{
			name: "embed shortcode",
			html: "[embed]https://example.com/x[/embed]",
			want: "[https://example.com/x](https://example.com/x)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutop(t *testing.T) {
	assert.Equal(t, "<p>a</p>\n<p>b<br>\nc</p>\n", Autop("a\n\nb\nc"))
	assert.Equal(t, "<h2>x</h2>\n<p>y</p>\n", Autop("<h2>x</h2>\n\ny"))

	withParagraphs := "<p>already</p>\n\nwrapped"
	assert.Equal(t, withParagraphs, Autop(withParagraphs))
}

func TestFirstParagraph(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain text", "First para\ncontinues.\n\nSecond.", "First para continues."},
		{"skips heading", "# Title\n\nBody text here.", "Body text here."},
		{"skips image-only paragraph", "![alt](/a.png)\n\nReal text.", "Real text."},
		{"keeps link text", "See [the docs](https://x.y) now.", "See the docs now."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstParagraph(tt.in))
		})
	}
}

func TestFirstHTMLParagraph(t *testing.T) {
	assert.Equal(t, "Hello world", FirstHTMLParagraph("<p></p><p>Hello   <b>world</b></p><p>more</p>"))
	assert.Equal(t, "plain", FirstHTMLParagraph("plain\n\nsecond"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a b", PlainText("<div>a\n <i>b</i></div>"))
}
