package intake

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// htmlSanitizer strips scripts, styles and event handlers from uploaded HTML
// before any parsing. Contract uploads are untrusted input.
var htmlSanitizer = bluemonday.UGCPolicy()

// htmlConverter turns sanitized HTML into markdown, which the markdown
// sectioner already knows how to split into headings and paragraphs.
var htmlConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// extractHTML converts an HTML payload to markdown and sections it.
// The <title> element wins over the first heading when present.
func extractHTML(data []byte) (string, []Section, error) {
	clean := htmlSanitizer.SanitizeBytes(data)

	md, err := htmlConverter.ConvertString(string(clean))
	if err != nil {
		return "", nil, fmt.Errorf("html convert: %w", err)
	}

	title, sections := extractMarkdown(md)
	if t := htmlTitle(data); t != "" {
		title = t
	}
	return title, sections, nil
}

// htmlTitle returns the text of the first <title> element, if any.
func htmlTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	var title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if len(title) > 200 {
		title = title[:200]
	}
	return title
}
