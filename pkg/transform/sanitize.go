// pkg/transform/sanitize.go
package transform

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SanitizeOptions controls how permissive markup sanitization is. The zero
// value strips all markup and yields plain text.
type SanitizeOptions struct {
	AllowBasicFormatting bool // permit <b>, <i>, <u>, <strong>, <em>, <br>
	AllowLinks           bool // permit <a> (never pointing at Notion)
}

// SanitizeRichText neutralizes markup in a text value. With default options
// every tag is discarded and only plain text remains. Surviving links to
// Notion's own domains are demoted to inline spans; all other links are
// forced to open in a new context with a safe rel attribute.
func SanitizeRichText(text string, opts SanitizeOptions) string {
	text = buildPolicy(opts).Sanitize(text)
	if opts.AllowLinks {
		text = rewriteAnchors(text)
	}
	return strings.TrimSpace(text)
}

// buildPolicy assembles the bluemonday policy for the given options.
func buildPolicy(opts SanitizeOptions) *bluemonday.Policy {
	if !opts.AllowBasicFormatting && !opts.AllowLinks {
		return bluemonday.StrictPolicy()
	}

	policy := bluemonday.NewPolicy()
	if opts.AllowBasicFormatting {
		policy.AllowElements("b", "i", "u", "strong", "em", "br")
	}
	if opts.AllowLinks {
		policy.AllowElements("span")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
	}
	return policy
}

// rewriteAnchors demotes Notion-domain links to spans and normalizes the
// attributes of every other anchor. It operates on the already-sanitized
// markup as a parsed tree, so quoting style and attribute tricks in the
// input cannot slip an anchor past the rewrite.
func rewriteAnchors(markup string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, node := range nodes {
		walkAnchors(node)
		if err := html.Render(&b, node); err != nil {
			return ""
		}
	}
	return b.String()
}

func walkAnchors(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		rewriteAnchor(n)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkAnchors(child)
	}
}

// rewriteAnchor demotes an anchor to a span when it has no target or points
// at Notion itself, and forces safe rel/target attributes otherwise.
func rewriteAnchor(n *html.Node) {
	href := ""
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}

	if href == "" || strings.Contains(href, "notion.so") || strings.Contains(href, "notion.site") {
		n.Data = "span"
		n.DataAtom = atom.Span
		n.Attr = nil
		return
	}

	n.Attr = []html.Attribute{
		{Key: "href", Val: href},
		{Key: "rel", Val: "noopener noreferrer"},
		{Key: "target", Val: "_blank"},
	}
}

// SanitizeValue recursively sanitizes every string leaf of a value. Leaves
// stored under the keys url, start and end are structural, not freeform
// text, and pass through verbatim.
func SanitizeValue(value interface{}, opts SanitizeOptions) interface{} {
	switch v := value.(type) {
	case nil:
		return nil

	case string:
		return SanitizeRichText(v, opts)

	case []string:
		sanitized := make([]string, len(v))
		for i, item := range v {
			sanitized[i] = SanitizeRichText(item, opts)
		}
		return sanitized

	case []interface{}:
		sanitized := make([]interface{}, len(v))
		for i, item := range v {
			sanitized[i] = SanitizeValue(item, opts)
		}
		return sanitized

	case map[string]interface{}:
		sanitized := make(map[string]interface{}, len(v))
		for key, item := range v {
			if key == "url" || key == "start" || key == "end" {
				sanitized[key] = item
			} else {
				sanitized[key] = SanitizeValue(item, opts)
			}
		}
		return sanitized

	default:
		return value
	}
}

// SanitizeItem applies SanitizeValue to every projected property of an item.
// The item URL is structural and left untouched.
func SanitizeItem(item TransformedItem, opts SanitizeOptions) TransformedItem {
	sanitized := TransformedItem{
		ID:         item.ID,
		Properties: make(map[string]interface{}, len(item.Properties)),
		URL:        item.URL,
	}

	for key, value := range item.Properties {
		sanitized.Properties[key] = SanitizeValue(value, opts)
	}

	return sanitized
}
