package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/gotmemo"
	"golang.org/x/net/html"
)

// HTMLProcessor extracts and applies translations to HTML content.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// Document is a parsed HTML document awaiting translations.
type Document struct {
	doc *goquery.Document
	// Every DOM text node carrying a given trimmed text, keyed by hash.
	targets map[string][]*html.Node
}

// Extract parses HTML and returns one TextNode per distinct trimmed text,
// in document order.
func (p *HTMLProcessor) Extract(content string) (*Document, []TextNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &gotmemo.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	parsed := &Document{doc: doc, targets: make(map[string][]*html.Node)}
	var nodes []TextNode

	p.walk(doc.Nodes, func(n *html.Node) {
		trimmed := strings.TrimSpace(n.Data)
		if trimmed == "" {
			return
		}

		hash := gotmemo.HashText(trimmed)
		if _, seen := parsed.targets[hash]; !seen {
			node := TextNode{
				ID:      fmt.Sprintf("node-%d", len(nodes)),
				Text:    trimmed,
				Hash:    hash,
				Context: buildContext(n),
			}
			if n.Parent != nil {
				node.ParentTag = n.Parent.Data
			}
			nodes = append(nodes, node)
		}
		parsed.targets[hash] = append(parsed.targets[hash], n)
	})

	return parsed, nodes, nil
}

// Apply writes translations[i] into every occurrence of nodes[i] and returns
// the serialized document. Leading and trailing whitespace of each occurrence
// is kept. Empty translations leave the text unchanged.
func (p *HTMLProcessor) Apply(doc *Document, nodes []TextNode, translations []string) (string, error) {
	if doc == nil {
		return "", &gotmemo.ProcessorError{Message: "no document", ContentType: "html"}
	}
	if len(translations) != len(nodes) {
		return "", &gotmemo.CountMismatchError{Expected: len(nodes), Got: len(translations)}
	}

	for i, node := range nodes {
		translated := translations[i]
		if translated == "" {
			continue
		}
		for _, n := range doc.targets[node.Hash] {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	}

	out, err := doc.doc.Html()
	if err != nil {
		return "", &gotmemo.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return out, nil
}

// Translate extracts the text of content, resolves it with a single bulk
// call and returns the translated document with its lang and dir set for
// the translator's target language.
func (p *HTMLProcessor) Translate(ctx context.Context, content string, translator BulkTranslator) (*ProcessedContent, error) {
	doc, nodes, err := p.Extract(content)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(nodes))
	for i, node := range nodes {
		texts[i] = node.Text
	}

	result, err := translator.Translate(ctx, texts)
	if err != nil {
		return nil, err
	}

	lang := translator.TargetLang()
	dir := gotmemo.GetDirection(lang)
	if lang != "" {
		doc.doc.Find("html").SetAttr("lang", gotmemo.ToHTMLLang(lang)).SetAttr("dir", dir)
	}

	out, err := p.Apply(doc, nodes, result.Translations)
	if err != nil {
		return nil, err
	}

	return &ProcessedContent{
		Content:         out,
		TargetLang:      lang,
		Direction:       dir,
		Nodes:           len(nodes),
		CachedCount:     result.CachedCount,
		TranslatedCount: result.TranslatedCount,
	}, nil
}

// walk calls fn for every text node outside ignored or data-no-translate elements.
func (p *HTMLProcessor) walk(roots []*html.Node, fn func(*html.Node)) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if p.ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "data-no-translate" {
					return
				}
			}
		}

		if n.Type == html.TextNode {
			fn(n)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}

	for _, n := range roots {
		visit(n)
	}
}

// buildContext creates a location hint for a text node.
func buildContext(n *html.Node) string {
	if n.Parent == nil {
		return ""
	}

	var parts []string
	parent := n.Parent
	tag := parent.Data

	var classAttr, idAttr string
	for _, attr := range parent.Attr {
		if attr.Key == "class" {
			classAttr = attr.Val
		} else if attr.Key == "id" {
			idAttr = attr.Val
		}
	}

	if classAttr != "" {
		parts = append(parts, fmt.Sprintf("in <%s class=\"%s\">", tag, classAttr))
	} else if idAttr != "" {
		parts = append(parts, fmt.Sprintf("in <%s id=\"%s\">", tag, idAttr))
	} else {
		parts = append(parts, fmt.Sprintf("in <%s>", tag))
	}

	// Sibling text, up to 3 items
	var siblings []string
	for sib := parent.FirstChild; sib != nil && len(siblings) < 3; sib = sib.NextSibling {
		if sib == n || sib.Type != html.TextNode {
			continue
		}
		sibText := strings.TrimSpace(sib.Data)
		if sibText != "" && len(sibText) < 100 {
			siblings = append(siblings, sibText)
		}
	}
	if len(siblings) > 0 {
		parts = append(parts, fmt.Sprintf("with: %s", strings.Join(siblings, ", ")))
	}

	// Ancestor path, up to 3 levels, outer to inner
	var ancestors []string
	ancestor := parent.Parent
	for i := 0; i < 3 && ancestor != nil; i++ {
		if ancestor.Type == html.ElementNode && ancestor.Data != "html" && ancestor.Data != "body" {
			ancestors = append([]string{ancestor.Data}, ancestors...)
		}
		ancestor = ancestor.Parent
	}
	if len(ancestors) > 0 {
		parts = append(parts, fmt.Sprintf("inside: %s", strings.Join(ancestors, " > ")))
	}

	return strings.Join(parts, " | ")
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 && trailingLen < len(original) {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + translated + trailing
}
