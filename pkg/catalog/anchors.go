package catalog

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
)

// HeadingAnchors parses markdown content and returns the auto-generated id of every heading.
// Ids are returned in document order, with goldmark's "-N" suffixes on duplicates.
func HeadingAnchors(markdown []byte) []string {
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	doc := md.Parser().Parse(text.NewReader(markdown))

	var anchors []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Heading); ok {
			if v, ok := n.AttributeString("id"); ok {
				if id, ok := v.([]byte); ok {
					anchors = append(anchors, string(id))
				}
			}
		}
		return ast.WalkContinue, nil
	})

	return anchors
}

// VerifyAnchors returns the slugs of entries that do not resolve to a heading anchor
// in markdown, in entry order. An empty result means every catalog link resolves.
func VerifyAnchors(markdown []byte, entries []models.HeadingEntry) []string {
	known := make(map[string]struct{})
	for _, id := range HeadingAnchors(markdown) {
		known[id] = struct{}{}
	}

	var missing []string
	for _, entry := range entries {
		slug := Slugify(entry.Title)
		if _, ok := known[slug]; !ok {
			missing = append(missing, slug)
		}
	}
	return missing
}
