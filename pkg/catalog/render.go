package catalog

import (
	"strings"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
)

const indentUnit = "  "

// slugReplacer drops the punctuation the target renderer drops and hyphenates spaces.
// The character sets are disjoint, so replacement order does not matter.
var slugReplacer = strings.NewReplacer(
	" ", "-",
	":", "",
	"?", "",
	"!", "",
	".", "",
	",", "",
	";", "",
	"(", "",
	")", "",
	"/", "",
	"\\", "",
	"'", "",
	"\"", "",
)

// Slugify converts a heading title into the anchor used to link to it
func Slugify(title string) string {
	return strings.ToLower(slugReplacer.Replace(title))
}

// Renderer produces catalog lines linking into one document
type Renderer struct {
	linkDocument string
}

// NewRenderer creates a Renderer whose links point at linkDocument.
// A leading "./" is accepted and not doubled.
func NewRenderer(linkDocument string) *Renderer {
	return &Renderer{linkDocument: strings.TrimPrefix(linkDocument, "./")}
}

// Render returns one line per entry, in entry order
func (r *Renderer) Render(entries []models.HeadingEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, r.RenderLine(entry))
	}
	return lines
}

// RenderLine formats a single entry as an indented markdown bullet link
func (r *Renderer) RenderLine(entry models.HeadingEntry) string {
	var b strings.Builder
	if entry.Level > 1 {
		b.WriteString(strings.Repeat(indentUnit, entry.Level-1))
	}
	b.WriteString("* [")
	b.WriteString(entry.Title)
	b.WriteString("](./")
	b.WriteString(r.linkDocument)
	b.WriteString("#")
	b.WriteString(Slugify(entry.Title))
	b.WriteString(")")
	return b.String()
}
