// Package catalog turns heading lines of a markdown document into a nested list of links.
package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

// DefaultMarker is the heading-marker character of markdown ATX headings
const DefaultMarker = '#'

// Exclusion keyword sets. A heading line containing any keyword is treated as code.
var (
	NarrowKeywords = []string{"include"}
	BroadKeywords  = []string{"include", "define", "if", "else"}
)

// KeywordsFor returns the exclusion keywords for a filter policy.
// Custom keywords are only used by FilterCustom; unknown policies fall back to narrow.
func KeywordsFor(policy models.FilterPolicy, custom []string) []string {
	switch policy {
	case models.FilterBroad:
		return BroadKeywords
	case models.FilterCustom:
		return custom
	default:
		return NarrowKeywords
	}
}

// ExtractorOptions configures heading detection
type ExtractorOptions struct {
	Marker         rune                 // Heading-marker character, DefaultMarker when zero
	Counting       models.LevelCounting // How marker characters contribute to the level
	Keywords       []string             // Substrings that disqualify a line
	Patterns       []*regexp.Regexp     // Regular expressions that disqualify a line
	SkipCodeFences bool                 // Ignore lines inside ``` or ~~~ fenced blocks
}

// Extractor scans lines and produces heading entries in document order
type Extractor struct {
	opts ExtractorOptions
}

// NewExtractor creates an Extractor, filling unset options with defaults
func NewExtractor(opts ExtractorOptions) *Extractor {
	if opts.Marker == 0 {
		opts.Marker = DefaultMarker
	}
	if !opts.Counting.IsValid() {
		opts.Counting = models.LevelCountingAnywhere
	}
	return &Extractor{opts: opts}
}

// NewExtractorFromPolicy builds an Extractor for a filter policy and optional regex patterns
func NewExtractorFromPolicy(policy models.FilterPolicy, custom, patterns []string, counting models.LevelCounting, marker rune, skipFences bool) (*Extractor, error) {
	compiled, err := utils.CompileRegexPatterns(patterns)
	if err != nil {
		return nil, err
	}
	return NewExtractor(ExtractorOptions{
		Marker:         marker,
		Counting:       counting,
		Keywords:       KeywordsFor(policy, custom),
		Patterns:       compiled,
		SkipCodeFences: skipFences,
	}), nil
}

// Extract returns one entry per qualifying heading line, preserving order
func (e *Extractor) Extract(lines []string) []models.HeadingEntry {
	entries := make([]models.HeadingEntry, 0)
	fence := ""

	for _, line := range lines {
		if e.opts.SkipCodeFences {
			var inside bool
			fence, inside = trackFence(fence, line)
			if inside {
				continue
			}
		}

		level := e.countMarkers(line)
		if level == 0 {
			continue
		}
		if e.excluded(line) {
			continue
		}

		entries = append(entries, models.HeadingEntry{
			Title: e.trimTitle(line),
			Level: level,
		})
	}

	return entries
}

// countMarkers implements the configured level counting.
// Anywhere counting deliberately includes marker characters inside the title text.
func (e *Extractor) countMarkers(line string) int {
	if e.opts.Counting == models.LevelCountingPrefix {
		n := 0
		for _, r := range strings.TrimLeftFunc(line, unicode.IsSpace) {
			if r != e.opts.Marker {
				break
			}
			n++
		}
		return n
	}
	return strings.Count(line, string(e.opts.Marker))
}

func (e *Extractor) excluded(line string) bool {
	for _, kw := range e.opts.Keywords {
		if kw != "" && strings.Contains(line, kw) {
			return true
		}
	}
	return utils.MatchesAny(e.opts.Patterns, line)
}

func (e *Extractor) trimTitle(line string) string {
	return strings.TrimFunc(line, func(r rune) bool {
		return r == e.opts.Marker || unicode.IsSpace(r)
	})
}

// trackFence updates the open fence delimiter for line.
// It reports whether the line belongs to a fenced block, delimiters included.
func trackFence(open, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if open != "" {
		if strings.HasPrefix(trimmed, open) {
			return "", true
		}
		return open, true
	}
	for _, delim := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, delim) {
			return delim, true
		}
	}
	return "", false
}

// SplitLines splits a document into lines without their "\n" or "\r\n" terminators
func SplitLines(doc []byte) []string {
	if len(doc) == 0 {
		return []string{}
	}
	lines := strings.Split(strings.TrimSuffix(string(doc), "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}
