// Package output writes rendered catalogs into target files.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

// spliceSeparator is written between the marker line and the catalog
const spliceSeparator = "\n\n"

// Options configures how a catalog is placed in its target
type Options struct {
	Mode            models.WriteMode
	Marker          string // Substring identifying the marker line
	MarkerWindow    int    // Match only within the first N runes of a line (0 = whole line)
	OnMissingMarker models.MissingMarkerPolicy
	Preamble        string // Written before the catalog in rewrite mode
}

// Writer applies one write mode to target files
type Writer struct {
	opts Options
	log  *logrus.Entry
}

// NewWriter creates a Writer. Unset mode and policy fall back to catalog and fail.
func NewWriter(opts Options, log *logrus.Entry) *Writer {
	if !opts.Mode.IsValid() {
		opts.Mode = models.WriteModeCatalog
	}
	if !opts.OnMissingMarker.IsValid() {
		opts.OnMissingMarker = models.MissingMarkerFail
	}
	return &Writer{opts: opts, log: log}
}

// Write renders lines into targetPath according to the configured mode.
// A missing target is treated as empty. Returns whether the file content changed.
func (w *Writer) Write(targetPath string, lines []string) (bool, error) {
	existing, err := os.ReadFile(targetPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("%w: read %s: %w", utils.ErrTargetWrite, targetPath, err)
	}

	content, err := w.Compose(existing, lines)
	if err != nil {
		return false, utils.WrapErrorf(err, "target %s", targetPath)
	}

	if existing != nil && bytes.Equal(existing, content) {
		w.log.Debugf("Target %s already up to date", targetPath)
		return false, nil
	}

	if err := writeFileAtomic(targetPath, content); err != nil {
		return false, fmt.Errorf("%w: %w", utils.ErrTargetWrite, err)
	}
	w.log.WithFields(logrus.Fields{
		"target":  targetPath,
		"mode":    w.opts.Mode,
		"entries": len(lines),
		"sha256":  utils.CalculateBytesSHA256(content)[:12],
	}).Info("Catalog written")
	return true, nil
}

// Compose returns the new target content for the existing content and rendered lines
func (w *Writer) Compose(existing []byte, lines []string) ([]byte, error) {
	list := joinLines(lines)

	switch w.opts.Mode {
	case models.WriteModeRewrite:
		return composeRewrite(w.opts.Preamble, list), nil
	case models.WriteModeSplice, models.WriteModePreserve:
		return w.composeAtMarker(existing, list)
	default:
		return []byte(list), nil
	}
}

func composeRewrite(preamble, list string) []byte {
	var b strings.Builder
	if preamble != "" {
		b.WriteString(preamble)
		if !strings.HasSuffix(preamble, "\n") {
			b.WriteString("\n")
		}
		if list != "" {
			b.WriteString("\n")
		}
	}
	b.WriteString(list)
	return []byte(b.String())
}

func (w *Writer) composeAtMarker(existing []byte, list string) ([]byte, error) {
	lines := splitKeepEnds(existing)
	idx := w.findMarker(lines)

	if idx < 0 {
		if w.opts.OnMissingMarker != models.MissingMarkerAppend {
			return nil, fmt.Errorf("%w: no line contains %q", utils.ErrMarkerNotFound, w.opts.Marker)
		}
		w.log.Warnf("Marker %q not found, appending marker and catalog at end of file", w.opts.Marker)
		// The marker line is written too so the next run replaces this block
		var b bytes.Buffer
		if len(existing) > 0 {
			b.Write(existing)
			if !bytes.HasSuffix(existing, []byte("\n")) {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		b.WriteString(w.opts.Marker)
		b.WriteString("\n")
		b.WriteString(spliceSeparator)
		b.WriteString(list)
		return b.Bytes(), nil
	}

	var b bytes.Buffer
	for _, line := range lines[:idx+1] {
		b.WriteString(line)
	}
	b.WriteString(spliceSeparator)
	b.WriteString(list)

	if w.opts.Mode == models.WriteModePreserve {
		rest := lines[idx+1:]
		skip := 0
		for skip < len(rest) && isCatalogBlockLine(rest[skip]) {
			skip++
		}
		if rest = rest[skip:]; len(rest) > 0 {
			if list != "" {
				b.WriteString("\n")
			}
			for _, line := range rest {
				b.WriteString(line)
			}
		}
	}

	return b.Bytes(), nil
}

// findMarker returns the index of the first line containing the marker, or -1
func (w *Writer) findMarker(lines []string) int {
	if w.opts.Marker == "" {
		return -1
	}
	for i, line := range lines {
		if strings.Contains(firstRunes(line, w.opts.MarkerWindow), w.opts.Marker) {
			return i
		}
	}
	return -1
}

// isCatalogBlockLine matches blank lines and bullet links of a previously written catalog
func isCatalogBlockLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "* [")
}

func firstRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// splitKeepEnds splits content into lines, each keeping its "\n" terminator
func splitKeepEnds(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	parts := bytes.SplitAfter(content, []byte("\n"))
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) > 0 {
			lines = append(lines, string(p))
		}
	}
	return lines
}

// writeFileAtomic replaces path with content via a temporary file in the same directory
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // No-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
