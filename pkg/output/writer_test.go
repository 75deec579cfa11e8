package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-catalog/pkg/log"
	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

var sampleLines = []string{
	"* [GPIO](./Reference.md#gpio)",
	"  * [Wi-Fi: Station Mode](./Reference.md#wi-fi-station-mode)",
}

const sampleList = "* [GPIO](./Reference.md#gpio)\n  * [Wi-Fi: Station Mode](./Reference.md#wi-fi-station-mode)\n"

func newTestWriter(opts Options) *Writer {
	return NewWriter(opts, log.Discard())
}

func TestCompose_Catalog(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModeCatalog})

	got, err := w.Compose([]byte("old content\n"), sampleLines)

	require.NoError(t, err)
	assert.Equal(t, sampleList, string(got))
}

func TestCompose_CatalogEmpty(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModeCatalog})

	got, err := w.Compose([]byte("old"), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompose_Rewrite(t *testing.T) {
	tests := []struct {
		name     string
		preamble string
		lines    []string
		want     string
	}{
		{"preamble without newline", "# ESP32 notes", sampleLines, "# ESP32 notes\n\n" + sampleList},
		{"preamble with newline", "# ESP32 notes\n", sampleLines, "# ESP32 notes\n\n" + sampleList},
		{"no preamble", "", sampleLines, sampleList},
		{"empty list keeps preamble only", "# ESP32 notes\n", nil, "# ESP32 notes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWriter(Options{Mode: models.WriteModeRewrite, Preamble: tt.preamble})
			got, err := w.Compose([]byte("ignored"), tt.lines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCompose_SpliceTruncatesAfterMarker(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "目录"})
	existing := "# ESP32\n\nIntro.\n\n## 目录\n* [Old](./Reference.md#old)\nTrailing text\n"

	got, err := w.Compose([]byte(existing), sampleLines)

	require.NoError(t, err)
	assert.Equal(t, "# ESP32\n\nIntro.\n\n## 目录\n\n\n"+sampleList, string(got))
}

func TestCompose_SpliceMarkerWindow(t *testing.T) {
	existing := "See the 目录 below\n目录\nold\n"

	windowed := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "目录", MarkerWindow: 5})
	got, err := windowed.Compose([]byte(existing), sampleLines)
	require.NoError(t, err)
	assert.Equal(t, "See the 目录 below\n目录\n\n\n"+sampleList, string(got))

	whole := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "目录"})
	got, err = whole.Compose([]byte(existing), sampleLines)
	require.NoError(t, err)
	assert.Equal(t, "See the 目录 below\n\n\n"+sampleList, string(got))
}

func TestCompose_SpliceMarkerOnLastLineWithoutNewline(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "Contents"})

	got, err := w.Compose([]byte("# Title\n## Contents"), sampleLines)

	require.NoError(t, err)
	assert.Equal(t, "# Title\n## Contents\n\n"+sampleList, string(got))
}

func TestCompose_MissingMarkerFails(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "Contents"})

	_, err := w.Compose([]byte("# Title\n"), sampleLines)

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrMarkerNotFound)
}

func TestCompose_MissingMarkerAppends(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModePreserve, Marker: "Contents", OnMissingMarker: models.MissingMarkerAppend})

	got, err := w.Compose([]byte("# Title\n"), sampleLines)

	require.NoError(t, err)
	want := "# Title\n\nContents\n\n\n" + sampleList
	assert.Equal(t, want, string(got))

	again, err := w.Compose(got, sampleLines)
	require.NoError(t, err)
	assert.Equal(t, want, string(again), "second run must replace the appended block")
}

func TestCompose_MissingMarkerAppendsToUnterminatedFile(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "## Contents", OnMissingMarker: models.MissingMarkerAppend})

	got, err := w.Compose([]byte("# Title"), sampleLines)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\n## Contents\n\n\n"+sampleList, string(got))

	empty, err := w.Compose(nil, sampleLines)
	require.NoError(t, err)
	assert.Equal(t, "## Contents\n\n\n"+sampleList, string(empty))
}

func TestWrite_PreserveAppendIsStableAcrossRuns(t *testing.T) {
	target := filepath.Join(t.TempDir(), "GUIDE.md")
	require.NoError(t, os.WriteFile(target, []byte("# Guide\nIntro text.\n"), 0644))
	w := newTestWriter(Options{Mode: models.WriteModePreserve, Marker: "## Contents", OnMissingMarker: models.MissingMarkerAppend})

	changed, err := w.Write(target, sampleLines)
	require.NoError(t, err)
	assert.True(t, changed)
	first, err := os.ReadFile(target)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		changed, err = w.Write(target, sampleLines)
		require.NoError(t, err)
		assert.False(t, changed, "run %d rewrote an up-to-date target", i+2)
	}

	second, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 1, strings.Count(string(second), "* [GPIO]"))
}

func TestCompose_PreserveKeepsTrailingContent(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModePreserve, Marker: "## Contents"})
	existing := "# Title\n## Contents\n\n* [Old](./Reference.md#old)\n  * [Older](./Reference.md#older)\n\n## License\nMIT\n"

	got, err := w.Compose([]byte(existing), sampleLines)

	require.NoError(t, err)
	want := "# Title\n## Contents\n\n\n" + sampleList + "\n## License\nMIT\n"
	assert.Equal(t, want, string(got))

	again, err := w.Compose(got, sampleLines)
	require.NoError(t, err)
	assert.Equal(t, want, string(again), "preserve mode must be idempotent")
}

func TestCompose_PreserveEmptyList(t *testing.T) {
	w := newTestWriter(Options{Mode: models.WriteModePreserve, Marker: "## Contents"})

	got, err := w.Compose([]byte("## Contents\n* [Old](./R.md#old)\n## License\n"), nil)

	require.NoError(t, err)
	assert.Equal(t, "## Contents\n\n\n## License\n", string(got))
}

func TestNewWriter_Defaults(t *testing.T) {
	w := newTestWriter(Options{})

	assert.Equal(t, models.WriteModeCatalog, w.opts.Mode)
	assert.Equal(t, models.MissingMarkerFail, w.opts.OnMissingMarker)
}

func TestWrite_CreatesMissingTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "CATALOG.md")
	w := newTestWriter(Options{Mode: models.WriteModeCatalog})

	changed, err := w.Write(target, sampleLines)

	require.NoError(t, err)
	assert.True(t, changed)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, sampleList, string(data))
}

func TestWrite_EmptyCatalogCreatesEmptyFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "CATALOG.md")
	w := newTestWriter(Options{Mode: models.WriteModeCatalog})

	changed, err := w.Write(target, nil)

	require.NoError(t, err)
	assert.True(t, changed)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestWrite_UnchangedContentIsNotRewritten(t *testing.T) {
	target := filepath.Join(t.TempDir(), "CATALOG.md")
	require.NoError(t, os.WriteFile(target, []byte(sampleList), 0600))
	w := newTestWriter(Options{Mode: models.WriteModeCatalog})

	changed, err := w.Write(target, sampleLines)

	require.NoError(t, err)
	assert.False(t, changed)
}

func TestWrite_KeepsPermissions(t *testing.T) {
	target := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(target, []byte("## Contents\n"), 0600))
	w := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "Contents"})

	changed, err := w.Write(target, sampleLines)

	require.NoError(t, err)
	assert.True(t, changed)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWrite_MissingMarkerLeavesTargetUntouched(t *testing.T) {
	target := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(target, []byte("# Title\n"), 0644))
	w := newTestWriter(Options{Mode: models.WriteModeSplice, Marker: "Contents"})

	_, err := w.Write(target, sampleLines)

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrMarkerNotFound)
	data, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, "# Title\n", string(data))
}

func TestFirstRunes(t *testing.T) {
	assert.Equal(t, "## 目录", firstRunes("## 目录 and more", 5))
	assert.Equal(t, "short", firstRunes("short", 10))
	assert.Equal(t, "whole line", firstRunes("whole line", 0))
}

func TestSplitKeepEnds(t *testing.T) {
	assert.Nil(t, splitKeepEnds(nil))
	assert.Equal(t, []string{"a\n", "\n", "b"}, splitKeepEnds([]byte("a\n\nb")))
	assert.Equal(t, []string{"a\n"}, splitKeepEnds([]byte("a\n")))
}
