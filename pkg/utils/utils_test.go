package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// --- CategorizeError Tests ---

func TestCategorizeError_NilError(t *testing.T) {
	result := CategorizeError(nil)
	if result != "None" {
		t.Errorf("CategorizeError(nil) = %q, want %q", result, "None")
	}
}

func TestCategorizeError_SentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"SourceRead", ErrSourceRead, "Source_Other"},
		{"TargetWrite", ErrTargetWrite, "Target_Other"},
		{"MarkerNotFound", ErrMarkerNotFound, "Target_MarkerNotFound"},
		{"AnchorMismatch", ErrAnchorMismatch, "Catalog_AnchorMismatch"},
		{"ConfigValidation", ErrConfigValidation, "Config_Validation"},
		{"UnknownJob", ErrUnknownJob, "Config_UnknownJob"},
		{"JobRunning", ErrJobRunning, "Job_AlreadyRunning"},
		{"Database", ErrDatabase, "State_Database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCategorizeError_WrappedOSErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "SourceNotExist",
			err:      fmt.Errorf("%w: %w", ErrSourceRead, os.ErrNotExist),
			expected: "Source_NotExist",
		},
		{
			name:     "SourcePermission",
			err:      fmt.Errorf("%w: %w", ErrSourceRead, os.ErrPermission),
			expected: "Source_Permission",
		},
		{
			name:     "TargetPermission",
			err:      fmt.Errorf("%w: %w", ErrTargetWrite, os.ErrPermission),
			expected: "Target_Permission",
		},
		{
			name:     "WrappedMarker",
			err:      WrapErrorf(ErrMarkerNotFound, "job %s", "readme"),
			expected: "Target_MarkerNotFound",
		},
		{
			name:     "BareNotExist",
			err:      fmt.Errorf("open: %w", os.ErrNotExist),
			expected: "Filesystem_NotExist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCategorizeError_ContextErrors(t *testing.T) {
	if got := CategorizeError(context.Canceled); got != "System_ContextCanceled" {
		t.Errorf("CategorizeError(Canceled) = %q", got)
	}
	if got := CategorizeError(fmt.Errorf("run: %w", context.DeadlineExceeded)); got != "System_ContextDeadlineExceeded" {
		t.Errorf("CategorizeError(DeadlineExceeded) = %q", got)
	}
}

func TestCategorizeError_Unknown(t *testing.T) {
	if got := CategorizeError(errors.New("something odd")); got != "Unknown" {
		t.Errorf("CategorizeError(unknown) = %q, want %q", got, "Unknown")
	}
}

// --- CompileRegexPatterns Tests ---

func TestCompileRegexPatterns_ValidPatterns(t *testing.T) {
	patterns := []string{
		`^\s*#\s*pragma`,
		`#endif$`,
		`[a-z]+`,
	}

	compiled, err := CompileRegexPatterns(patterns)
	if err != nil {
		t.Fatalf("CompileRegexPatterns() unexpected error: %v", err)
	}
	if len(compiled) != 3 {
		t.Errorf("CompileRegexPatterns() returned %d patterns, want 3", len(compiled))
	}
}

func TestCompileRegexPatterns_EmptyStringsSkipped(t *testing.T) {
	patterns := []string{"valid", "", "also_valid", ""}

	compiled, err := CompileRegexPatterns(patterns)
	if err != nil {
		t.Fatalf("CompileRegexPatterns() unexpected error: %v", err)
	}
	if len(compiled) != 2 {
		t.Errorf("CompileRegexPatterns() returned %d patterns, want 2", len(compiled))
	}
}

func TestCompileRegexPatterns_InvalidPattern(t *testing.T) {
	patterns := []string{
		`valid`,
		`[invalid`, // Unclosed bracket
	}

	_, err := CompileRegexPatterns(patterns)
	if err == nil {
		t.Fatal("CompileRegexPatterns() expected error for invalid pattern, got nil")
	}
	if !errors.Is(err, ErrConfigValidation) {
		t.Errorf("CompileRegexPatterns() error = %v, want wrapped ErrConfigValidation", err)
	}
}

func TestMatchesAny(t *testing.T) {
	patterns := []*regexp.Regexp{regexp.MustCompile(`^#\s*pragma`), regexp.MustCompile(`endif`)}

	if !MatchesAny(patterns, "#pragma once") {
		t.Error("MatchesAny() = false for pragma line, want true")
	}
	if !MatchesAny(patterns, "#endif // GUARD") {
		t.Error("MatchesAny() = false for endif line, want true")
	}
	if MatchesAny(patterns, "## GPIO") {
		t.Error("MatchesAny() = true for heading, want false")
	}
	if MatchesAny(nil, "anything") {
		t.Error("MatchesAny(nil) = true, want false")
	}
}

// --- Hash Tests ---

func TestCalculateBytesSHA256(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty",
			input:    "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "HelloWorld",
			input:    "hello world",
			expected: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateBytesSHA256([]byte(tt.input))
			if result != tt.expected {
				t.Errorf("CalculateBytesSHA256(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCalculateFileSHA256(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "Reference.md")
	if err := os.WriteFile(tmpFile, []byte("hello world"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	result, err := CalculateFileSHA256(tmpFile)
	if err != nil {
		t.Fatalf("CalculateFileSHA256() unexpected error: %v", err)
	}

	expected := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if result != expected {
		t.Errorf("CalculateFileSHA256() = %q, want %q", result, expected)
	}
}

func TestCalculateFileSHA256_NonExistentFile(t *testing.T) {
	_, err := CalculateFileSHA256("/nonexistent/path/file.md")
	if err == nil {
		t.Error("CalculateFileSHA256() expected error for non-existent file, got nil")
	}
}

// --- WrapErrorf Tests ---

func TestWrapErrorf_NilError(t *testing.T) {
	if result := WrapErrorf(nil, "some context"); result != nil {
		t.Errorf("WrapErrorf(nil, ...) = %v, want nil", result)
	}
}

func TestWrapErrorf_WrapsError(t *testing.T) {
	original := errors.New("original error")
	wrapped := WrapErrorf(original, "context %s", "value")

	if !errors.Is(wrapped, original) {
		t.Error("WrapErrorf() result should wrap original error")
	}
	expectedMsg := "context value: original error"
	if wrapped.Error() != expectedMsg {
		t.Errorf("WrapErrorf() message = %q, want %q", wrapped.Error(), expectedMsg)
	}
}
