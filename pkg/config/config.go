package config

import (
	"encoding/json"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

// JobConfig holds configuration for generating one catalog
type JobConfig struct {
	Source          string                     `yaml:"source"`                      // Markdown document whose headings are catalogued
	Target          string                     `yaml:"target"`                      // File receiving the catalog
	LinkDocument    string                     `yaml:"link_document,omitempty"`     // Link path; defaults to source relative to target dir
	Mode            models.WriteMode           `yaml:"mode,omitempty"`              // rewrite, catalog, splice or preserve
	Marker          string                     `yaml:"marker,omitempty"`            // Substring locating the marker line (splice/preserve)
	MarkerWindow    int                        `yaml:"marker_window,omitempty"`     // Only search the first N runes of each line (0 = whole line)
	OnMissingMarker models.MissingMarkerPolicy `yaml:"on_missing_marker,omitempty"` // fail or append
	Preamble        string                     `yaml:"preamble,omitempty"`          // Text written before the catalog (rewrite)
	PreambleFile    string                     `yaml:"preamble_file,omitempty"`     // File whose content is used as preamble (rewrite)
	Filter          models.FilterPolicy        `yaml:"filter,omitempty"`            // narrow, broad or custom
	ExcludeKeywords []string                   `yaml:"exclude_keywords,omitempty"`  // Keywords for the custom filter
	ExcludePatterns []string                   `yaml:"exclude_patterns,omitempty"`  // Regex patterns applied under any filter
	HeadingMarker   string                     `yaml:"heading_marker,omitempty"`    // Single character, defaults to '#'
	LevelCounting   models.LevelCounting       `yaml:"level_counting,omitempty"`    // anywhere or prefix
	SkipCodeFences  *bool                      `yaml:"skip_code_fences,omitempty"`
	VerifyAnchors   *bool                      `yaml:"verify_anchors,omitempty"`
	StrictAnchors   *bool                      `yaml:"strict_anchors,omitempty"`
}

// AppConfig holds the global application configuration
type AppConfig struct {
	DefaultMode            models.WriteMode           `yaml:"default_mode,omitempty"`
	DefaultFilter          models.FilterPolicy        `yaml:"default_filter,omitempty"`
	DefaultLevelCounting   models.LevelCounting       `yaml:"default_level_counting,omitempty"`
	DefaultHeadingMarker   string                     `yaml:"default_heading_marker,omitempty"`
	DefaultOnMissingMarker models.MissingMarkerPolicy `yaml:"default_on_missing_marker,omitempty"`
	SkipCodeFences         bool                       `yaml:"skip_code_fences,omitempty"`
	VerifyAnchors          bool                       `yaml:"verify_anchors,omitempty"`
	StrictAnchors          bool                       `yaml:"strict_anchors,omitempty"`
	MaxParallelJobs        int                        `yaml:"max_parallel_jobs,omitempty"`
	WatchInterval          time.Duration              `yaml:"watch_interval,omitempty"`
	StateDir               string                     `yaml:"state_dir,omitempty"` // Persists watch state across restarts when set
	Jobs                   map[string]JobConfig       `yaml:"jobs"`
}

// GetEffectiveMode determines the write mode for a job
func GetEffectiveMode(jobCfg JobConfig, appCfg AppConfig) models.WriteMode {
	if jobCfg.Mode != models.WriteModeUnset {
		return jobCfg.Mode
	}
	if appCfg.DefaultMode != models.WriteModeUnset {
		return appCfg.DefaultMode
	}
	return models.WriteModeCatalog
}

// GetEffectiveFilter determines the false-positive filter policy for a job
func GetEffectiveFilter(jobCfg JobConfig, appCfg AppConfig) models.FilterPolicy {
	if jobCfg.Filter != models.FilterUnset {
		return jobCfg.Filter
	}
	if appCfg.DefaultFilter != models.FilterUnset {
		return appCfg.DefaultFilter
	}
	return models.FilterNarrow
}

// GetEffectiveLevelCounting determines how heading levels are counted for a job
func GetEffectiveLevelCounting(jobCfg JobConfig, appCfg AppConfig) models.LevelCounting {
	if jobCfg.LevelCounting != models.LevelCountingUnset {
		return jobCfg.LevelCounting
	}
	if appCfg.DefaultLevelCounting != models.LevelCountingUnset {
		return appCfg.DefaultLevelCounting
	}
	return models.LevelCountingAnywhere
}

// GetEffectiveHeadingMarker determines the heading-marker character for a job
func GetEffectiveHeadingMarker(jobCfg JobConfig, appCfg AppConfig) rune {
	for _, s := range []string{jobCfg.HeadingMarker, appCfg.DefaultHeadingMarker} {
		if s != "" {
			r, _ := utf8.DecodeRuneInString(s)
			return r
		}
	}
	return '#'
}

// GetEffectiveOnMissingMarker determines the missing-marker policy for a job
func GetEffectiveOnMissingMarker(jobCfg JobConfig, appCfg AppConfig) models.MissingMarkerPolicy {
	if jobCfg.OnMissingMarker != models.MissingMarkerUnset {
		return jobCfg.OnMissingMarker
	}
	if appCfg.DefaultOnMissingMarker != models.MissingMarkerUnset {
		return appCfg.DefaultOnMissingMarker
	}
	return models.MissingMarkerFail
}

// GetEffectiveSkipCodeFences determines whether fenced code blocks are skipped
func GetEffectiveSkipCodeFences(jobCfg JobConfig, appCfg AppConfig) bool {
	if jobCfg.SkipCodeFences != nil {
		return *jobCfg.SkipCodeFences
	}
	return appCfg.SkipCodeFences
}

// GetEffectiveVerifyAnchors determines whether slugs are checked against goldmark anchors
func GetEffectiveVerifyAnchors(jobCfg JobConfig, appCfg AppConfig) bool {
	if jobCfg.VerifyAnchors != nil {
		return *jobCfg.VerifyAnchors
	}
	return appCfg.VerifyAnchors
}

// GetEffectiveStrictAnchors determines whether anchor mismatches fail the job.
// Strict mode implies verification.
func GetEffectiveStrictAnchors(jobCfg JobConfig, appCfg AppConfig) bool {
	if jobCfg.StrictAnchors != nil {
		return *jobCfg.StrictAnchors
	}
	return appCfg.StrictAnchors
}

// GetEffectiveLinkDocument determines the document path used inside catalog links.
// Without an explicit link_document it is the source path relative to the target's
// directory, slash separated; the source base name is the fallback when no relative
// path exists (one path absolute, the other not).
func GetEffectiveLinkDocument(jobCfg JobConfig) string {
	if jobCfg.LinkDocument != "" {
		return jobCfg.LinkDocument
	}
	targetDir := filepath.Dir(jobCfg.Target)
	rel, err := filepath.Rel(targetDir, jobCfg.Source)
	if err != nil {
		return filepath.Base(jobCfg.Source)
	}
	return filepath.ToSlash(rel)
}

// Fingerprint returns a SHA-256 over the job's effective settings.
// Editing any setting that changes what is written, or where, changes the fingerprint.
// The content of preamble_file is not included.
func Fingerprint(jobCfg JobConfig, appCfg AppConfig) string {
	effective := struct {
		Source          string                     `json:"source"`
		Target          string                     `json:"target"`
		LinkDocument    string                     `json:"link_document"`
		Mode            models.WriteMode           `json:"mode"`
		Marker          string                     `json:"marker"`
		MarkerWindow    int                        `json:"marker_window"`
		OnMissingMarker models.MissingMarkerPolicy `json:"on_missing_marker"`
		Preamble        string                     `json:"preamble"`
		PreambleFile    string                     `json:"preamble_file"`
		Filter          models.FilterPolicy        `json:"filter"`
		ExcludeKeywords []string                   `json:"exclude_keywords"`
		ExcludePatterns []string                   `json:"exclude_patterns"`
		HeadingMarker   rune                       `json:"heading_marker"`
		LevelCounting   models.LevelCounting       `json:"level_counting"`
		SkipCodeFences  bool                       `json:"skip_code_fences"`
		VerifyAnchors   bool                       `json:"verify_anchors"`
		StrictAnchors   bool                       `json:"strict_anchors"`
	}{
		Source:          jobCfg.Source,
		Target:          jobCfg.Target,
		LinkDocument:    GetEffectiveLinkDocument(jobCfg),
		Mode:            GetEffectiveMode(jobCfg, appCfg),
		Marker:          jobCfg.Marker,
		MarkerWindow:    jobCfg.MarkerWindow,
		OnMissingMarker: GetEffectiveOnMissingMarker(jobCfg, appCfg),
		Preamble:        jobCfg.Preamble,
		PreambleFile:    jobCfg.PreambleFile,
		Filter:          GetEffectiveFilter(jobCfg, appCfg),
		ExcludeKeywords: jobCfg.ExcludeKeywords,
		ExcludePatterns: jobCfg.ExcludePatterns,
		HeadingMarker:   GetEffectiveHeadingMarker(jobCfg, appCfg),
		LevelCounting:   GetEffectiveLevelCounting(jobCfg, appCfg),
		SkipCodeFences:  GetEffectiveSkipCodeFences(jobCfg, appCfg),
		VerifyAnchors:   GetEffectiveVerifyAnchors(jobCfg, appCfg),
		StrictAnchors:   GetEffectiveStrictAnchors(jobCfg, appCfg),
	}
	data, _ := json.Marshal(effective) // Plain strings, numbers and bools cannot fail to marshal
	return utils.CalculateBytesSHA256(data)
}
