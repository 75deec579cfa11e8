package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/Sriram-PR/doc-catalog/pkg/models"
	"github.com/Sriram-PR/doc-catalog/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// DefaultMode
	if c.DefaultMode != models.WriteModeUnset && !c.DefaultMode.IsValid() {
		warnings = append(warnings, fmt.Sprintf("default_mode '%s' is unknown, defaulting to 'catalog'", c.DefaultMode))
		c.DefaultMode = models.WriteModeCatalog
	}

	// DefaultFilter
	if c.DefaultFilter != models.FilterUnset && !c.DefaultFilter.IsValid() {
		warnings = append(warnings, fmt.Sprintf("default_filter '%s' is unknown, defaulting to 'narrow'", c.DefaultFilter))
		c.DefaultFilter = models.FilterNarrow
	}
	if c.DefaultFilter == models.FilterCustom {
		warnings = append(warnings, "default_filter 'custom' has no global keywords, jobs without exclude_keywords filter nothing")
	}

	// DefaultLevelCounting
	if c.DefaultLevelCounting != models.LevelCountingUnset && !c.DefaultLevelCounting.IsValid() {
		warnings = append(warnings, fmt.Sprintf("default_level_counting '%s' is unknown, defaulting to 'anywhere'", c.DefaultLevelCounting))
		c.DefaultLevelCounting = models.LevelCountingAnywhere
	}

	// DefaultHeadingMarker
	if c.DefaultHeadingMarker != "" && utf8.RuneCountInString(c.DefaultHeadingMarker) != 1 {
		warnings = append(warnings, fmt.Sprintf("default_heading_marker '%s' must be one character, defaulting to '#'", c.DefaultHeadingMarker))
		c.DefaultHeadingMarker = "#"
	}

	// DefaultOnMissingMarker
	if c.DefaultOnMissingMarker != models.MissingMarkerUnset && !c.DefaultOnMissingMarker.IsValid() {
		warnings = append(warnings, fmt.Sprintf("default_on_missing_marker '%s' is unknown, defaulting to 'fail'", c.DefaultOnMissingMarker))
		c.DefaultOnMissingMarker = models.MissingMarkerFail
	}

	// StrictAnchors implies VerifyAnchors
	if c.StrictAnchors && !c.VerifyAnchors {
		c.VerifyAnchors = true
	}

	// MaxParallelJobs
	if c.MaxParallelJobs < 0 {
		warnings = append(warnings, "max_parallel_jobs cannot be negative, defaulting to 1")
		c.MaxParallelJobs = 1
	}
	if c.MaxParallelJobs == 0 {
		c.MaxParallelJobs = 1
	}

	// WatchInterval
	if c.WatchInterval < 0 {
		warnings = append(warnings, "watch_interval cannot be negative, using the command-line interval")
		c.WatchInterval = 0
	}

	// StateDir must be a directory when it already exists
	if c.StateDir != "" {
		if info, statErr := os.Stat(c.StateDir); statErr == nil && !info.IsDir() {
			return warnings, fmt.Errorf("%w: state_dir %s is not a directory", utils.ErrConfigValidation, c.StateDir)
		}
	}

	// Jobs
	if len(c.Jobs) == 0 {
		warnings = append(warnings, "no jobs configured")
	}

	return warnings, nil
}

// Validate checks JobConfig fields and applies defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place (e.g., marker window normalization).
func (c *JobConfig) Validate() (warnings []string, err error) {
	// Required: Source
	if c.Source == "" {
		return nil, fmt.Errorf("%w: job has no source", utils.ErrConfigValidation)
	}

	// Required: Target
	if c.Target == "" {
		return nil, fmt.Errorf("%w: job has no target", utils.ErrConfigValidation)
	}

	// Catalog links contain the marker character, so a self-targeting job would
	// pick up its own links as headings on the next run
	if samePath(c.Source, c.Target) {
		return nil, fmt.Errorf("%w: job source and target are the same file (%s)", utils.ErrConfigValidation, c.Source)
	}

	// Mode
	if c.Mode != models.WriteModeUnset && !c.Mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown mode '%s' (supported: rewrite, catalog, splice, preserve)", utils.ErrConfigValidation, c.Mode)
	}

	// Marker is required when the job's own mode locates one
	if c.Mode.NeedsMarker() && c.Marker == "" {
		return nil, fmt.Errorf("%w: mode '%s' needs a marker", utils.ErrConfigValidation, c.Mode)
	}

	// MarkerWindow
	if c.MarkerWindow < 0 {
		warnings = append(warnings, "marker_window cannot be negative, searching the whole line")
		c.MarkerWindow = 0
	}

	// OnMissingMarker
	if c.OnMissingMarker != models.MissingMarkerUnset && !c.OnMissingMarker.IsValid() {
		return nil, fmt.Errorf("%w: unknown on_missing_marker '%s' (supported: fail, append)", utils.ErrConfigValidation, c.OnMissingMarker)
	}

	// Preamble
	if c.Preamble != "" && c.PreambleFile != "" {
		return nil, fmt.Errorf("%w: set either preamble or preamble_file, not both", utils.ErrConfigValidation)
	}
	if (c.Preamble != "" || c.PreambleFile != "") && c.Mode != models.WriteModeUnset && c.Mode != models.WriteModeRewrite {
		warnings = append(warnings, fmt.Sprintf("preamble is ignored in mode '%s'", c.Mode))
	}

	// Filter
	if c.Filter != models.FilterUnset && !c.Filter.IsValid() {
		return nil, fmt.Errorf("%w: unknown filter '%s' (supported: narrow, broad, custom)", utils.ErrConfigValidation, c.Filter)
	}
	if c.Filter == models.FilterCustom && len(c.ExcludeKeywords) == 0 {
		warnings = append(warnings, "filter 'custom' without exclude_keywords filters nothing")
	}
	if c.Filter != models.FilterCustom && c.Filter != models.FilterUnset && len(c.ExcludeKeywords) > 0 {
		warnings = append(warnings, fmt.Sprintf("exclude_keywords are ignored with filter '%s'", c.Filter))
	}
	if c.Filter == models.FilterBroad {
		warnings = append(warnings, "filter 'broad' also drops headings containing 'if' or 'else' (e.g. 'Notification')")
	}

	// ExcludePatterns
	if _, err := utils.CompileRegexPatterns(c.ExcludePatterns); err != nil {
		return nil, err
	}

	// HeadingMarker
	if c.HeadingMarker != "" && utf8.RuneCountInString(c.HeadingMarker) != 1 {
		return nil, fmt.Errorf("%w: heading_marker '%s' must be one character", utils.ErrConfigValidation, c.HeadingMarker)
	}

	// LevelCounting
	if c.LevelCounting != models.LevelCountingUnset && !c.LevelCounting.IsValid() {
		return nil, fmt.Errorf("%w: unknown level_counting '%s' (supported: anywhere, prefix)", utils.ErrConfigValidation, c.LevelCounting)
	}

	return warnings, nil
}

// ValidateEffective checks the settings that only make sense once global defaults are applied.
func ValidateEffective(jobCfg JobConfig, appCfg AppConfig) error {
	mode := GetEffectiveMode(jobCfg, appCfg)
	if mode.NeedsMarker() && jobCfg.Marker == "" {
		return fmt.Errorf("%w: mode '%s' needs a marker", utils.ErrConfigValidation, mode)
	}
	return nil
}

// CheckTargetCollisions returns an error when two of the given jobs write the same
// target file, or when one job's target is another job's source. Jobs run in
// parallel, so either overlap lets one job observe another's partial output.
func (c *AppConfig) CheckTargetCollisions(jobKeys []string) error {
	targets := make(map[string]string, len(jobKeys))
	keys := append([]string(nil), jobKeys...)
	sort.Strings(keys)

	for _, key := range keys {
		jobCfg, ok := c.Jobs[key]
		if !ok {
			continue
		}
		target := cleanPath(jobCfg.Target)
		if other, exists := targets[target]; exists {
			return fmt.Errorf("%w: jobs '%s' and '%s' both write %s", utils.ErrConfigValidation, other, key, jobCfg.Target)
		}
		targets[target] = key
	}

	for _, key := range keys {
		jobCfg, ok := c.Jobs[key]
		if !ok {
			continue
		}
		if writer, exists := targets[cleanPath(jobCfg.Source)]; exists && writer != key {
			return fmt.Errorf("%w: job '%s' reads %s, which job '%s' writes", utils.ErrConfigValidation, key, jobCfg.Source, writer)
		}
	}
	return nil
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func samePath(a, b string) bool {
	return cleanPath(a) == cleanPath(b)
}
