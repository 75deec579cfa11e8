package models

import "time"

// HeadingEntry is a single heading found in a source document.
// Entries are created by the extractor and never mutated afterwards.
type HeadingEntry struct {
	Title string `json:"title" yaml:"title"` // Heading text with markers and surrounding whitespace stripped
	Level int    `json:"level" yaml:"level"` // Number of heading-marker characters counted on the source line
}

// JobResult contains the outcome of a single catalog generation job
type JobResult struct {
	JobKey     string        `json:"job_key"`
	Success    bool          `json:"success"`
	Error      error         `json:"-"`
	Headings   int           `json:"headings"`             // Number of catalog entries written
	Skipped    bool          `json:"skipped,omitempty"`    // Source unchanged since the last run (watch mode)
	Mismatches []string      `json:"mismatches,omitempty"` // Slugs without a matching anchor in the source
	Duration   time.Duration `json:"duration"`
}

// ErrorMessage returns the job error as a string, or "" on success
func (r JobResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Error()
}

// JobState is the watch-mode record of a job's last generation
type JobState struct {
	SourceHash     string    `json:"source_hash"`           // SHA-256 of the source at the last successful run
	ConfigHash     string    `json:"config_hash,omitempty"` // Fingerprint of the effective job settings and preamble
	TargetHash     string    `json:"target_hash,omitempty"` // SHA-256 of the target after the last successful run
	LastRunTime    time.Time `json:"last_run_time"`
	LastRunSuccess bool      `json:"last_run_success"`
	Headings       int       `json:"headings"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}
