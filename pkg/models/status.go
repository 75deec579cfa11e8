package models

// WriteMode selects how a rendered catalog is written into its target file
type WriteMode string

const (
	WriteModeUnset    WriteMode = ""         // Zero value = use configured default
	WriteModeRewrite  WriteMode = "rewrite"  // Overwrite target with preamble followed by the catalog
	WriteModeCatalog  WriteMode = "catalog"  // Overwrite target with the catalog only
	WriteModeSplice   WriteMode = "splice"   // Keep content through the marker line, drop everything after it
	WriteModePreserve WriteMode = "preserve" // Replace the catalog block after the marker line, keep the rest
)

// String implements fmt.Stringer for logging
func (m WriteMode) String() string {
	if m == "" {
		return "unset"
	}
	return string(m)
}

// IsValid returns true if the mode is a known operational value
func (m WriteMode) IsValid() bool {
	switch m {
	case WriteModeRewrite, WriteModeCatalog, WriteModeSplice, WriteModePreserve:
		return true
	}
	return false
}

// NeedsMarker reports whether the mode locates a marker line in the target
func (m WriteMode) NeedsMarker() bool {
	return m == WriteModeSplice || m == WriteModePreserve
}

// FilterPolicy selects the keyword set used to discard false-positive heading lines
type FilterPolicy string

const (
	FilterUnset  FilterPolicy = ""
	FilterNarrow FilterPolicy = "narrow" // Code directive keyword only
	FilterBroad  FilterPolicy = "broad"  // Directive, definition, conditional and branch keywords
	FilterCustom FilterPolicy = "custom" // Keywords taken from configuration
)

// String implements fmt.Stringer for logging
func (p FilterPolicy) String() string {
	if p == "" {
		return "unset"
	}
	return string(p)
}

// IsValid returns true if the policy is a known operational value
func (p FilterPolicy) IsValid() bool {
	switch p {
	case FilterNarrow, FilterBroad, FilterCustom:
		return true
	}
	return false
}

// LevelCounting selects which marker characters contribute to a heading's level
type LevelCounting string

const (
	LevelCountingUnset    LevelCounting = ""
	LevelCountingAnywhere LevelCounting = "anywhere" // Every marker character on the line
	LevelCountingPrefix   LevelCounting = "prefix"   // Leading run of marker characters only
)

// String implements fmt.Stringer for logging
func (c LevelCounting) String() string {
	if c == "" {
		return "unset"
	}
	return string(c)
}

// IsValid returns true if the counting mode is a known operational value
func (c LevelCounting) IsValid() bool {
	switch c {
	case LevelCountingAnywhere, LevelCountingPrefix:
		return true
	}
	return false
}

// MissingMarkerPolicy decides what splice-style writes do when the marker line is absent
type MissingMarkerPolicy string

const (
	MissingMarkerUnset  MissingMarkerPolicy = ""
	MissingMarkerFail   MissingMarkerPolicy = "fail"   // Return ErrMarkerNotFound, target untouched
	MissingMarkerAppend MissingMarkerPolicy = "append" // Append the catalog at end of file
)

// String implements fmt.Stringer for logging
func (p MissingMarkerPolicy) String() string {
	if p == "" {
		return "unset"
	}
	return string(p)
}

// IsValid returns true if the policy is a known operational value
func (p MissingMarkerPolicy) IsValid() bool {
	switch p {
	case MissingMarkerFail, MissingMarkerAppend:
		return true
	}
	return false
}
