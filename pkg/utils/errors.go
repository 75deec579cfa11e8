package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrSourceRead       = errors.New("cannot read source document")     // Wraps the underlying os error
	ErrMarkerNotFound   = errors.New("marker line not found in target") // Splice/preserve modes only
	ErrTargetWrite      = errors.New("cannot write target document")    // Wraps the underlying os error
	ErrAnchorMismatch   = errors.New("catalog slug has no matching anchor")
	ErrConfigValidation = errors.New("configuration validation error")
	ErrUnknownJob       = errors.New("job not found in configuration")
	ErrJobRunning       = errors.New("job is already running")
	ErrDatabase         = errors.New("state database error")
)

// WrapErrorf annotates err with a formatted message, keeping it matchable with errors.Is.
// Returns nil when err is nil.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// CategorizeError maps an error to a predefined category string for logging.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrSourceRead):
		if errors.Is(err, os.ErrNotExist) {
			return "Source_NotExist"
		}
		if errors.Is(err, os.ErrPermission) {
			return "Source_Permission"
		}
		return "Source_Other"
	case errors.Is(err, ErrTargetWrite):
		if errors.Is(err, os.ErrPermission) {
			return "Target_Permission"
		}
		return "Target_Other"
	case errors.Is(err, ErrMarkerNotFound):
		return "Target_MarkerNotFound"
	case errors.Is(err, ErrAnchorMismatch):
		return "Catalog_AnchorMismatch"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	case errors.Is(err, ErrUnknownJob):
		return "Config_UnknownJob"
	case errors.Is(err, ErrJobRunning):
		return "Job_AlreadyRunning"
	case errors.Is(err, ErrDatabase):
		return "State_Database"
	}

	// --- Fallback checks for common underlying error types ---
	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}
	if errors.Is(err, os.ErrNotExist) {
		return "Filesystem_NotExist"
	}
	if errors.Is(err, os.ErrPermission) {
		return "Filesystem_Permission"
	}

	return "Unknown"
}
