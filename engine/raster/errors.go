package raster

import "fmt"

// ResourceBindingError reports a required GPU resource that is absent or
// mismatched in size/format at draw time. The condition is fatal for the
// current frame: the frame is skipped and the error reported, never silently
// rendered with stale or garbage occlusion data.
type ResourceBindingError struct {
	// Resource names the offending binding (e.g. "deep shadow map").
	Resource string
	// Reason describes the mismatch or absence.
	Reason string
}

// Error implements the error interface.
//
// Returns:
//   - string: a formatted error message
func (e *ResourceBindingError) Error() string {
	return fmt.Sprintf("raster: %s: %s", e.Resource, e.Reason)
}
