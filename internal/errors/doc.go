// Package errors provides the error taxonomy used across the mosaic pipeline.
//
// Every failure that reaches the user carries a Code naming its category and
// a message naming the precondition that failed (for example "tile pool is
// empty"), so callers never have to interpret a bare numeric failure.
//
// # Error Codes
//
//   - CONFIGURATION: bad user input detected before any work starts. Fatal.
//   - RESOURCE: an image could not be read, decoded or written.
//   - INVARIANT: an internal postcondition failed. Always a defect.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "redundancy must be >= 1, got %g", r)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // report and exit
//	}
package errors
