// Package fsrefs is the public entry point for the ReFS parser: open a
// volume from a path or an in-memory image, inspect its geometry, and
// walk the file-system hierarchy rooted at its root directory.
package fsrefs

import "github.com/libyal/go-fsrefs/internal/refs"

// AccessMode selects how Open intends to use the volume. It re-exports
// refs.AccessMode so callers never need to import the internal package.
type AccessMode = refs.AccessMode

const (
	// AccessReadOnly is the only access mode Open currently supports.
	AccessReadOnly = refs.AccessReadOnly
	// AccessReadWrite requests write access; Open rejects it with an
	// "unsupported-access-flags" error.
	AccessReadWrite = refs.AccessReadWrite
)

// OpenOptions are the knobs Open honors: a plain struct of fields with a
// constructor, not a builder or functional-options chain.
type OpenOptions struct {
	// Access selects read-only or read-write intent. Only AccessReadOnly
	// is supported; requesting AccessReadWrite fails Open with an
	// unsupported-access-flags error.
	Access AccessMode

	// VolumeOffset is the byte offset of the ReFS volume within the
	// underlying source (non-zero for a volume embedded in a larger
	// image).
	VolumeOffset int64

	// Verbose enables capturing a descent trace during Open, retrievable
	// afterward via Volume.DescentTrace.
	Verbose bool
}

// DefaultOpenOptions returns the zero-value configuration: read-only
// access, no offset, no verbose tracing.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{Access: AccessReadOnly}
}
