// Package ferror implements the parser's structured error taxonomy: a
// small set of domains (kinds), each operation returning a single error
// value, and a descent trace attached one frame at a time as the error
// unwinds through the decoder layers. Built on
// github.com/cockroachdb/errors for sentinel marking, detail stacking,
// and chain introspection.
package ferror

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind is one of the seven error domains. Kinds are not Go types (per the
// design note "errors ... are kinds, not types") but values compared with
// errors.Is against the sentinel below.
type Kind int

const (
	KindArguments Kind = iota
	KindIO
	KindInputInvalid
	KindConversion
	KindMemory
	KindRuntime
	KindAborted
)

func (k Kind) String() string {
	switch k {
	case KindArguments:
		return "arguments"
	case KindIO:
		return "io"
	case KindInputInvalid:
		return "input-invalid"
	case KindConversion:
		return "conversion"
	case KindMemory:
		return "memory"
	case KindRuntime:
		return "runtime"
	case KindAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// sentinel is the marker error each Kind wraps, so ferror.Is(err, k)
// works after any number of Wrap calls.
type sentinel struct{ kind Kind }

func (s *sentinel) Error() string { return s.kind.String() }

var sentinels = map[Kind]*sentinel{
	KindArguments:    {KindArguments},
	KindIO:           {KindIO},
	KindInputInvalid: {KindInputInvalid},
	KindConversion:   {KindConversion},
	KindMemory:       {KindMemory},
	KindRuntime:      {KindRuntime},
	KindAborted:      {KindAborted},
}

// Is reports whether err's kind matches k, looking through the whole
// wrapped chain.
func Is(err error, k Kind) bool {
	return errors.Is(err, sentinels[k])
}

// Frame is one descent step: the function that observed the error, and the
// block number / byte offset it was operating on when it did. Block or
// Offset may be -1 when not applicable to that layer. Key carries an
// opaque block-tree debug key (0 when not applicable), letting a verbose
// trace correlate a frame with the interval BlockTree.DebugKey identified.
type Frame struct {
	Function string
	Block    int64
	Offset   int64
	Key      uint64
}

func (f Frame) String() string {
	var loc string
	switch {
	case f.Block >= 0 && f.Offset >= 0:
		loc = fmt.Sprintf("%s (block %d, offset 0x%x)", f.Function, f.Block, f.Offset)
	case f.Block >= 0:
		loc = fmt.Sprintf("%s (block %d)", f.Function, f.Block)
	case f.Offset >= 0:
		loc = fmt.Sprintf("%s (offset 0x%x)", f.Function, f.Offset)
	default:
		loc = f.Function
	}
	if f.Key != 0 {
		loc += fmt.Sprintf(" [key %016x]", f.Key)
	}
	return loc
}

// Newf creates a new leaf error of kind k, with the given function name
// as the first descent frame.
func Newf(k Kind, function, format string, args ...interface{}) error {
	err := errors.Mark(errors.Newf(format, args...), sentinels[k])
	return errors.WithDetailf(err, "%s", function)
}

// Wrap attaches a descent frame to an existing error without changing its
// kind. Used by every layer on the way back up the call stack, matching
// the design's "each layer attaches a descent frame (function, block
// number, offset)".
func Wrap(err error, function string, block, offset int64) error {
	if err == nil {
		return nil
	}
	frame := Frame{Function: function, Block: block, Offset: offset}
	return errors.WithDetailf(err, "%s", frame.String())
}

// WrapKind re-kinds err (marking it with a new sentinel) while also
// attaching a descent frame. Used when a lower-level error (e.g. a raw
// io.ErrUnexpectedEOF) needs to surface as a specific taxonomy kind at a
// decoder boundary. Any kind err already carried no longer matches: err
// is placed behind a barrier, and the descent frames it had collected are
// re-attached above the barrier in their original order.
func WrapKind(err error, k Kind, function string, block, offset int64) error {
	if err == nil {
		return nil
	}
	var details []string // outermost first
	for c := err; c != nil; c = errors.UnwrapOnce(c) {
		if d, ok := c.(interface{ ErrorDetail() string }); ok {
			details = append(details, d.ErrorDetail())
		}
	}
	marked := errors.Mark(errors.Handled(err), sentinels[k])
	for i := len(details) - 1; i >= 0; i-- {
		marked = errors.WithDetailf(marked, "%s", details[i])
	}
	return Wrap(marked, function, block, offset)
}

// Frames extracts the ordered descent trace from an error chain as
// produced by errors.GetAllDetails, outermost (most recent) frame first.
// This is the "ordered frame list" the user-visible error record carries.
func Frames(err error) []string {
	if err == nil {
		return nil
	}
	return errors.GetAllDetails(err)
}

// KindOf returns the Kind attached to err, or KindRuntime if none of the
// seven sentinels match (an internal invariant violation).
func KindOf(err error) Kind {
	for _, k := range []Kind{KindArguments, KindIO, KindInputInvalid, KindConversion, KindMemory, KindAborted, KindRuntime} {
		if Is(err, k) {
			return k
		}
	}
	return KindRuntime
}
