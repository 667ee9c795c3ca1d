package refs

import (
	"sync/atomic"

	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// volumeState is the mutable state a Volume shares with every FileEntry
// projected from it: the abort flag and the closed flag used to
// invalidate outstanding entries deterministically once the volume is
// closed.
type volumeState struct {
	aborted atomic.Bool
	closed  atomic.Bool
}

// Volume is the fully opened, validated ReFS volume: the byte source, the
// decoded header, the reconciled metadata chain, and a cached handle to
// the root directory.
type Volume struct {
	src    blockio.Source
	owner  blockio.Source // the Source passed to Open; src may be a sub-range of it
	header *Header

	blockTree *BlockTree
	root      *FileEntry

	trace []ferror.Frame

	state volumeState
}

// AccessMode selects how Open intends to use the volume.
type AccessMode int

const (
	// AccessReadOnly is the only access mode Open currently supports.
	AccessReadOnly AccessMode = iota
	// AccessReadWrite requests write access; Open rejects it with an
	// "unsupported-access-flags" error.
	AccessReadWrite
)

// OpenVolumeOptions carries the knobs Open honors.
type OpenVolumeOptions struct {
	Access       AccessMode
	VolumeOffset int64
	Verbose      bool
}

// DefaultOpenVolumeOptions returns the zero-value configuration:
// read-only access, no offset, no verbose tracing.
func DefaultOpenVolumeOptions() OpenVolumeOptions {
	return OpenVolumeOptions{Access: AccessReadOnly}
}

// Open runs the full open sequence against src:
//  1. read and validate the volume header
//  2. read level-0 metadata
//  3. read both level-1 copies and reconcile
//  4. read the level-2 descriptor table(s)
//  5. for each level-3 descriptor, dispatch and, for the root directory,
//     cache a handle to its Ministore node
func Open(src blockio.Source, opts OpenVolumeOptions) (*Volume, error) {
	const fn = "refs.Open"

	if opts.Access != AccessReadOnly {
		return nil, ferror.Newf(ferror.KindArguments, fn, "unsupported-access-flags: access mode %d is not supported, only AccessReadOnly", opts.Access)
	}

	var trace []ferror.Frame
	var v *Volume
	note := func(block, offset int64) {
		if !opts.Verbose {
			return
		}
		frame := ferror.Frame{Function: fn, Block: block, Offset: offset}
		if v != nil && v.blockTree != nil && offset >= 0 {
			frame.Key = v.blockTree.DebugKey(offset)
		} else if v != nil && v.blockTree != nil && block >= 0 {
			frame.Key = v.blockTree.DebugKey(block * int64(v.header.MetadataBlockSize))
		}
		trace = append(trace, frame)
	}

	owner := src
	if opts.VolumeOffset != 0 {
		sub, err := src.SubRange(opts.VolumeOffset, src.Len()-opts.VolumeOffset)
		if err != nil {
			return nil, ferror.Wrap(err, fn, -1, opts.VolumeOffset)
		}
		src = sub
	}

	headerBytes := make([]byte, HeaderSize)
	if err := src.ReadExact(0, headerBytes); err != nil {
		return nil, ferror.WrapKind(err, ferror.KindIO, fn, -1, 0)
	}
	header, err := ParseHeader(headerBytes)
	if err != nil {
		return nil, ferror.Wrap(err, fn, -1, 0)
	}

	v = &Volume{src: src, owner: owner, header: header}
	v.blockTree = NewBlockTree(int64(header.VolumeSize), int64(header.MetadataBlockSize))

	note(-1, 0)

	// A source holding only the boot sector is a valid, empty volume: the
	// fixed level-0 block lies past the end of the data, so there is no
	// metadata hierarchy to descend and no root directory to cache.
	if level0End := (level0BlockNumber + 1) * int64(header.MetadataBlockSize); level0End > src.Len() {
		if opts.Verbose {
			v.trace = trace
		}
		return v, nil
	}

	level0, err := ReadLevel0Metadata(src, header.MetadataBlockSize)
	if err != nil {
		return nil, ferror.Wrap(err, fn, level0BlockNumber, -1)
	}
	note(level0BlockNumber, -1)

	primary, err := ReadLevel1Metadata(src, level0.PrimaryLevel1BlockNumber, header.MetadataBlockSize)
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(level0.PrimaryLevel1BlockNumber), -1)
	}
	secondary, err := ReadLevel1Metadata(src, level0.SecondaryLevel1BlockNumber, header.MetadataBlockSize)
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(level0.SecondaryLevel1BlockNumber), -1)
	}
	level1 := ReconcileLevel1(primary, secondary)
	note(int64(level0.PrimaryLevel1BlockNumber), -1)

	for _, l2desc := range level1.Descriptors {
		if v.state.aborted.Load() {
			return nil, ferror.Newf(ferror.KindAborted, fn, "open aborted during level 2 descent")
		}
		if _, inserted := v.blockTree.Insert(int64(l2desc.BlockNumber)*int64(header.MetadataBlockSize), l2desc); !inserted {
			continue // cycle: this range was already visited
		}

		level2, err := ReadLevel2Metadata(src, l2desc.BlockNumber, header.MetadataBlockSize)
		if err != nil {
			return nil, ferror.Wrap(err, fn, int64(l2desc.BlockNumber), -1)
		}
		note(int64(l2desc.BlockNumber), -1)

		for _, l3desc := range level2.Descriptors {
			if v.state.aborted.Load() {
				return nil, ferror.Newf(ferror.KindAborted, fn, "open aborted during level 3 descent")
			}
			if _, inserted := v.blockTree.Insert(int64(l3desc.BlockNumber)*int64(header.MetadataBlockSize), l3desc); !inserted {
				continue
			}

			l3, err := Level3Dispatch(src, l3desc, header.MetadataBlockSize)
			if err != nil {
				return nil, ferror.Wrap(err, fn, int64(l3desc.BlockNumber), -1)
			}
			note(int64(l3desc.BlockNumber), -1)
			if l3.Role == RoleRootDirectory && v.root == nil {
				v.root = newRootFileEntry(src, header.MetadataBlockSize, &v.state, l3desc.BlockNumber, l3.Directory)
			}
		}
	}

	if opts.Verbose {
		v.trace = trace
	}

	return v, nil
}

// Header returns the validated volume header.
func (v *Volume) Header() *Header { return v.header }

// RootDirectory returns the cached root directory entry, or nil if none
// was found during Open; a volume need not carry a root-directory-role
// level-3 block to open successfully.
func (v *Volume) RootDirectory() *FileEntry { return v.root }

// DescentTrace returns the frames recorded during a verbose Open.
func (v *Volume) DescentTrace() []ferror.Frame { return v.trace }

// SignalAbort sets the process-visible abort flag.
func (v *Volume) SignalAbort() { v.state.aborted.Store(true) }

// Close invalidates outstanding file entries, then releases the
// underlying byte source. Entries created from this volume remain valid
// until Close; afterwards any operation on them that would touch the byte
// source fails with a runtime-kind error instead of reading through a
// closed handle.
func (v *Volume) Close() error {
	v.state.closed.Store(true)
	return v.owner.Close()
}
