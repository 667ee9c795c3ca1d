package refs

import (
	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

// Role identifiers known to the level-3 dispatch table.
const (
	RoleIdentifierRootDirectory uint64 = 0x00000600
	RoleIdentifierUserDirectory uint64 = 0x00000701
)

// Role classifies a decoded Level3Block.
type Role int

const (
	RoleUnknown Role = iota
	RoleRootDirectory
	RoleUserDirectory
)

// level3Roles maps known role identifiers to a Role, open for extension
// rather than a two-armed if/else.
var level3Roles = map[uint64]Role{
	RoleIdentifierRootDirectory: RoleRootDirectory,
	RoleIdentifierUserDirectory: RoleUserDirectory,
}

// Level3Block is one decoded level-3 metadata block: either a directory
// (root or user) or a generic, semantically-opaque block.
type Level3Block struct {
	Descriptor     BlockDescriptor
	Role           Role
	SequenceNumber uint64
	Directory      *Directory    // non-nil only for RoleRootDirectory/RoleUserDirectory
	Extents        []ExtentBlock // level-4 extent blocks, user directories only
}

// Level3Dispatch decodes the block named by descriptor according to its
// role identifier.
func Level3Dispatch(src blockio.Source, descriptor BlockDescriptor, metadataBlockSize uint32) (*Level3Block, error) {
	const fn = "refs.Level3Dispatch"

	role := RoleUnknown
	if id, ok := descriptor.RoleIdentifier(); ok {
		if r, known := level3Roles[id]; known {
			role = r
		}
	}

	block, err := ReadBlock(src, descriptor.BlockNumber, metadataBlockSize)
	if err != nil {
		return nil, ferror.Wrap(err, fn, int64(descriptor.BlockNumber), -1)
	}

	result := &Level3Block{
		Descriptor:     descriptor,
		Role:           role,
		SequenceNumber: block.SequenceNumber,
	}

	switch role {
	case RoleRootDirectory, RoleUserDirectory:
		dir, err := ReadDirectoryFromPayload(block.Payload(), fn)
		if err != nil {
			return nil, ferror.Wrap(err, fn, int64(descriptor.BlockNumber), -1)
		}
		result.Directory = dir

		if role == RoleUserDirectory {
			result.Extents = ReadLevel4Extents(src, descriptor.BlockNumber, metadataBlockSize)
		}
	default:
		// generic level-3 decode: the block is consumed and
		// validated (ReadBlock above already checked self-block-number)
		// but its payload beyond sequence/version fields is discarded.
	}

	return result, nil
}
