package refs

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// treeNode is one node of the binary interval tree. Interior nodes
// have two children; a leaf holds at most one descriptor for its
// interval.
type treeNode struct {
	children [2]*treeNode
	leaf     bool
	interval int64 // interval base, leaf nodes only
	desc     *BlockDescriptor
}

// BlockTree is the in-memory interval index mapping byte offsets to block
// descriptors. Each leaf covers a half-open
// interval [start, end) of size leafValueSize; depth is
// ceil(log2(volumeSize / leafValueSize)).
type BlockTree struct {
	root          *treeNode
	depth         int
	leafValueSize int64
}

// NewBlockTree creates an empty tree sized to address volumeSize bytes in
// leafValueSize-byte leaves.
func NewBlockTree(volumeSize int64, leafValueSize int64) *BlockTree {
	leaves := volumeSize / leafValueSize
	if volumeSize%leafValueSize != 0 {
		leaves++
	}
	depth := 1
	if leaves > 1 {
		depth = bits.Len64(uint64(leaves - 1))
	}
	return &BlockTree{
		root:          &treeNode{},
		depth:         depth,
		leafValueSize: leafValueSize,
	}
}

func (t *BlockTree) leafIndex(offset int64) int64 { return offset / t.leafValueSize }

// Insert adds descriptor for the interval containing offset. If that
// interval already holds a descriptor, Insert returns it unchanged; this
// is the cycle-detection primitive. A second insertion for a previously
// visited range returns the first's already-materialized descriptor
// instead of replacing it.
func (t *BlockTree) Insert(offset int64, descriptor BlockDescriptor) (existing *BlockDescriptor, inserted bool) {
	leaf := t.leafIndex(offset)
	node := t.root
	for level := t.depth - 1; level >= 0; level-- {
		bit := (leaf >> uint(level)) & 1
		if node.children[bit] == nil {
			node.children[bit] = &treeNode{}
		}
		node = node.children[bit]
	}
	if node.leaf {
		return node.desc, false
	}
	node.leaf = true
	node.interval = leaf * t.leafValueSize
	d := descriptor
	node.desc = &d
	return node.desc, true
}

// Lookup returns the descriptor covering offset and the base of its
// interval, if one has been inserted.
func (t *BlockTree) Lookup(offset int64) (descriptor *BlockDescriptor, intervalBase int64, ok bool) {
	leaf := t.leafIndex(offset)
	node := t.root
	for level := t.depth - 1; level >= 0; level-- {
		bit := (leaf >> uint(level)) & 1
		node = node.children[bit]
		if node == nil {
			return nil, 0, false
		}
	}
	if !node.leaf {
		return nil, 0, false
	}
	return node.desc, node.interval, true
}

// DebugKey returns a stable diagnostic key for the interval containing
// offset, used only for debug/trace output, never for lookup identity.
func (t *BlockTree) DebugKey(offset int64) uint64 {
	base := t.leafIndex(offset) * t.leafValueSize
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(base >> (8 * i))
	}
	return xxhash.Sum64(buf[:])
}
