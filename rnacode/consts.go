// Package rnacode compresses RNA secondary structures by arithmetic coding the
// leftmost derivation of each molecule under a stochastic context-free grammar.
package rnacode

// Container format
var ContainerMagic = [2]byte{'R', 'G'}

const (
	ContainerVersion uint8 = 1

	// fixedHeaderSize is the size of the uncompressed container prefix
	fixedHeaderSize = 20

	// digestSize is the BLAKE3 digest length stored in the header
	digestSize = 32

	// maxHeaderSize bounds the compressed and decompressed header
	maxHeaderSize = 1 << 24
)

// Integer backend
const (
	// DefaultScale is the total of every integer frequency table
	DefaultScale = 1 << 15

	// MaxScaleBits bounds the frequency table precision so that range/scale keeps
	// enough resolution in the 32-bit coder state
	MaxScaleBits = 16

	stateBits = 32
	stateTop  = uint64(1) << stateBits
	stateHalf = uint64(1) << (stateBits - 1)
	stateMask = stateTop - 1
)

// RNA alphabets
const (
	Bases          = "ACGU"
	StructureMarks = "()."

	MarkOpen     = '('
	MarkClose    = ')'
	MarkUnpaired = '.'
)

// CanonicalPairs lists the base pairs a bracket pair expands to, in expansion order
var CanonicalPairs = [][2]byte{
	{'A', 'U'},
	{'C', 'G'},
	{'G', 'C'},
	{'G', 'U'},
	{'U', 'A'},
	{'U', 'G'},
}
