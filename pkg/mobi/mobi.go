// Package mobi reads and rewrites MOBI e-book containers.
//
// A MOBI file is a Palm database (PDB) whose records are addressed through
// an offset table near the start of the file. Record 0 holds the MOBI
// header; dual-format files append a second header generation after a
// record whose body is exactly "BOUNDARY". Each header may point at a
// contiguous run of records holding the source markup the book was built
// from. This package locates those records and removes them in place,
// rewriting the offset table so the remaining records stay addressable.
//
// All integers are big-endian. Views returned by File are computed from the
// live offset table on every call and must not be retained across
// RemoveSources.
package mobi

// Container layout constants must never change.
const (
	// ContainerMagic is the PDB type/creator pair of a MOBI book.
	ContainerMagic = "BOOKMOBI"

	// HeaderMagic identifies a record as a MOBI header.
	HeaderMagic = "MOBI"

	// BoundaryMagic is the full body of a record separating header generations.
	BoundaryMagic = "BOUNDARY"

	// NoSource is the descriptor start index meaning "no source records".
	NoSource uint32 = 0xFFFFFFFF
)

// Container-relative offsets.
const (
	offContainerMagic = 0x3C
	offSectionCount   = 0x4C
	offSectionTable   = 0x4E
	sectionEntrySize  = 8
)

// Header-relative offsets.
const (
	offHeaderMagic   = 0x10
	offEncoding      = 0x1C
	offVersion       = 0x24
	offTitleOffset   = 0x54
	offTitleLength   = 0x58
	offSourceStart   = 0xE0
	offSourceCount   = 0xE4
	minHeaderSize    = 0xE8
	minHeaderProbe   = offHeaderMagic + len(HeaderMagic)
	minContainerSize = offSectionTable
)

// Text encodings stored in the header.
const (
	EncodingCP1252 uint32 = 1252
	EncodingUTF8   uint32 = 65001
)
