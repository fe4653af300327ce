// Package mobitest builds synthetic MOBI containers for tests.
package mobitest

import "encoding/binary"

const (
	tableOffset = 0x4E
	entrySize   = 8
	titleOffset = 0x100

	// NoSource mirrors mobi.NoSource.
	NoSource uint32 = 0xFFFFFFFF
)

// Header describes a MOBI header record.
type Header struct {
	Version     uint32
	Encoding    uint32
	Title       string
	SourceStart uint32
	SourceCount uint32
}

// Record encodes h as a header section with the title after the fixed fields.
func (h Header) Record() []byte {
	rec := make([]byte, titleOffset+len(h.Title)+2)
	copy(rec[0:], "\x00\x02\x00\x00")
	copy(rec[0x10:], "MOBI")
	binary.BigEndian.PutUint32(rec[0x1C:], h.Encoding)
	binary.BigEndian.PutUint32(rec[0x24:], h.Version)
	binary.BigEndian.PutUint32(rec[0x54:], titleOffset)
	binary.BigEndian.PutUint32(rec[0x58:], uint32(len(h.Title)))
	binary.BigEndian.PutUint32(rec[0xE0:], h.SourceStart)
	binary.BigEndian.PutUint32(rec[0xE4:], h.SourceCount)
	copy(rec[titleOffset:], h.Title)
	return rec
}

// Boundary returns a generation separator section.
func Boundary() []byte { return []byte("BOUNDARY") }

// Filler returns n bytes of a repeating pattern seeded by b.
func Filler(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b + byte(i%7)
	}
	return out
}

// Build lays the sections out back to back after the offset table. Every
// table entry carries attribute bytes derived from its index.
func Build(sections ...[]byte) []byte {
	pos := tableOffset + entrySize*len(sections) + 2
	size := pos
	for _, s := range sections {
		size += len(s)
	}
	buf := make([]byte, size)
	copy(buf[0:], "Test Book")
	copy(buf[0x3C:], "BOOKMOBI")
	binary.BigEndian.PutUint16(buf[0x4C:], uint16(len(sections)))
	for i, s := range sections {
		entry := tableOffset + entrySize*i
		binary.BigEndian.PutUint32(buf[entry:], uint32(pos))
		binary.BigEndian.PutUint32(buf[entry+4:], 0xA0000000|uint32(i*2))
		copy(buf[pos:], s)
		pos += len(s)
	}
	return buf
}

// Offsets decodes the offset table of buf.
func Offsets(buf []byte) []int {
	n := int(binary.BigEndian.Uint16(buf[0x4C:]))
	out := make([]int, n)
	for i := range out {
		out[i] = int(binary.BigEndian.Uint32(buf[tableOffset+entrySize*i:]))
	}
	return out
}

// Attributes decodes the attribute words of the offset table of buf.
func Attributes(buf []byte) []uint32 {
	n := int(binary.BigEndian.Uint16(buf[0x4C:]))
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.BigEndian.Uint32(buf[tableOffset+entrySize*i+4:])
	}
	return out
}

// Book is a two-section book whose second section is named as source.
func Book(title string, source []byte) []byte {
	return Build(
		Header{Version: 6, Encoding: 65001, Title: title, SourceStart: 2, SourceCount: 1}.Record(),
		Filler('a', 64),
		source,
	)
}
