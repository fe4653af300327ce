package mobi

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// SourceRange is the (start, count) descriptor of a header's source records.
type SourceRange struct {
	Start uint32 `json:"start"`
	Count uint32 `json:"count"`
}

// Empty reports whether the descriptor names no records.
func (r SourceRange) Empty() bool {
	return r.Start == NoSource || r.Count == 0
}

// Header is a section confirmed to hold a MOBI header.
type Header struct {
	Section
}

// Header returns section i interpreted as a MOBI header. The magic and the
// minimum header size are checked before any field is exposed.
func (f *File) Header(i int) (Header, error) {
	s, err := f.Section(i)
	if err != nil {
		return Header{}, err
	}
	if !s.IsHeader() {
		return Header{}, fmt.Errorf("%w: section %d", ErrMissingHeader, i)
	}
	if s.Len() < minHeaderSize {
		return Header{}, fmt.Errorf("%w: header in section %d is %d bytes, need %d", ErrOutOfBounds, i, s.Len(), minHeaderSize)
	}
	return Header{Section: s}, nil
}

func (h Header) u32(off int) uint32 {
	return binary.BigEndian.Uint32(h.Data[off:])
}

func (h Header) Version() uint32 { return h.u32(offVersion) }

func (h Header) Encoding() uint32 { return h.u32(offEncoding) }

func (h Header) SourceRange() SourceRange {
	return SourceRange{
		Start: h.u32(offSourceStart),
		Count: h.u32(offSourceCount),
	}
}

// Title decodes the full book name according to the header encoding.
func (h Header) Title() (string, error) {
	off := uint64(h.u32(offTitleOffset))
	n := uint64(h.u32(offTitleLength))
	if off+n > uint64(len(h.Data)) {
		return "", fmt.Errorf("%w: section %d title [%#x,+%d) exceeds %d bytes", ErrOutOfBounds, h.Index, off, n, len(h.Data))
	}
	raw := h.Data[off : off+n]

	if h.Encoding() == EncodingCP1252 {
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("%w: section %d: %v", ErrInvalidTitle, h.Index, err)
		}
		return string(out), nil
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: section %d title is not valid UTF-8", ErrInvalidTitle, h.Index)
	}
	return string(raw), nil
}

// clearSource writes the empty descriptor into the header at offset start.
func (f *File) clearSource(start int) {
	binary.BigEndian.PutUint32(f.data[start+offSourceStart:], NoSource)
	binary.BigEndian.PutUint32(f.data[start+offSourceCount:], 0)
}
