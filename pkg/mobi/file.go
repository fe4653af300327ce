package mobi

import (
	"encoding/binary"
	"fmt"
)

// Logger receives diagnostics. internal/logger.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}

// Option configures a File.
type Option func(*File)

// WithLogger routes diagnostics to l.
func WithLogger(l Logger) Option {
	return func(f *File) {
		if l != nil {
			f.log = l
		}
	}
}

// File is a MOBI container backed by a caller-owned buffer.
//
// The section count and offset table position are fixed at Open; only the
// offset values and the logical length change during RemoveSources.
type File struct {
	data    []byte
	length  int
	count   int
	headers []int
	log     Logger
}

// Open validates the container held in buf[:length] and discovers its header
// generations. buf is not modified.
func Open(buf []byte, length int, opts ...Option) (*File, error) {
	if length < 0 || length > len(buf) {
		return nil, fmt.Errorf("%w: length %d exceeds buffer of %d bytes", ErrOutOfBounds, length, len(buf))
	}
	if length < minContainerSize {
		return nil, ErrInvalidMagic
	}
	if string(buf[offContainerMagic:offContainerMagic+len(ContainerMagic)]) != ContainerMagic {
		return nil, ErrInvalidMagic
	}

	f := &File{
		data:   buf,
		length: length,
		count:  int(binary.BigEndian.Uint16(buf[offSectionCount:])),
		log:    nopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.tableEnd() > length {
		return nil, fmt.Errorf("%w: offset table of %d sections exceeds %d bytes", ErrOutOfBounds, f.count, length)
	}
	if f.count == 0 {
		return nil, fmt.Errorf("%w: container has no sections", ErrMissingHeader)
	}

	headers, err := f.scanHeaders()
	if err != nil {
		return nil, err
	}
	f.headers = headers

	for _, idx := range f.headers {
		h, err := f.Header(idx)
		if err != nil {
			return nil, err
		}
		title, err := h.Title()
		if err != nil {
			return nil, err
		}
		f.log.Info("header found",
			"section", idx,
			"version", h.Version(),
			"title", title,
			"encoding", h.Encoding(),
		)
	}
	return f, nil
}

// Len returns the logical length of the container.
func (f *File) Len() int { return f.length }

// SectionCount returns the number of entries in the offset table.
func (f *File) SectionCount() int { return f.count }

// Bytes returns the live container bytes. Anything past Len in the
// underlying buffer is stale.
func (f *File) Bytes() []byte { return f.data[:f.length] }

// Headers returns the section indices of every header generation, ascending.
func (f *File) Headers() []int {
	out := make([]int, len(f.headers))
	copy(out, f.headers)
	return out
}

func (f *File) tableEnd() int {
	return offSectionTable + sectionEntrySize*f.count
}

func (f *File) offset(i int) int {
	return int(binary.BigEndian.Uint32(f.data[offSectionTable+sectionEntrySize*i:]))
}

// setOffset rewrites the offset of entry i. The attribute bytes that follow
// it in the entry are left untouched.
func (f *File) setOffset(i, v int) {
	binary.BigEndian.PutUint32(f.data[offSectionTable+sectionEntrySize*i:], uint32(v))
}

// sectionBounds reads [start,end) of section i from the current table.
func (f *File) sectionBounds(i int) (int, int, error) {
	if i < 0 || i >= f.count {
		return 0, 0, fmt.Errorf("%w: section %d of %d", ErrOutOfBounds, i, f.count)
	}
	start := f.offset(i)
	end := f.length
	if i < f.count-1 {
		end = f.offset(i + 1)
	}
	if start < 0 || start > end || end > f.length {
		return 0, 0, fmt.Errorf("%w: section %d spans [%#x,%#x) in %d bytes", ErrOutOfBounds, i, start, end, f.length)
	}
	return start, end, nil
}
