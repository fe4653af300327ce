// Package mobifile moves MOBI containers between disk and pkg/mobi.
package mobifile

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var ErrTooLarge = errors.New("mobifile: file too large")

// Buffer is a mutable in-memory copy of a file. Writes to Data never reach
// the file it was loaded from.
type Buffer struct {
	Data    []byte
	mmapped bool
}

// Load maps path copy-on-write so the buffer can be compacted in place.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned buffer must be closed to release any mapping.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	size := int(size64)

	if size > 0 {
		data, err := unix.Mmap(
			int(f.Fd()),
			0,
			size,
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_PRIVATE,
		)
		if err == nil {
			return &Buffer{Data: data, mmapped: true}, nil
		}
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &Buffer{Data: data}, nil
}

// LoadReaderAt copies size bytes from r into a heap buffer.
func LoadReaderAt(r io.ReaderAt, size int64) (*Buffer, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return &Buffer{Data: data}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Close releases the mapping, if any.
func (b *Buffer) Close() error {
	if b == nil || b.Data == nil {
		return nil
	}
	var err error
	if b.mmapped {
		err = unix.Munmap(b.Data)
	}
	b.Data = nil
	b.mmapped = false
	return err
}
