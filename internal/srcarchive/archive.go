// Package srcarchive stores the source records stripped from a book so they
// can be recovered later.
//
// An archive is a single zstd stream. It starts with one JSON manifest line
// followed by the raw record payloads in manifest order.
package srcarchive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/samcharles93/mobiless/pkg/mobi"
)

const formatVersion = 1

var (
	ErrCorrupt     = errors.New("srcarchive: corrupt archive")
	ErrUnsupported = errors.New("srcarchive: unsupported archive version")
)

// Entry describes one archived record.
type Entry struct {
	Generation int    `json:"generation"`
	Index      int    `json:"index"`
	Size       int    `json:"size"`
	XXH64      string `json:"xxh64"`
}

// Manifest is the first line of an archive.
type Manifest struct {
	Version int     `json:"version"`
	Title   string  `json:"title,omitempty"`
	Entries []Entry `json:"entries"`
}

// Archive is a decoded archive.
type Archive struct {
	Manifest Manifest
	Sections []mobi.SourceSection
}

// Function variables for testing injection.
var (
	newEncoder = func(w io.Writer) (*zstd.Encoder, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	}
	newDecoder = func(r io.Reader) (*zstd.Decoder, error) {
		return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	}
)

func checksum(b []byte) string {
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// Write encodes sections to w.
func Write(w io.Writer, title string, sections []mobi.SourceSection) error {
	m := Manifest{
		Version: formatVersion,
		Title:   title,
		Entries: make([]Entry, 0, len(sections)),
	}
	for _, s := range sections {
		m.Entries = append(m.Entries, Entry{
			Generation: s.Generation,
			Index:      s.Index,
			Size:       len(s.Data),
			XXH64:      checksum(s.Data),
		})
	}
	head, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("srcarchive: encode manifest: %w", err)
	}

	enc, err := newEncoder(w)
	if err != nil {
		return fmt.Errorf("srcarchive: %w", err)
	}
	if _, err := enc.Write(append(head, '\n')); err != nil {
		_ = enc.Close()
		return fmt.Errorf("srcarchive: %w", err)
	}
	for _, s := range sections {
		if _, err := enc.Write(s.Data); err != nil {
			_ = enc.Close()
			return fmt.Errorf("srcarchive: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("srcarchive: %w", err)
	}
	return nil
}

// Read decodes an archive, verifying every payload against its checksum.
// maxSize bounds the total payload size; zero means no limit.
func Read(r io.Reader, maxSize int64) (*Archive, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("srcarchive: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrCorrupt, err)
	}
	var m Manifest
	if err := json.Unmarshal(line, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrCorrupt, err)
	}
	if m.Version != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, m.Version)
	}

	var total int64
	a := &Archive{Manifest: m, Sections: make([]mobi.SourceSection, 0, len(m.Entries))}
	for _, e := range m.Entries {
		if e.Size < 0 {
			return nil, fmt.Errorf("%w: entry %d has negative size", ErrCorrupt, e.Index)
		}
		total += int64(e.Size)
		if maxSize > 0 && total > maxSize {
			return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrCorrupt, maxSize)
		}
		data := make([]byte, e.Size)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorrupt, e.Index, err)
		}
		if checksum(data) != e.XXH64 {
			return nil, fmt.Errorf("%w: entry %d checksum mismatch", ErrCorrupt, e.Index)
		}
		a.Sections = append(a.Sections, mobi.SourceSection{
			Generation: e.Generation,
			Index:      e.Index,
			Data:       data,
		})
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	return a, nil
}
