package mobi

import (
	"fmt"
	"slices"
)

type indexRange struct {
	start, end int // [start,end)
}

// RemovalSet is the union of every header generation's source records.
// Membership only; overlapping ranges are harmless.
type RemovalSet struct {
	ranges []indexRange
}

// Contains reports whether section i is a source record.
func (rs RemovalSet) Contains(i int) bool {
	for _, r := range rs.ranges {
		if i >= r.start && i < r.end {
			return true
		}
	}
	return false
}

// Empty reports whether no section would be removed.
func (rs RemovalSet) Empty() bool { return len(rs.ranges) == 0 }

// Indices lists the members in ascending order.
func (rs RemovalSet) Indices() []int {
	out := []int{}
	for _, r := range rs.ranges {
		for i := r.start; i < r.end; i++ {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// rangeFor clamps a descriptor to the section table.
func rangeFor(sr SourceRange, count int) (indexRange, bool) {
	if sr.Empty() {
		return indexRange{}, false
	}
	start := uint64(sr.Start)
	end := start + uint64(sr.Count)
	if start >= uint64(count) {
		return indexRange{}, false
	}
	if end > uint64(count) {
		end = uint64(count)
	}
	return indexRange{start: int(start), end: int(end)}, true
}

// RemovalSet collects the source records named by every header generation.
// A descriptor covering a header generation is rejected, since the header
// could no longer be cleared once dropped.
func (f *File) RemovalSet() (RemovalSet, error) {
	var rs RemovalSet
	for _, idx := range f.headers {
		h, err := f.Header(idx)
		if err != nil {
			return RemovalSet{}, err
		}
		sr := h.SourceRange()
		r, ok := rangeFor(sr, f.count)
		if !ok {
			continue
		}
		rs.ranges = append(rs.ranges, r)
		f.log.Debug("source records", "header", idx, "start", sr.Start, "count", sr.Count)
	}
	for _, idx := range f.headers {
		if rs.Contains(idx) {
			return RemovalSet{}, fmt.Errorf("%w: source range covers header section %d", ErrFormat, idx)
		}
	}
	return rs, nil
}

// SourceSection is a copy of one source record.
type SourceSection struct {
	Generation int // section index of the header naming it
	Index      int
	Data       []byte
}

// Sources copies every source record out of the container. Records named by
// more than one generation are returned once, attributed to the first.
func (f *File) Sources() ([]SourceSection, error) {
	var out []SourceSection
	seen := make(map[int]struct{})
	for _, idx := range f.headers {
		h, err := f.Header(idx)
		if err != nil {
			return nil, err
		}
		r, ok := rangeFor(h.SourceRange(), f.count)
		if !ok {
			continue
		}
		for i := r.start; i < r.end; i++ {
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			s, err := f.Section(i)
			if err != nil {
				return nil, err
			}
			out = append(out, SourceSection{
				Generation: idx,
				Index:      i,
				Data:       slices.Clone(s.Data),
			})
		}
	}
	return out, nil
}

// GenerationInfo summarises one header generation.
type GenerationInfo struct {
	Section  int         `json:"section"`
	Version  uint32      `json:"version"`
	Encoding uint32      `json:"encoding"`
	Title    string      `json:"title"`
	Source   SourceRange `json:"source"`
}

// Info summarises a container.
type Info struct {
	Length         int              `json:"length"`
	Sections       int              `json:"sections"`
	Generations    []GenerationInfo `json:"generations"`
	SourceSections []int            `json:"source_sections"`
	SourceBytes    int              `json:"source_bytes"`
}

// Info reports the header generations and the source records they name.
func (f *File) Info() (Info, error) {
	info := Info{
		Length:   f.length,
		Sections: f.count,
	}
	for _, idx := range f.headers {
		h, err := f.Header(idx)
		if err != nil {
			return Info{}, err
		}
		title, err := h.Title()
		if err != nil {
			return Info{}, err
		}
		info.Generations = append(info.Generations, GenerationInfo{
			Section:  idx,
			Version:  h.Version(),
			Encoding: h.Encoding(),
			Title:    title,
			Source:   h.SourceRange(),
		})
	}
	rs, err := f.RemovalSet()
	if err != nil {
		return Info{}, err
	}
	info.SourceSections = rs.Indices()
	for _, i := range info.SourceSections {
		s, err := f.Section(i)
		if err != nil {
			return Info{}, err
		}
		info.SourceBytes += s.Len()
	}
	return info, nil
}
