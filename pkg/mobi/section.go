package mobi

import "fmt"

// Section is a read-only view of one record. Data aliases the container
// buffer and goes stale once RemoveSources rewrites the table.
type Section struct {
	Index int
	Start int
	End   int
	Data  []byte
}

func (s Section) String() string {
	return fmt.Sprintf("<Section %d at %#010x>", s.Index, s.Start)
}

// Len returns the size of the section in bytes.
func (s Section) Len() int { return s.End - s.Start }

// IsBoundary reports whether the section body is exactly the generation
// separator.
func (s Section) IsBoundary() bool {
	return string(s.Data) == BoundaryMagic
}

// IsHeader reports whether the section carries the MOBI header magic.
func (s Section) IsHeader() bool {
	if len(s.Data) < minHeaderProbe {
		return false
	}
	return string(s.Data[offHeaderMagic:minHeaderProbe]) == HeaderMagic
}

// Section returns a view of section i computed from the live offset table.
func (f *File) Section(i int) (Section, error) {
	start, end, err := f.sectionBounds(i)
	if err != nil {
		return Section{}, err
	}
	return Section{
		Index: i,
		Start: start,
		End:   end,
		Data:  f.data[start:end:end],
	}, nil
}

// scanHeaders returns the start index of every header generation. Index 0
// is always first; later generations follow a boundary section.
func (f *File) scanHeaders() ([]int, error) {
	first, err := f.Section(0)
	if err != nil {
		return nil, err
	}
	if !first.IsHeader() {
		return nil, fmt.Errorf("%w: section 0", ErrMissingHeader)
	}

	headers := []int{0}
	for i := 0; i < f.count-1; i++ {
		s, err := f.Section(i)
		if err != nil {
			return nil, err
		}
		if !s.IsBoundary() {
			continue
		}
		next, err := f.Section(i + 1)
		if err != nil {
			return nil, err
		}
		if next.IsHeader() {
			f.log.Debug("header generation found", "boundary", i, "section", i+1)
			headers = append(headers, i+1)
		}
	}
	return headers, nil
}
