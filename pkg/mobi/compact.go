package mobi

import "fmt"

// RemovedSection records one dropped source record.
type RemovedSection struct {
	Index  int `json:"index"`
	Length int `json:"length"`
}

// Result describes the outcome of RemoveSources.
type Result struct {
	Length       int              `json:"length"`
	BytesRemoved int              `json:"bytes_removed"`
	Removed      []RemovedSection `json:"removed"`
}

// RemoveSources drops every source record, shifting the remaining records
// down and rewriting the offset table, then clears the source descriptor of
// every header generation. Only the first Result.Length bytes of the buffer
// are meaningful afterwards; the tail is stale and is not zeroed.
//
// The table is validated before the first write, so an error leaves the
// buffer untouched. A container without source records is not modified.
func (f *File) RemoveSources() (Result, error) {
	rs, err := f.RemovalSet()
	if err != nil {
		return Result{}, err
	}
	if rs.Empty() {
		return Result{Length: f.length}, nil
	}
	if err := f.validateLayout(); err != nil {
		return Result{}, err
	}

	res := Result{}
	delta := 0
	for i := 0; i < f.count; i++ {
		// Bounds of i come from entries i and i+1, neither rewritten yet.
		start, end, err := f.sectionBounds(i)
		if err != nil {
			return Result{}, err
		}
		newStart := start - delta
		if newStart > start || newStart < f.tableEnd() {
			return Result{}, fmt.Errorf("%w: section %d would move from %#x to %#x", ErrOutOfBounds, i, start, newStart)
		}
		f.setOffset(i, newStart)

		if rs.Contains(i) {
			delta += end - start
			res.Removed = append(res.Removed, RemovedSection{Index: i, Length: end - start})
			f.log.Debug("source section removed", "section", i, "length", end-start)
			continue
		}
		if delta > 0 {
			copy(f.data[newStart:], f.data[start:end])
		}
	}

	for _, idx := range f.headers {
		start, _, err := f.sectionBounds(idx)
		if err != nil {
			return Result{}, err
		}
		f.clearSource(start)
	}

	f.length -= delta
	res.Length = f.length
	res.BytesRemoved = delta
	f.log.Info("sources removed", "sections", len(res.Removed), "bytes", delta, "length", f.length)
	return res, nil
}

// validateLayout checks that the sections tile the container in ascending
// order after the offset table.
func (f *File) validateLayout() error {
	prev := f.tableEnd()
	for i := 0; i < f.count; i++ {
		start, end, err := f.sectionBounds(i)
		if err != nil {
			return err
		}
		if start < prev {
			return fmt.Errorf("%w: section %d starts at %#x before %#x", ErrOutOfBounds, i, start, prev)
		}
		prev = end
	}
	for _, idx := range f.headers {
		if _, err := f.Header(idx); err != nil {
			return err
		}
	}
	return nil
}
