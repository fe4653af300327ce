package mobi

import (
	"testing"

	"github.com/samcharles93/mobiless/internal/mobitest"
)

type headerSpec struct {
	version  uint32
	encoding uint32
	title    string
	start    uint32
	count    uint32
}

func headerRecord(h headerSpec) []byte {
	return mobitest.Header{
		Version:     h.version,
		Encoding:    h.encoding,
		Title:       h.title,
		SourceStart: h.start,
		SourceCount: h.count,
	}.Record()
}

func filler(b byte, n int) []byte { return mobitest.Filler(b, n) }

func buildContainer(t *testing.T, sections ...[]byte) []byte {
	t.Helper()
	return mobitest.Build(sections...)
}

func tableOffsets(t *testing.T, buf []byte) []int {
	t.Helper()
	return mobitest.Offsets(buf)
}

func attributes(t *testing.T, buf []byte) []uint32 {
	t.Helper()
	return mobitest.Attributes(buf)
}
