package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderSizesMatchWireContract(t *testing.T) {
	assert.EqualValues(t, 16, SegmentHeaderSize, "segment header must be exactly 16 bytes")
	assert.EqualValues(t, 40, TableEntrySize, "table entry must be exactly 40 bytes")
}

func TestNameRoundTrip(t *testing.T) {
	longest := ""
	for len(longest) < MaxNameLen {
		longest += "x"
	}
	cases := []string{"", "a", "queue-1", longest}
	for _, name := range cases {
		encoded := EncodeName(name)
		assert.Equal(t, name, DecodeName(encoded))
	}
}

func TestAlignUp8(t *testing.T) {
	assert.EqualValues(t, 0, AlignUp8(0))
	assert.EqualValues(t, 8, AlignUp8(1))
	assert.EqualValues(t, 8, AlignUp8(8))
	assert.EqualValues(t, 16, AlignUp8(9))
}

func TestStructureRegionStart(t *testing.T) {
	got := StructureRegionStart(128)
	assert.EqualValues(t, SegmentHeaderSize+128*TableEntrySize, got)
}
