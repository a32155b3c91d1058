package gpt

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

var toyConfig = Config{MaxSeqLen: 4, VocabSize: 5, NumLayers: 2, NumHeads: 2, Channels: 4}

func TestParamSizes_ToyConfig(t *testing.T) {
	sizes := paramSizes(toyConfig)
	want := []int{
		paramWTE:      5 * 4,
		paramWPE:      4 * 4,
		paramLN1W:     2 * 4,
		paramLN1B:     2 * 4,
		paramQKVW:     2 * 3 * 4 * 4,
		paramQKVB:     2 * 3 * 4,
		paramAttProjW: 2 * 4 * 4,
		paramAttProjB: 2 * 4,
		paramLN2W:     2 * 4,
		paramLN2B:     2 * 4,
		paramFCW:      2 * 4 * 4 * 4,
		paramFCB:      2 * 4 * 4,
		paramFCProjW:  2 * 4 * 4 * 4,
		paramFCProjB:  2 * 4,
		paramLNFW:     4,
		paramLNFB:     4,
	}
	assert.Equal(t, want, sizes)
	assert.Len(t, sizes, numParamTensors)
}

func TestActSizes_ToyConfig(t *testing.T) {
	sizes := actSizes(toyConfig, 1, 3)
	bt := 3
	assert.Len(t, sizes, numActTensors)
	assert.Equal(t, bt*4, sizes[actEncoded])
	assert.Equal(t, 2*bt*4, sizes[actLN1])
	assert.Equal(t, 2*bt, sizes[actLN1Mean])
	assert.Equal(t, 2*bt*4*3, sizes[actQKV])
	assert.Equal(t, 2*bt*2*3, sizes[actPreatt])
	assert.Equal(t, 2*bt*2*3, sizes[actAtt])
	assert.Equal(t, 2*bt*4*4, sizes[actFCH])
	assert.Equal(t, bt*5, sizes[actLogits])
	assert.Equal(t, bt*5, sizes[actProbs])
	assert.Equal(t, bt, sizes[actLosses])
}

func TestNewArena_OffsetsAreRunningSums(t *testing.T) {
	a := newArena([]int{3, 0, 5, 2})
	assert.Equal(t, []int{0, 3, 3, 8}, a.off)
	assert.Equal(t, 10, a.len())

	// views are disjoint sub-ranges of one block
	v0 := a.view(0)
	v2 := a.view(2)
	assert.Len(t, v0, 3)
	assert.Len(t, v2, 5)
	v0[2] = 7
	v2[0] = 9
	assert.Equal(t, float32(7), a.data[2])
	assert.Equal(t, float32(9), a.data[3])
}

func TestNewArena_Alignment(t *testing.T) {
	for _, n := range []int{1, 7, 64, 1000} {
		a := newArena([]int{n})
		addr := uintptr(unsafe.Pointer(unsafe.SliceData(a.data)))
		if addr%arenaAlign != 0 {
			t.Errorf("arena of %d floats at %#x, want %d-byte alignment", n, addr, arenaAlign)
		}
	}
}
