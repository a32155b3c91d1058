package gpt

import "unsafe"

// Parameter tensor roles, in checkpoint file order. The order is part of
// the file format and must not change.
const (
	paramWTE = iota // token embeddings [V, C]
	paramWPE        // position embeddings [maxT, C]
	paramLN1W
	paramLN1B
	paramQKVW // fused query/key/value projection [L, 3C, C]
	paramQKVB
	paramAttProjW
	paramAttProjB
	paramLN2W
	paramLN2B
	paramFCW // feed-forward up projection [L, 4C, C]
	paramFCB
	paramFCProjW // feed-forward down projection [L, C, 4C]
	paramFCProjB
	paramLNFW
	paramLNFB

	numParamTensors = 16
)

// Activation tensor roles, in arena order.
const (
	actEncoded = iota
	actLN1
	actLN1Mean
	actLN1Rstd
	actQKV
	actAtty
	actPreatt
	actAtt
	actAttProj
	actResidual2
	actLN2
	actLN2Mean
	actLN2Rstd
	actFCH
	actFCHGelu
	actFCProj
	actResidual3
	actLNF
	actLNFMean
	actLNFRstd
	actLogits
	actProbs
	actLosses // reserved for training layouts, never written here

	numActTensors = 23
)

// paramSizes returns the element count of each parameter tensor.
func paramSizes(cfg Config) []int {
	lc := cfg.NumLayers * cfg.Channels
	return []int{
		paramWTE:      cfg.VocabSize * cfg.Channels,
		paramWPE:      cfg.MaxSeqLen * cfg.Channels,
		paramLN1W:     lc,
		paramLN1B:     lc,
		paramQKVW:     lc * 3 * cfg.Channels,
		paramQKVB:     lc * 3,
		paramAttProjW: lc * cfg.Channels,
		paramAttProjB: lc,
		paramLN2W:     lc,
		paramLN2B:     lc,
		paramFCW:      lc * 4 * cfg.Channels,
		paramFCB:      lc * 4,
		paramFCProjW:  lc * 4 * cfg.Channels,
		paramFCProjB:  lc,
		paramLNFW:     cfg.Channels,
		paramLNFB:     cfg.Channels,
	}
}

// actSizes returns the element count of each activation tensor for batch b
// and working sequence length t.
func actSizes(cfg Config, b, t int) []int {
	bt := b * t
	l := cfg.NumLayers
	nh := cfg.NumHeads
	c := cfg.Channels
	v := cfg.VocabSize
	return []int{
		actEncoded:   bt * c,
		actLN1:       l * bt * c,
		actLN1Mean:   l * bt,
		actLN1Rstd:   l * bt,
		actQKV:       l * bt * c * 3,
		actAtty:      l * bt * c,
		actPreatt:    l * bt * nh * t,
		actAtt:       l * bt * nh * t,
		actAttProj:   l * bt * c,
		actResidual2: l * bt * c,
		actLN2:       l * bt * c,
		actLN2Mean:   l * bt,
		actLN2Rstd:   l * bt,
		actFCH:       l * bt * c * 4,
		actFCHGelu:   l * bt * c * 4,
		actFCProj:    l * bt * c,
		actResidual3: l * bt * c,
		actLNF:       bt * c,
		actLNFMean:   bt,
		actLNFRstd:   bt,
		actLogits:    bt * v,
		actProbs:     bt * v,
		actLosses:    bt,
	}
}

// arenaAlign is the byte alignment of both tensor arenas, chosen to permit
// aligned vector loads.
const arenaAlign = 64

// arena is one contiguous aligned float block carved into named tensors by
// (offset, length) descriptors. Tensors are views; the arena owns the only
// allocation and all views die with it.
type arena struct {
	data []float32
	off  []int
	size []int
}

// newArena allocates an aligned block of sum(sizes) floats and records the
// running offsets.
func newArena(sizes []int) *arena {
	total := 0
	off := make([]int, len(sizes))
	for i, n := range sizes {
		off[i] = total
		total += n
	}
	return &arena{
		data: alignedFloats(total),
		off:  off,
		size: append([]int(nil), sizes...),
	}
}

// view returns the full sub-slice for a tensor role.
func (a *arena) view(role int) []float32 {
	return a.data[a.off[role] : a.off[role]+a.size[role]]
}

// len returns the total element count of the arena.
func (a *arena) len() int {
	return len(a.data)
}

// alignedFloats allocates n float32s whose first element sits on an
// arenaAlign boundary. Go's allocator only guarantees natural alignment,
// so over-allocate and skip to the boundary.
func alignedFloats(n int) []float32 {
	if n == 0 {
		return nil
	}
	buf := make([]byte, n*4+arenaAlign-1)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	pad := uintptr(0)
	if rem := addr % arenaAlign; rem != 0 {
		pad = arenaAlign - rem
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(buf[pad:]))), n)
}
