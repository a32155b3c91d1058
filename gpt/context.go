package gpt

import "fmt"

// TokenBuffer is the sliding context window fed to the forward pass. It
// overallocates its backing buffer by the oversize ratio so that sliding
// the window is a cheap sentinel move most of the time; only when the
// buffer runs out are the most recent maxSeqLen-1 ids compacted to the
// front.
//
// Invariant after every Step: buf[eotPos] == EOT and the window handed out
// spans at most maxSeqLen slots.
type TokenBuffer struct {
	buf       []int32
	maxSeqLen int
	eotPos    int
	lastPos   int
}

// NewTokenBuffer creates a buffer for windows of length maxSeqLen with
// capacity floor(maxSeqLen*ratio)+1. ratio must lie in [1.0, 3.0].
func NewTokenBuffer(maxSeqLen int, ratio float64) (*TokenBuffer, error) {
	if maxSeqLen < 2 {
		return nil, fmt.Errorf("context length %d too small", maxSeqLen)
	}
	if ratio < 1.0 || ratio > 3.0 {
		return nil, fmt.Errorf("oversize ratio %.2f outside [1.0, 3.0]", ratio)
	}
	b := &TokenBuffer{
		buf:       make([]int32, int(float64(maxSeqLen)*ratio)+1),
		maxSeqLen: maxSeqLen,
	}
	b.buf[b.eotPos] = EOT
	return b, nil
}

// Step advances to the next slot and returns the current window together
// with its effective length t: the ids already written, starting at the
// sentinel. The forward pass runs on exactly these t positions; Update
// then fills the slot the window stops short of.
//
// When the backing buffer is exhausted, the most recent maxSeqLen-1 ids
// are moved to the front and the sentinel is re-seated at position 0. When
// the window is full, the sentinel advances instead, overwriting the
// oldest id.
func (b *TokenBuffer) Step() ([]int32, int) {
	b.lastPos++

	if b.lastPos >= len(b.buf) {
		copy(b.buf[:b.maxSeqLen-1], b.buf[b.eotPos+1:b.eotPos+b.maxSeqLen])
		b.eotPos = 0
		b.lastPos = b.maxSeqLen - 1
	}

	t := b.lastPos
	if b.lastPos-b.eotPos >= b.maxSeqLen {
		b.eotPos = b.lastPos - b.maxSeqLen + 1
		t = b.maxSeqLen - 1
	}

	b.buf[b.eotPos] = EOT
	return b.buf[b.eotPos : b.eotPos+t], t
}

// Update stores the sampled id at the slot reserved by the last Step.
func (b *TokenBuffer) Update(v int32) {
	b.buf[b.lastPos] = v
}
