// Package testutil provides shared test infrastructure for the gpt2go
// engine: synthetic checkpoint and vocabulary builders plus float
// tolerance helpers used across the gpt package tests.
package testutil

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// ModelSpec describes a synthetic checkpoint header.
type ModelSpec struct {
	MaxSeqLen int
	VocabSize int
	NumLayers int
	NumHeads  int
	Channels  int
}

// ParamCount returns the total parameter element count for the spec,
// following the sixteen-tensor layout of the checkpoint format.
func (s ModelSpec) ParamCount() int {
	lc := s.NumLayers * s.Channels
	sizes := []int{
		s.VocabSize * s.Channels,
		s.MaxSeqLen * s.Channels,
		lc, lc,
		lc * 3 * s.Channels, lc * 3,
		lc * s.Channels, lc,
		lc, lc,
		lc * 4 * s.Channels, lc * 4,
		lc * 4 * s.Channels, lc,
		s.Channels, s.Channels,
	}
	total := 0
	for _, n := range sizes {
		total += n
	}
	return total
}

// ModelFileBytes serializes a checkpoint with the given header fields and
// parameter floats. magic/version use the production values unless
// overridden via the header map (index -> value).
func ModelFileBytes(s ModelSpec, params []float32, override map[int]uint32) []byte {
	header := make([]uint32, 256)
	header[0] = 20240326
	header[1] = 1
	header[2] = uint32(s.MaxSeqLen)
	header[3] = uint32(s.VocabSize)
	header[4] = uint32(s.NumLayers)
	header[5] = uint32(s.NumHeads)
	header[6] = uint32(s.Channels)
	for i, v := range override {
		header[i] = v
	}

	buf := make([]byte, 256*4+len(params)*4)
	for i, v := range header {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	for i, f := range params {
		binary.LittleEndian.PutUint32(buf[256*4+4*i:], math.Float32bits(f))
	}
	return buf
}

// SequentialParams returns n floats 0.0, 1.0, 2.0, ...
func SequentialParams(n int) []float32 {
	p := make([]float32, n)
	for i := range p {
		p[i] = float32(i)
	}
	return p
}

// VocabFileBytes serializes a decoder vocabulary file from the given
// records. override patches header words as in ModelFileBytes.
func VocabFileBytes(records [][]byte, override map[int]uint32) []byte {
	header := make([]uint32, 256)
	header[0] = 20240328
	header[1] = 1
	header[2] = uint32(len(records))
	for i, v := range override {
		header[i] = v
	}

	body := make([]byte, 0, 256)
	for _, rec := range records {
		body = append(body, byte(len(rec)))
		body = append(body, rec...)
	}

	buf := make([]byte, 256*4, 256*4+len(body))
	for i, v := range header {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	return append(buf, body...)
}

// WriteFile drops contents into a temp file and returns its path.
func WriteFile(t *testing.T, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// WithinTol reports whether a and b differ by at most tol.
func WithinTol(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
