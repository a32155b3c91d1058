package gpt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"
)

// parseModelHeader decodes the 1024-byte checkpoint header and validates
// magic, version and the dimension bounds of Config.Validate.
func parseModelHeader(raw []byte) (Config, error) {
	var cfg Config
	if len(raw) < headerBytes {
		return cfg, fmt.Errorf("%w: header truncated at %d bytes", ErrBadHeader, len(raw))
	}
	word := func(i int) uint32 { return binary.LittleEndian.Uint32(raw[4*i:]) }
	if m := word(0); m != modelMagic {
		return cfg, fmt.Errorf("%w: magic %d", ErrBadHeader, m)
	}
	if v := word(1); v != modelVersion {
		return cfg, fmt.Errorf("%w: version %d", ErrBadHeader, v)
	}
	cfg = Config{
		MaxSeqLen: int(int32(word(2))),
		VocabSize: int(int32(word(3))),
		NumLayers: int(int32(word(4))),
		NumHeads:  int(int32(word(5))),
		Channels:  int(int32(word(6))),
	}
	// words 7..255 are reserved and ignored
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadWeights reads a checkpoint: header first, then the sixteen parameter
// tensors as one contiguous little-endian float32 block.
func loadWeights(path string) (Config, *arena, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()

	header := make([]byte, headerBytes)
	if _, err := io.ReadFull(f, header); err != nil {
		return Config{}, nil, fmt.Errorf("%w: reading model header: %v", ErrBadHeader, err)
	}
	cfg, err := parseModelHeader(header)
	if err != nil {
		return Config{}, nil, err
	}

	params := newArena(paramSizes(cfg))
	raw := make([]byte, params.len()*4)
	if _, err := io.ReadFull(f, raw); err != nil {
		return Config{}, nil, fmt.Errorf("%w: want %d parameter floats: %v", ErrBadParams, params.len(), err)
	}
	for i := range params.data {
		params.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}

	logrus.Infof("Loaded model %s: maxT=%d vocab=%d layers=%d heads=%d channels=%d (%d parameters)",
		path, cfg.MaxSeqLen, cfg.VocabSize, cfg.NumLayers, cfg.NumHeads, cfg.Channels, params.len())
	return cfg, params, nil
}
