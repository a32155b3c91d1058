package gpt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Decoder vocabulary file framing: a 1024-byte header of 256 little-endian
// 32-bit integers, then vocabCount records of one length byte followed by
// that many raw bytes.
const (
	vocabMagic   = 20240328
	vocabVersion = 1

	// maxWordSize is the fixed stride of the dense decode table: the
	// longest permitted byte string (128) plus one slot historically kept
	// for a terminator.
	maxWordSize = 128 + 1
)

// Vocab maps token ids to their byte strings by fixed-stride addressing
// into one dense table; no per-token allocation.
type Vocab struct {
	count int
	words []byte // count slots of maxWordSize bytes
	sizes []uint8
}

// LoadVocab reads a decoder vocabulary file.
func LoadVocab(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]byte, headerBytes)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: reading vocabulary header: %v", ErrBadHeader, err)
	}
	if m := binary.LittleEndian.Uint32(header); m != vocabMagic {
		return nil, fmt.Errorf("%w: vocabulary magic %d", ErrBadHeader, m)
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != vocabVersion {
		return nil, fmt.Errorf("%w: vocabulary version %d", ErrBadHeader, v)
	}
	count := int(binary.LittleEndian.Uint32(header[8:]))
	if count == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrBadHeader)
	}

	v := &Vocab{
		count: count,
		words: make([]byte, count*maxWordSize),
		sizes: make([]uint8, count),
	}
	for i := 0; i < count; i++ {
		size, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: token %d length: %v", ErrUnexpectedEOF, i, err)
		}
		if int(size) > maxWordSize-1 {
			return nil, fmt.Errorf("%w: token %d declares %d bytes", ErrBadWordSize, i, size)
		}
		if _, err := io.ReadFull(r, v.words[i*maxWordSize:i*maxWordSize+int(size)]); err != nil {
			return nil, fmt.Errorf("%w: token %d body: %v", ErrBadTokens, i, err)
		}
		v.sizes[i] = size
	}

	logrus.Infof("Loaded vocabulary %s: %d tokens", path, count)
	return v, nil
}

// Count returns the number of tokens in the table.
func (v *Vocab) Count() int {
	return v.count
}

// Decode returns the byte string for a token id, or nil when the id is out
// of range. The returned slice aliases the table and must not be modified.
func (v *Vocab) Decode(id int32) []byte {
	if id < 0 || int(id) >= v.count {
		return nil
	}
	i := int(id)
	return v.words[i*maxWordSize : i*maxWordSize+int(v.sizes[i])]
}
