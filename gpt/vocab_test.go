package gpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpt2go/gpt2go/gpt/internal/testutil"
)

func TestLoadVocab_DecodesRecords(t *testing.T) {
	records := [][]byte{[]byte("A"), []byte("BC"), {}}
	path := testutil.WriteFile(t, "vocab.bin", testutil.VocabFileBytes(records, nil))

	v, err := LoadVocab(path)
	require.NoError(t, err)

	assert.Equal(t, 3, v.Count())
	assert.Equal(t, []byte("A"), v.Decode(0))
	assert.Equal(t, []byte("BC"), v.Decode(1))
	assert.Empty(t, v.Decode(2))
}

func TestVocabDecode_OutOfRange(t *testing.T) {
	path := testutil.WriteFile(t, "vocab.bin", testutil.VocabFileBytes([][]byte{[]byte("x")}, nil))
	v, err := LoadVocab(path)
	require.NoError(t, err)

	assert.Nil(t, v.Decode(-1))
	assert.Nil(t, v.Decode(1))
}

func TestLoadVocab_BadMagic(t *testing.T) {
	path := testutil.WriteFile(t, "vocab.bin",
		testutil.VocabFileBytes([][]byte{[]byte("x")}, map[int]uint32{0: 99}))
	_, err := LoadVocab(path)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestLoadVocab_BadVersion(t *testing.T) {
	path := testutil.WriteFile(t, "vocab.bin",
		testutil.VocabFileBytes([][]byte{[]byte("x")}, map[int]uint32{1: 7}))
	_, err := LoadVocab(path)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestLoadVocab_EmptyVocabulary(t *testing.T) {
	path := testutil.WriteFile(t, "vocab.bin", testutil.VocabFileBytes(nil, nil))
	_, err := LoadVocab(path)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestLoadVocab_TruncatedRecord(t *testing.T) {
	full := testutil.VocabFileBytes([][]byte{[]byte("AB"), []byte("CD")}, nil)

	// cut mid-body: second record's bytes missing
	path := testutil.WriteFile(t, "vocab.bin", full[:len(full)-2])
	_, err := LoadVocab(path)
	assert.ErrorIs(t, err, ErrBadTokens)

	// cut before the second record's length byte
	path = testutil.WriteFile(t, "vocab.bin", full[:len(full)-3])
	_, err = LoadVocab(path)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestLoadVocab_OversizedWord(t *testing.T) {
	// a record declaring 200 bytes exceeds the 128-byte slot payload
	body := testutil.VocabFileBytes([][]byte{make([]byte, 200)}, nil)
	path := testutil.WriteFile(t, "vocab.bin", body)
	_, err := LoadVocab(path)
	assert.ErrorIs(t, err, ErrBadWordSize)
}

func TestLoadVocab_MaxLengthWordAccepted(t *testing.T) {
	word := make([]byte, 128)
	for i := range word {
		word[i] = byte(i)
	}
	path := testutil.WriteFile(t, "vocab.bin", testutil.VocabFileBytes([][]byte{word}, nil))
	v, err := LoadVocab(path)
	require.NoError(t, err)
	assert.Equal(t, word, v.Decode(0))
}
