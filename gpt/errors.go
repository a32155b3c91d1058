package gpt

import "errors"

// Load-time error kinds. Callers branch with errors.Is; a missing file
// surfaces as the wrapped fs.ErrNotExist from os.Open. Kernels and the
// sampler never return errors: their inputs are produced internally and
// validation is concentrated at load time.
var (
	// ErrBadHeader reports a model or vocabulary header with the wrong
	// magic, wrong version, or dimensions that fail validation.
	ErrBadHeader = errors.New("bad header")

	// ErrBadParams reports a model file whose parameter block is shorter
	// than the header-derived tensor sizes require.
	ErrBadParams = errors.New("short parameter block")

	// ErrUnexpectedEOF reports a vocabulary file that ends mid-record.
	ErrUnexpectedEOF = errors.New("unexpected end of file")

	// ErrBadTokens reports a vocabulary record whose byte string is
	// shorter than its declared length.
	ErrBadTokens = errors.New("bad token record")

	// ErrBadWordSize reports a vocabulary record longer than the fixed
	// slot size allows.
	ErrBadWordSize = errors.New("token record too long")
)
