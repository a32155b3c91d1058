package gpt

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Model owns a loaded checkpoint and its activation workspace.
//
// Lifecycle: LoadModel populates the configuration and the parameter
// arena; Init sizes and allocates the activation arena for a chosen
// working sequence length; Forward then mutates only the activation
// arena. The zero value is unusable.
type Model struct {
	cfg    Config
	params *arena
	acts   *arena
	batch  int
	seqLen int
}

// LoadModel reads a checkpoint file and returns a model with its parameter
// arena populated. Init must be called before Forward.
func LoadModel(path string) (*Model, error) {
	cfg, params, err := loadWeights(path)
	if err != nil {
		return nil, err
	}
	return &Model{cfg: cfg, params: params}, nil
}

// Config returns the hyperparameters read from the checkpoint header.
func (m *Model) Config() Config {
	return m.cfg
}

// SeqLen returns the working sequence length chosen at Init, or 0 before
// Init.
func (m *Model) SeqLen() int {
	return m.seqLen
}

// Init allocates the activation arena for working sequence length t.
// Re-initialization drops the previous arena. Batch size is fixed at 1.
func (m *Model) Init(t int) error {
	if t < 1 || t > m.cfg.MaxSeqLen {
		return fmt.Errorf("sequence length %d outside [1, %d]", t, m.cfg.MaxSeqLen)
	}
	const b = 1
	m.batch = b
	m.seqLen = t
	m.acts = newArena(actSizes(m.cfg, b, t))
	logrus.Infof("Initialized activations for T=%d (%d floats)", t, m.acts.len())
	return nil
}

// Forward runs the full transformer stack over in[0:t] and leaves the
// per-position vocabulary distributions in the probs activation. t may be
// smaller than the Init-time sequence length; layer sub-ranges are then
// packed with stride t so the kernels see contiguous rows.
func (m *Model) Forward(in []int32, t int) {
	b := m.batch
	c := m.cfg.Channels
	nh := m.cfg.NumHeads
	v := m.cfg.VocabSize
	bt := b * t
	btc := bt * c

	params, acts := m.params, m.acts

	encoderForward(acts.view(actEncoded), in, params.view(paramWTE), params.view(paramWPE), b, t, c)

	for l := 0; l < m.cfg.NumLayers; l++ {
		residual := acts.view(actEncoded)
		if l > 0 {
			residual = acts.view(actResidual3)[(l-1)*btc:]
		}

		lbtc := l * btc
		lbt := l * bt
		lc := l * c

		ln1 := acts.view(actLN1)[lbtc:]
		qkv := acts.view(actQKV)[lbtc*3:]
		atty := acts.view(actAtty)[lbtc:]
		attproj := acts.view(actAttProj)[lbtc:]
		residual2 := acts.view(actResidual2)[lbtc:]
		ln2 := acts.view(actLN2)[lbtc:]
		fch := acts.view(actFCH)[lbtc*4:]
		fchGelu := acts.view(actFCHGelu)[lbtc*4:]
		fcproj := acts.view(actFCProj)[lbtc:]
		residual3 := acts.view(actResidual3)[lbtc:]

		layernormForward(ln1, acts.view(actLN1Mean)[lbt:], acts.view(actLN1Rstd)[lbt:],
			residual, params.view(paramLN1W)[lc:], params.view(paramLN1B)[lc:], b, t, c)
		matmulForward(qkv, ln1, params.view(paramQKVW)[lc*3*c:], params.view(paramQKVB)[lc*3:],
			b, t, c, 3*c)
		attentionForward(atty, acts.view(actPreatt)[lbt*t*nh:], acts.view(actAtt)[lbt*t*nh:],
			qkv, b, t, c, nh)
		matmulForward(attproj, atty, params.view(paramAttProjW)[lc*c:], params.view(paramAttProjB)[lc:],
			b, t, c, c)
		residualForward(residual2[:btc], residual[:btc], attproj[:btc])
		layernormForward(ln2, acts.view(actLN2Mean)[lbt:], acts.view(actLN2Rstd)[lbt:],
			residual2, params.view(paramLN2W)[lc:], params.view(paramLN2B)[lc:], b, t, c)
		matmulForward(fch, ln2, params.view(paramFCW)[lc*4*c:], params.view(paramFCB)[lc*4:],
			b, t, c, 4*c)
		geluForward(fchGelu[:4*btc], fch[:4*btc])
		matmulForward(fcproj, fchGelu, params.view(paramFCProjW)[lc*4*c:], params.view(paramFCProjB)[lc:],
			b, t, 4*c, c)
		residualForward(residual3[:btc], residual2[:btc], fcproj[:btc])
	}

	residual := acts.view(actResidual3)[(m.cfg.NumLayers-1)*btc:]
	layernormForward(acts.view(actLNF), acts.view(actLNFMean), acts.view(actLNFRstd),
		residual, params.view(paramLNFW), params.view(paramLNFB), b, t, c)
	// unembedding reuses the tied token embedding matrix as [vocab, c]
	matmulForwardNoBias(acts.view(actLogits), acts.view(actLNF), params.view(paramWTE), b, t, c, v)
	softmaxForward(acts.view(actProbs), acts.view(actLogits), b, t, v)
}

// Sample draws a token id from the probability row of position t-1 of the
// last Forward call, consuming exactly one coin from rng.
func (m *Model) Sample(t int, rng *RNG) int32 {
	probs := m.acts.view(actProbs)[(t-1)*m.cfg.VocabSize:]
	coin := rng.Float32()
	return int32(sampleMult(probs[:m.cfg.VocabSize], coin))
}
