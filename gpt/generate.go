package gpt

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// GenerateOptions parameterize one generation run.
type GenerateOptions struct {
	NumTokens int     // tokens to emit; negative means unbounded
	Ratio     float64 // context buffer oversize ratio in [1.0, 3.0]
	Seed      uint64  // initial PRNG state
}

// Stats summarizes a finished generation run.
type Stats struct {
	Tokens  int
	Elapsed time.Duration
}

// Log writes the run summary at info level.
func (s Stats) Log() {
	secs := s.Elapsed.Seconds()
	rate := 0.0
	if secs > 0 {
		rate = float64(s.Tokens) / secs
	}
	logrus.Infof("Generated %d tokens in %.2fs (%.1f tokens/s)", s.Tokens, secs, rate)
}

// Generate runs the sampling loop against an initialized model: each step
// takes the current window from the token buffer, runs the forward pass,
// draws one token, feeds it back, and emits it to w. With a vocabulary the
// raw token bytes are written back to back; without one, decimal ids
// separated by single spaces. Output ends with a newline either way.
//
// The ordering per step is strict: Step -> Forward -> Sample -> Update ->
// emit, and the PRNG is consulted exactly once, after the forward pass.
func Generate(m *Model, vocab *Vocab, w io.Writer, opts GenerateOptions) (Stats, error) {
	tb, err := NewTokenBuffer(m.SeqLen(), opts.Ratio)
	if err != nil {
		return Stats{}, err
	}
	rng := NewRNG(opts.Seed)

	start := time.Now()
	emitted := 0
	for n := 0; opts.NumTokens < 0 || n < opts.NumTokens; n++ {
		window, t := tb.Step()
		m.Forward(window, t)
		id := m.Sample(t, rng)
		tb.Update(id)

		logrus.Debugf("step %d: t=%d token=%d", n, t, id)
		if vocab != nil {
			_, err = w.Write(vocab.Decode(id))
		} else {
			_, err = fmt.Fprintf(w, "%d ", id)
		}
		if err != nil {
			return Stats{Tokens: emitted, Elapsed: time.Since(start)}, fmt.Errorf("emitting token: %w", err)
		}
		emitted++
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return Stats{Tokens: emitted, Elapsed: time.Since(start)}, fmt.Errorf("emitting token: %w", err)
	}
	return Stats{Tokens: emitted, Elapsed: time.Since(start)}, nil
}
