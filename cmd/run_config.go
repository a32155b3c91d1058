package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// RunConfig holds generation parameters loadable from a YAML file. Nil
// pointer fields mean "not set in YAML" — they do not override flag
// defaults, and flags given explicitly on the command line always win.
type RunConfig struct {
	Model     *string  `yaml:"model"`
	Decoder   *string  `yaml:"decoder"`
	NumTokens *int     `yaml:"num_tokens"`
	SeqLen    *int     `yaml:"seq_len"`
	Ratio     *float64 `yaml:"ratio"`
	Seed      *uint64  `yaml:"seed"`
}

// LoadRunConfig reads and parses a YAML run configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var rc RunConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rc); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &rc, nil
}

// Apply copies set file values into the flag variables, skipping any flag
// the user passed explicitly.
func (rc *RunConfig) Apply(flags *pflag.FlagSet) {
	if rc.Model != nil && !flags.Changed("model") {
		modelPath = *rc.Model
	}
	if rc.Decoder != nil && !flags.Changed("decoder") {
		decoderPath = *rc.Decoder
	}
	if rc.NumTokens != nil && !flags.Changed("num-tokens") {
		numTokens = *rc.NumTokens
	}
	if rc.SeqLen != nil && !flags.Changed("seq-len") {
		seqLen = *rc.SeqLen
	}
	if rc.Ratio != nil && !flags.Changed("ratio") {
		ratio = *rc.Ratio
	}
	if rc.Seed != nil && !flags.Changed("seed") {
		seed = *rc.Seed
	}
}
