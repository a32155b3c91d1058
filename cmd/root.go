// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gpt2go/gpt2go/gpt"
)

var (
	modelPath   string
	decoderPath string
	numTokens   int
	seqLen      int
	ratio       float64
	seed        uint64
	logLevel    string
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:     "gpt2go",
	Short:   "CPU inference engine for GPT-2 checkpoints",
	Version: "0.1",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Sample tokens from a model checkpoint",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if configPath != "" {
			rc, err := LoadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("Failed to load run config: %v", err)
			}
			rc.Apply(cmd.Flags())
		}
		if ratio < 1.0 || ratio > 3.0 {
			logrus.Fatalf("Oversize ratio %.2f outside [1.0, 3.0]", ratio)
		}

		m, err := gpt.LoadModel(modelPath)
		if err != nil {
			logrus.Fatalf("Failed to load model: %v", err)
		}
		if seqLen < 1 || seqLen > m.Config().MaxSeqLen {
			seqLen = m.Config().MaxSeqLen
		}
		if err := m.Init(seqLen); err != nil {
			logrus.Fatalf("Failed to init model: %v", err)
		}

		// A missing decoder is non-fatal: fall back to decimal ids.
		var vocab *gpt.Vocab
		if decoderPath != "" {
			vocab, err = gpt.LoadVocab(decoderPath)
			if err != nil {
				logrus.Warnf("Decoder unavailable, emitting token ids: %v", err)
				vocab = nil
			}
		}

		stats, err := gpt.Generate(m, vocab, os.Stdout, gpt.GenerateOptions{
			NumTokens: numTokens,
			Ratio:     ratio,
			Seed:      seed,
		})
		if err != nil {
			logrus.Fatalf("Generation failed: %v", err)
		}
		stats.Log()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	generateCmd.Flags().StringVarP(&modelPath, "model", "m", "gpt2_124M.bin", "Model checkpoint file")
	generateCmd.Flags().StringVarP(&decoderPath, "decoder", "d", "gpt2_tokenizer.bin", "Tokenizer decoder file (missing file falls back to decimal ids)")
	generateCmd.Flags().IntVarP(&numTokens, "num-tokens", "n", -1, "Number of tokens to generate (-1 = unbounded)")
	generateCmd.Flags().IntVarP(&seqLen, "seq-len", "l", -1, "Working sequence length (defaults to the model maximum)")
	generateCmd.Flags().Float64VarP(&ratio, "ratio", "r", 2.0, "Context buffer oversize ratio in [1.0, 3.0]")
	generateCmd.Flags().Uint64VarP(&seed, "seed", "s", 1337, "Initial 64-bit PRNG state")
	generateCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	generateCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration file (explicit flags win)")

	rootCmd.AddCommand(generateCmd)
}
