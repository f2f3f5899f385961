package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/logging"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren/config"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren/extractors"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/transcode"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sirendetect",
	Short: "Classify audio clips for emergency-siren presence",
	Long: `sirendetect runs short audio clips through a band-limiting,
envelope-extraction and temporal-smoothing pipeline and reports whether
each clip contains an emergency siren.

Audio decoding requires ffmpeg and ffprobe on PATH.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel(logging.DebugLevel)
		}
	},
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig returns the defaults, overridden by --config when given
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configPath)
}

// buildPipeline wires the default extractor and the prototype scorer
// configured in cfg into a fresh pipeline
func buildPipeline(cfg *config.Config) (*siren.Pipeline, error) {
	scorer, err := siren.LoadPrototypeScorer(cfg.Scorer.PrototypePath, cfg.Scorer.Neighbors)
	if err != nil {
		return nil, fmt.Errorf("loading scorer: %w", err)
	}
	return siren.NewPipeline(cfg, extractors.NewShortTerm(), scorer)
}

// newDecoder builds the ffmpeg decoder targeting the configured rate
func newDecoder(cfg *config.Config) *transcode.Decoder {
	decoderCfg := transcode.DefaultDecoderConfig()
	decoderCfg.TargetSampleRate = cfg.SampleRate
	return transcode.NewDecoder(decoderCfg)
}
