package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren"
)

var showTrace bool

var classifyCmd = &cobra.Command{
	Use:   "classify <audio-file>",
	Short: "Classify one audio clip",
	Long: `Decode an audio file, run it through the detection pipeline, and
print the clip-level decision.

Examples:
  sirendetect classify clip.wav
  sirendetect classify --trace clip.wav
  sirendetect -c config.yaml classify clip.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		pipeline, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		audio, err := newDecoder(cfg).DecodeFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		clip := siren.NewSampleBuffer(audio.PCM, audio.SampleRate)
		result, err := pipeline.EvaluateClip(cmd.Context(), clip)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s (vote %.2f, %d frames, %d running decisions)\n",
			args[0], result.Decision.Label, result.Decision.Probability,
			result.Frames, len(result.Trace))

		if showTrace {
			for i, d := range result.Trace {
				fmt.Printf("  %3d  %-9s  mean=%.3f\n", i, d.Label, d.Mean)
			}
		}

		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&showTrace, "trace", false, "print the per-frame running decisions")
	rootCmd.AddCommand(classifyCmd)
}
