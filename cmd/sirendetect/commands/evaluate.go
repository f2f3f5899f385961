package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/eval"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren"
)

var (
	sirenDir    string
	nonSirenDir string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the pipeline against a labeled clip corpus",
	Long: `Classify every .wav clip under the siren and non-siren directories
and report accuracy, precision, recall and the confusion counts.

Example:
  sirendetect evaluate --siren-dir data/emergency --non-siren-dir data/nonEmergency`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		evaluator, err := eval.NewEvaluator(func() (*siren.Pipeline, error) {
			return buildPipeline(cfg)
		}, cfg.Eval)
		if err != nil {
			return err
		}

		decoder := newDecoder(cfg)
		decode := func(ctx context.Context, path string) (siren.SampleBuffer, error) {
			audio, err := decoder.DecodeFile(ctx, path)
			if err != nil {
				return siren.SampleBuffer{}, err
			}
			return siren.NewSampleBuffer(audio.PCM, audio.SampleRate), nil
		}

		metrics, err := evaluator.EvaluateDirs(cmd.Context(), sirenDir, nonSirenDir, decode)
		if err != nil {
			return err
		}

		fmt.Printf("Correct siren:     %d / %d\n", metrics.CorrectSiren, metrics.TotalSiren)
		fmt.Printf("Correct non-siren: %d / %d\n", metrics.CorrectNonSiren, metrics.TotalNonSiren)
		if metrics.Skipped > 0 {
			fmt.Printf("Skipped (too short): %d\n", metrics.Skipped)
		}
		fmt.Printf("Accuracy:  %.4f\n", metrics.Accuracy())
		fmt.Printf("Precision: %.4f\n", metrics.Precision())
		fmt.Printf("Recall:    %.4f\n", metrics.Recall())

		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&sirenDir, "siren-dir", "", "directory of siren-labeled .wav clips")
	evaluateCmd.Flags().StringVar(&nonSirenDir, "non-siren-dir", "", "directory of non-siren .wav clips")
	_ = evaluateCmd.MarkFlagRequired("siren-dir")
	_ = evaluateCmd.MarkFlagRequired("non-siren-dir")
	rootCmd.AddCommand(evaluateCmd)
}
