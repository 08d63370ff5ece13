package main

import (
	"github.com/spf13/cobra"
)

var scoreSave bool

// score skips the microphone: it grades a transcription typed in by hand,
// which is handy when a therapist writes down what the child said.
func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <transcription> [target]",
		Short: "Score a transcription against the target word",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(args[1:])
			if err != nil {
				return err
			}
			a := newApp(opts)
			orch, err := a.orchestrator(nil)
			if err != nil {
				return err
			}

			word := target.WordFor(0)
			attempt := orch.AnalyzeTranscription(cmd.Context(), args[0], word.Word, target.Phonemes)

			if scoreSave {
				if err := saveAttempt(cmd.Context(), target.ID, attempt); err != nil {
					return err
				}
			}
			return printAttempt(cmd.OutOrStdout(), opts.output, attempt)
		},
	}
	cmd.Flags().BoolVar(&scoreSave, "save", false, "also store the attempt in the history")
	return cmd
}
