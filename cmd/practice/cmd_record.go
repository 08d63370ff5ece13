package main

import (
	"context"
	"errors"
	"fmt"

	"phonics-coach/internal/analysis"
	"phonics-coach/internal/audio"
	"phonics-coach/internal/audio/device"
	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"

	"github.com/spf13/cobra"
)

var (
	recordWord   int
	recordNoSave bool
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [target]",
		Short: "Record one attempt from the microphone and score it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(args)
			if err != nil {
				return err
			}
			rec, err := newApp(opts).recorder()
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()

			word := target.WordFor(recordWord)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Say %q now (%s, Ctrl-C to cancel)...\n", word.Word, opts.window)

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			attempt, err := rec.attempt(ctx, word, target.Phonemes)
			if isCancelled(err) {
				fmt.Fprintln(out, "Recording cancelled.")
				return nil
			}
			if err != nil {
				return err
			}

			if !recordNoSave {
				if err := saveAttempt(cmd.Context(), target.ID, attempt); err != nil {
					return err
				}
			}
			return printAttempt(out, opts.output, attempt)
		},
	}
	cmd.Flags().IntVar(&recordWord, "word", 0, "which word of a course to say, counting from 0")
	cmd.Flags().BoolVar(&recordNoSave, "no-save", false, "do not store the attempt in the history")
	return cmd
}

// micRecorder analyses attempts spoken into the default microphone.
type micRecorder struct {
	mic  *device.Microphone
	orch *analysis.Orchestrator
}

func (a *app) recorder() (*micRecorder, error) {
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	orch, err := a.orchestrator(gw)
	if err != nil {
		return nil, err
	}
	mic, err := device.NewMicrophone(audio.SampleRate, audio.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to open microphone: %w", err)
	}
	return &micRecorder{mic: mic, orch: orch}, nil
}

func (r *micRecorder) attempt(ctx context.Context, word models.WordEntry, phonemes []string) (*models.Attempt, error) {
	return r.orch.AnalyzeAttempt(ctx, r.mic, word.Word, phonemes)
}

func (r *micRecorder) Close() error {
	return r.mic.Close()
}

func isCancelled(err error) bool {
	return errors.Is(err, apperrors.ErrRecordingCancelled) || errors.Is(err, context.Canceled)
}
