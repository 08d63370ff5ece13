package main

import (
	"context"
	"errors"
	"fmt"

	"phonics-coach/internal/audio/device"

	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen [target]",
		Short: "Play the reference pronunciation of the target word",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(args)
			if err != nil {
				return err
			}
			a := newApp(opts)
			pron, err := a.pronouncer()
			if err != nil {
				return err
			}
			if !pron.Enabled() {
				return fmt.Errorf("listening needs OPENAI_API_KEY or services.openai-key")
			}

			player, err := device.NewPlayer(a.lock)
			if err != nil {
				return err
			}
			defer func() { _ = player.Close() }()

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			for _, w := range target.Words {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s\n", w.Letter, w.Glyph, w.Word)
				clip, err := pron.Pronounce(ctx, w.Word)
				if err != nil {
					return err
				}
				if err := player.Play(ctx, clip); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
			}
			return nil
		},
	}
}
