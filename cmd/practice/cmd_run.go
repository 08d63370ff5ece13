package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"phonics-coach/internal/audio/device"
	"phonics-coach/internal/history"
	"phonics-coach/internal/models"
	"phonics-coach/internal/session"
	"phonics-coach/internal/words"
	"phonics-coach/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const localUser = "local"

const helpText = `Commands:
  <enter>        record an attempt
  l              listen to the word
  n / p          next / previous letter
  t <target>     switch to a letter or course
  y <text>       score a typed transcription
  r              ask for practice tips
  s              show the session average
  h              this help
  q              quit`

var errNotALetter = errors.New("next and previous only move between letters; use `t <target>` for courses")

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [target]",
		Short: "Start an interactive practice session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(args)
			if err != nil {
				return err
			}
			a := newApp(opts)

			rec, err := a.recorder()
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()

			pron, err := a.pronouncer()
			if err != nil {
				return err
			}
			var player *device.Player
			if pron.Enabled() {
				if player, err = device.NewPlayer(a.lock); err != nil {
					return err
				}
				defer func() { _ = player.Close() }()
			}

			store, err := history.Open(opts.historyPath)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			t := newTrainer(cmd.OutOrStdout(), target)
			t.attempt = rec.attempt
			t.score = func(ctx context.Context, text string, word models.WordEntry, phonemes []string) *models.Attempt {
				return rec.orch.AnalyzeTranscription(ctx, text, word.Word, phonemes)
			}
			t.remedy = rec.orch.Remedy
			t.save = func(ctx context.Context, target string, a *models.Attempt) error {
				_, err := store.Insert(ctx, target, *a)
				return err
			}
			if player != nil {
				t.listen = func(ctx context.Context, word models.WordEntry) error {
					clip, err := pron.Pronounce(ctx, word.Word)
					if err != nil {
						return err
					}
					return player.Play(ctx, clip)
				}
			}

			return t.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// trainer is the interactive loop. Its capabilities are plain functions so
// the loop can be driven without a sound card.
type trainer struct {
	out     io.Writer
	target  words.Target
	session models.Session

	attempt func(ctx context.Context, word models.WordEntry, phonemes []string) (*models.Attempt, error)
	score   func(ctx context.Context, text string, word models.WordEntry, phonemes []string) *models.Attempt
	remedy  func(ctx context.Context, phonemes []string, average float64, accuracies []int) (string, models.FeedbackSource)
	listen  func(ctx context.Context, word models.WordEntry) error
	save    func(ctx context.Context, target string, a *models.Attempt) error
	now     func() time.Time
}

func newTrainer(out io.Writer, target words.Target) *trainer {
	now := time.Now
	return &trainer{
		out:     out,
		target:  target,
		session: session.New(uuid.NewString(), localUser, target.ID, now()),
		now:     now,
	}
}

func (t *trainer) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(t.out, helpText)
	t.prompt()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		quit, err := t.handle(ctx, strings.TrimSpace(sc.Text()))
		if err != nil {
			fmt.Fprintf(t.out, "! %v\n", err)
		}
		if quit {
			t.summary()
			return nil
		}
		t.prompt()
	}
	t.summary()
	return sc.Err()
}

func (t *trainer) handle(ctx context.Context, line string) (quit bool, err error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "":
		return false, t.record(ctx)
	case "l", "listen":
		return false, t.play(ctx)
	case "n", "next":
		return false, t.step(words.Next)
	case "p", "prev":
		return false, t.step(words.Previous)
	case "t", "target":
		return false, t.switchTo(arg)
	case "y", "type":
		return false, t.typed(ctx, arg)
	case "r", "remedy":
		return false, t.tips(ctx)
	case "s", "status":
		t.status()
		return false, nil
	case "h", "?", "help":
		fmt.Fprintln(t.out, helpText)
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type h for help", name)
	}
}

func (t *trainer) word() models.WordEntry {
	return t.target.WordFor(len(t.session.Attempts))
}

func (t *trainer) prompt() {
	w := t.word()
	fmt.Fprintf(t.out, "\n[%s] %s %s > ", t.target.ID, w.Glyph, w.Word)
}

func (t *trainer) record(ctx context.Context) error {
	w := t.word()
	fmt.Fprintf(t.out, "Say %q now...\n", w.Word)

	rctx, stop := interruptible(ctx)
	defer stop()

	a, err := t.attempt(rctx, w, t.target.Phonemes)
	if isCancelled(err) {
		fmt.Fprintln(t.out, "Recording cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	return t.finish(ctx, a)
}

func (t *trainer) typed(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("type what was heard after y")
	}
	return t.finish(ctx, t.score(ctx, text, t.word(), t.target.Phonemes))
}

func (t *trainer) finish(ctx context.Context, a *models.Attempt) error {
	t.session = session.RecordAttempt(t.session, *a)
	if t.save != nil {
		if err := t.save(ctx, t.target.ID, a); err != nil {
			logger.L().Warn("attempt_save_failed", "target", t.target.ID, "error", err)
		}
	}
	if err := printAttempt(t.out, outputText, a); err != nil {
		return err
	}
	t.status()
	return nil
}

func (t *trainer) play(ctx context.Context) error {
	if t.listen == nil {
		return errors.New("listening needs OPENAI_API_KEY or services.openai-key")
	}
	pctx, stop := interruptible(ctx)
	defer stop()
	if err := t.listen(pctx, t.word()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (t *trainer) step(move func(string) string) error {
	if t.target.IsCourse() {
		return errNotALetter
	}
	return t.switchTo(move(t.target.ID))
}

// switchTo starts a fresh session; averages never mix targets.
func (t *trainer) switchTo(id string) error {
	target, ok := words.Resolve(id)
	if !ok {
		return errUnknownTarget(id)
	}
	t.target = target
	t.session = session.Reset(t.session, target.ID, t.now())
	return nil
}

func (t *trainer) tips(ctx context.Context) error {
	if len(t.session.Attempts) == 0 {
		return errors.New("make an attempt first")
	}
	text, _ := t.remedy(ctx, t.target.Phonemes, session.Average(t.session), session.Accuracies(t.session))
	fmt.Fprintf(t.out, "\n%s\n", text)
	return nil
}

func (t *trainer) status() {
	n := len(t.session.Attempts)
	if n == 0 {
		fmt.Fprintf(t.out, "No attempts on %s yet.\n", t.target.ID)
		return
	}
	fmt.Fprintf(t.out, "Average on %s: %.2f%% over %d attempt(s)\n", t.target.ID, session.Average(t.session), n)
}

func (t *trainer) summary() {
	if len(t.session.Attempts) > 0 {
		t.status()
	}
}
