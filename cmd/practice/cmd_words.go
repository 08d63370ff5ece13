package main

import (
	"phonics-coach/internal/words"

	"github.com/spf13/cobra"
)

func newWordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List the word bank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printWords(cmd.OutOrStdout(), opts.output, words.All())
		},
	}
}

func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the sound-pair courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCourses(cmd.OutOrStdout(), opts.output, words.Courses())
		},
	}
}

// resolveTarget picks the positional target when given, else --target.
func resolveTarget(args []string) (words.Target, error) {
	id := opts.target
	if len(args) > 0 {
		id = args[0]
	}
	t, ok := words.Resolve(id)
	if !ok {
		return words.Target{}, errUnknownTarget(id)
	}
	return t, nil
}
