package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"phonics-coach/internal/history"
	"phonics-coach/internal/models"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printWords(w io.Writer, format string, entries []models.WordEntry) error {
	if format == outputJSON {
		return printJSON(w, entries)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "LETTER\tSOUND\tWORD\tSAY\t")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t\n", e.Letter, e.Phoneme, e.Glyph, e.Word, e.Pronunciation)
	}
	return tw.Flush()
}

func printCourses(w io.Writer, format string, courses []models.Course) error {
	if format == outputJSON {
		return printJSON(w, courses)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "COURSE\tWORDS\tFOCUS\t")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c.ID, strings.Join(c.Words, ", "), c.Description)
	}
	return tw.Flush()
}

func printAttempt(w io.Writer, format string, a *models.Attempt) error {
	if format == outputJSON {
		return printJSON(w, a)
	}
	heard := a.Transcription
	if heard == "" {
		heard = "(nothing)"
	}
	fmt.Fprintf(w, "Expected: %s\n", a.ExpectedWord)
	fmt.Fprintf(w, "Heard:    %s\n", heard)
	fmt.Fprintf(w, "Accuracy: %d%%\n", a.Accuracy)
	if a.Degraded {
		fmt.Fprintln(w, "(transcription was unavailable; this score is an estimate)")
	}
	fmt.Fprintf(w, "\n%s\n", a.Feedback)
	return nil
}

func printHistory(w io.Writer, format string, entries []history.Entry) error {
	if format == outputJSON {
		return printJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No attempts yet.")
		return nil
	}
	tw := newTable(w)
	estimated := false
	fmt.Fprintln(tw, "WHEN\tTARGET\tWORD\tHEARD\tACCURACY\t")
	for _, e := range entries {
		acc := fmt.Sprintf("%d%%", e.Accuracy)
		if e.Degraded {
			acc += "*"
			estimated = true
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Target, e.ExpectedWord, e.Transcription, acc)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if estimated {
		fmt.Fprintln(w, "* estimated, transcription was unavailable")
	}
	return nil
}

func printStats(w io.Writer, format string, stats []models.TargetStats) error {
	if format == outputJSON {
		return printJSON(w, stats)
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, "No attempts yet.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TARGET\tATTEMPTS\tAVERAGE\tBEST\tESTIMATED\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\t%d%%\t%d\t\n",
			s.Target, s.Attempts, s.AverageAccuracy, s.BestAccuracy, s.DegradedAttempts)
	}
	return tw.Flush()
}
