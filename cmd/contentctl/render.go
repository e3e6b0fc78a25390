package main

import (
	"encoding/json"
	"fmt"
	"io"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/generation"

	"github.com/fatih/color"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res *generation.GenerationResult, asJSON bool) error {
	if res == nil {
		return nil
	}
	if asJSON {
		return writeJSON(w, res)
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "%s successful, %s failed\n",
		green(res.SuccessfulTopics), red(res.FailedTopics))
	fmt.Fprintf(w, "Created %d tests and %d flashcards\n", res.TestsCreated, res.FlashcardsCreated)
	if res.Cancelled {
		fmt.Fprintln(w, color.YellowString("Cancelled before all topics ran"))
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s %s\n", red("✗"), e)
	}
	return nil
}

func printTopics(w io.Writer, topics []*entity.Topic) error {
	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, t := range topics {
		fmt.Fprintf(w, "%3d. %-40s %s %s\n", t.Order, t.Title, gray(t.Slug), statusLabel(t.Status))
	}
	return nil
}

func statusLabel(status entity.TopicStatus) string {
	switch status {
	case entity.TopicStatusPublished:
		return color.GreenString(string(status))
	case entity.TopicStatusGenerating:
		return color.YellowString(string(status))
	default:
		return string(status)
	}
}

func printEntries(w io.Writer, entries []logger.LogEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, color.HiBlackString("No entries"))
		return nil
	}
	for _, e := range entries {
		level := e.Level
		switch e.Level {
		case "error":
			level = color.RedString(e.Level)
		case "warn":
			level = color.YellowString(e.Level)
		}
		fmt.Fprintf(w, "%s %-5s [%s] %s\n", e.Timestamp, level, e.Module, e.Message)
		if len(e.Details) > 0 {
			raw, _ := json.Marshal(e.Details)
			fmt.Fprintf(w, "    %s\n", raw)
		}
	}
	return nil
}
