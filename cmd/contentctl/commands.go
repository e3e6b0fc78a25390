package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"exam-prep-be/internal/dto"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/generation"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	modeFlag    string
	auditModule string
	auditLimit  int
)

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func progressPrinter() generation.ProgressFunc {
	gray := color.New(color.FgHiBlack).SprintFunc()
	return func(title string, current, total int) {
		fmt.Fprintf(os.Stderr, "%s %s\n", gray(fmt.Sprintf("[%d/%d]", current, total)), title)
	}
}

var ensureCmd = &cobra.Command{
	Use:   "ensure <assistant-id> <topic-slug>",
	Short: "Bring one topic up to the quality policy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := generation.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		res, err := container.GenerationService.EnsureTopicContent(ctx, args[0], args[1], mode, progressPrinter())
		if printErr := printResult(os.Stdout, res, jsonOut); printErr != nil {
			return printErr
		}
		return err
	},
}

var ensureAllCmd = &cobra.Command{
	Use:   "ensure-all <assistant-id>",
	Short: "Bring every topic of a syllabus up to the quality policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := generation.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		res, err := container.GenerationService.EnsureSyllabusContent(ctx, args[0], mode, progressPrinter())
		if err != nil {
			return err
		}
		return printResult(os.Stdout, res, jsonOut)
	},
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <assistant-id> <topic-slug>",
	Short: "Remove duplicate questions and flashcards of one topic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		out, err := container.GenerationService.DeduplicateTopic(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(os.Stdout, dto.NewDedupeResponse(out))
		}
		fmt.Printf("Removed %d tests and %d flashcards\n", out.TestsRemoved, out.FlashcardsRemoved)
		if len(out.FailedIds) > 0 {
			color.Yellow("Could not delete: %v", out.FailedIds)
		}
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <assistant-id>",
	Short: "Merge the shared syllabus into an assistant's topics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		topics, err := container.SyllabusService.ReconcileSyllabus(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(os.Stdout, dto.NewTopicResponses(topics))
		}
		return printTopics(os.Stdout, topics)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Deduplicate every stored topic once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		report, err := container.Sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(os.Stdout, report)
		}
		fmt.Printf("Swept %d topics: %d tests and %d flashcards removed, %d skipped\n",
			report.Topics, report.TestsRemoved, report.FlashcardsRemoved, report.Skipped)
		for _, e := range report.Errors {
			color.Red("  %s", e)
		}
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:         "audit",
	Short:       "Show the newest generation log entries",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"offline": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := logger.ReadEntries(cfg.App.GenerationLogPath, auditModule, auditLimit)
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(os.Stdout, entries)
		}
		return printEntries(os.Stdout, entries)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{ensureCmd, ensureAllCmd} {
		cmd.Flags().StringVar(&modeFlag, "mode", "ADD", "ADD keeps existing content, OVERWRITE regenerates from scratch")
	}
	auditCmd.Flags().StringVar(&auditModule, "module", "", "Only entries of this module, e.g. GENERATION")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum entries to show")
}
