package main

import (
	"fmt"
	"os"

	"exam-prep-be/internal/bootstrap"
	"exam-prep-be/internal/config"
	"exam-prep-be/pkg/database"

	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	container *bootstrap.Container
	jsonOut   bool
)

var rootCmd = &cobra.Command{
	Use:   "contentctl",
	Short: "Operate on exam-prep topic content",
	Long:  `Reconcile syllabi, generate and deduplicate topic content, and read the generation audit log.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if cmd.Annotations["offline"] == "true" {
			return nil
		}

		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		container = bootstrap.NewContainer(db, cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Close()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	rootCmd.AddCommand(ensureCmd, ensureAllCmd, dedupeCmd, reconcileCmd, sweepCmd, auditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
