package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"billing-engine-be/internal/bootstrap"
	"billing-engine-be/internal/config"
	"billing-engine-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var container *bootstrap.Container

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Run billing sweeps",
	Long: `Periodic billing jobs: due-soon reminders, auto-pay, dunning and
auto-pay eligibility sync. Meant to run from cron; concurrent runs of the
same sweep are rejected while the sweep lock is held.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		var db *gorm.DB
		if cfg.Database.Connection != "" {
			var err error
			db, err = database.NewGormDBFromDSN(cfg.Database.Connection, false)
			if err != nil {
				return err
			}
		}

		container = bootstrap.NewContainer(db, cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Close()
		}
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
