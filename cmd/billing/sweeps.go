package main

import (
	"context"
	"errors"

	"billing-engine-be/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	dueSoonDays    int
	autoPayDays    int
	continueOnLock bool
)

type sweepFunc func(ctx context.Context) (*service.SweepReport, error)

var dueSoonCmd = &cobra.Command{
	Use:   "due-soon",
	Short: "Send reminders for invoices due in exactly --days days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context(), func(ctx context.Context) (*service.SweepReport, error) {
			return container.Scheduler.SendDueSoonReminders(ctx, dueSoonDays)
		})
	},
}

var autoPayCmd = &cobra.Command{
	Use:   "auto-pay",
	Short: "Charge invoices due within --days days for subscriptions with auto-pay",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context(), func(ctx context.Context) (*service.SweepReport, error) {
			return container.Scheduler.ProcessUpcomingAutoPay(ctx, autoPayDays)
		})
	},
}

var dunningCmd = &cobra.Command{
	Use:   "dunning",
	Short: "Retry auto-pay on overdue invoices and send overdue notices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context(), container.Scheduler.ProcessDunning)
	},
}

var syncAutoPayCmd = &cobra.Command{
	Use:   "sync-auto-pay",
	Short: "Disable auto-pay where the default payment method no longer qualifies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context(), container.Scheduler.SyncAllAutoPay)
	},
}

var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Run every sweep in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched := container.Scheduler
		sweeps := []sweepFunc{
			sched.SyncAllAutoPay,
			func(ctx context.Context) (*service.SweepReport, error) {
				return sched.ProcessUpcomingAutoPay(ctx, autoPayDays)
			},
			sched.ProcessDunning,
			func(ctx context.Context) (*service.SweepReport, error) {
				return sched.SendDueSoonReminders(ctx, dueSoonDays)
			},
		}

		var errs []error
		for _, sweep := range sweeps {
			if err := runSweep(cmd.Context(), sweep); err != nil {
				errs = append(errs, err)
				if cmd.Context().Err() != nil {
					break
				}
			}
		}
		return errors.Join(errs...)
	},
}

func runSweep(ctx context.Context, sweep sweepFunc) error {
	report, err := sweep(ctx)
	if errors.Is(err, service.ErrSweepLocked) {
		color.Yellow("Sweep already running elsewhere, skipped")
		if continueOnLock {
			return nil
		}
		return err
	}
	if report != nil {
		printReport(report)
	}
	return err
}

func printReport(r *service.SweepReport) {
	color.Cyan("\n[%s]", r.Sweep)
	color.White("  scanned:   %d", r.Scanned)
	color.Green("  auto-paid: %d", r.AutoPaid)
	color.Green("  notified:  %d", r.Notified)
	color.Yellow("  skipped:   %d", r.Skipped)
	if r.Failed > 0 {
		color.Red("  failed:    %d", r.Failed)
	} else {
		color.White("  failed:    0")
	}
}

func init() {
	// 0 falls back to BILLING_DUE_SOON_DAYS / BILLING_AUTO_PAY_ADVANCE_DAYS.
	dueSoonCmd.Flags().IntVar(&dueSoonDays, "days", 0, "days before the due date")
	autoPayCmd.Flags().IntVar(&autoPayDays, "days", 0, "charge invoices due within this many days")
	runAllCmd.Flags().IntVar(&dueSoonDays, "due-soon-days", 0, "days before the due date for reminders")
	runAllCmd.Flags().IntVar(&autoPayDays, "auto-pay-days", 0, "auto-pay look-ahead in days")
	rootCmd.PersistentFlags().BoolVar(&continueOnLock, "skip-locked", true, "treat a held sweep lock as success")

	rootCmd.AddCommand(dueSoonCmd, autoPayCmd, dunningCmd, syncAutoPayCmd, runAllCmd)
}
