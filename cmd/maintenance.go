package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"worktracker.com/worktracker/internal/services"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Repair task actual hours from time entries and print stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		fixed, err := a.stats.Reconcile(ctx)
		if err != nil {
			return err
		}
		s, err := a.stats.Stats(ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fixed %d tasks\n%s\n", fixed, out)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove attendance records without a clock-in and repair task caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		reconciler := services.NewReconcilerService(a.stats, a.attendance, 0)
		defer reconciler.Shutdown(cmd.Context())

		result, err := reconciler.RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d attendance records, fixed %d tasks\n", result.AttendanceRemoved, result.TasksFixed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(cleanupCmd)
}
