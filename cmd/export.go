package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worktracker.com/worktracker/internal/export"
	"worktracker.com/worktracker/internal/services"
)

var exportOpts struct {
	from   string
	to     string
	userID string
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write time entries and attendance to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		entries, err := a.entries.List(ctx, services.EntryFilter{UserID: exportOpts.userID, From: exportOpts.from, To: exportOpts.to})
		if err != nil {
			return err
		}
		tasks, err := a.tasks.ListTasks(ctx)
		if err != nil {
			return err
		}
		records, err := a.attendance.List(ctx, services.AttendanceFilter{UserID: exportOpts.userID, From: exportOpts.from, To: exportOpts.to})
		if err != nil {
			return err
		}

		wb := export.Workbook{
			Entries:    entries,
			TaskTitles: make(map[string]string, len(tasks)),
			Attendance: records,
		}
		for _, t := range tasks {
			wb.TaskTitles[t.ID] = t.Title
		}

		f, err := os.Create(exportOpts.out)
		if err != nil {
			return fmt.Errorf("error creating file: %w", err)
		}
		if _, err := wb.WriteTo(f); err != nil {
			f.Close()
			return fmt.Errorf("error writing workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries and %d attendance records to %s\n", len(entries), len(records), exportOpts.out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOpts.from, "from", "", "first day to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportOpts.to, "to", "", "last day to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportOpts.userID, "user", "", "only this user's entries and attendance")
	exportCmd.Flags().StringVarP(&exportOpts.out, "out", "o", "worktracker.xlsx", "output file")
	rootCmd.AddCommand(exportCmd)
}
