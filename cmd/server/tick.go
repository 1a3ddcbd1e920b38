package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one ledger and reminder pass, then exit",
	Long: `Deducts module credits for started sessions, marks finished sessions as
completed and fires every reminder that is due. Useful from cron when the
server is not running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ev := a.driver.Tick(cmd.Context())
		if ev.Err != nil {
			return ev.Err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "deducted:  %d\n", len(ev.Ledger.Deducted))
		fmt.Fprintf(out, "completed: %d\n", len(ev.Ledger.Completed))
		fmt.Fprintf(out, "unpaid:    %d\n", len(ev.Ledger.Unpaid))
		fmt.Fprintf(out, "reminders: %d fired, %d failed\n", len(ev.Reminder.Fired), len(ev.Reminder.Failed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tickCmd)
}
