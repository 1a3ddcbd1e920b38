package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hperssn/coachbook/internal/calendar"
)

var slotsDate string

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Print the schedule of one day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if slotsDate != "" {
			var err error
			date, err = time.ParseInLocation(time.DateOnly, slotsDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", slotsDate, err)
			}
		}

		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "TIME\tSTATUS\tDETAIL\n")
		for _, slot := range calendar.New(a.store, a.availability).Day(date) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", slot.Time.Format("15:04"), slot.Kind, describe(slot))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(slotsCmd)
	slotsCmd.Flags().StringVar(&slotsDate, "date", "", "Day to show as YYYY-MM-DD (default today)")
}

func describe(slot calendar.Slot) string {
	switch slot.Kind {
	case calendar.SlotStart:
		return fmt.Sprintf("%s, %d min", slot.ClientName, slot.DurationMin)
	case calendar.SlotFree:
		return fmt.Sprintf("%v min", slot.Durations)
	}
	return ""
}
