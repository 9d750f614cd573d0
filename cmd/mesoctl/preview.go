package main

import (
	"alcyxob/fitness-coach/internal/cycle"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var (
	previewStart string
	previewWeeks int
	previewOn    string
)

// previewCmd prints the microcycle windows a mesocycle would get. With --on
// the week containing that date is highlighted.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the weekly windows of a mesocycle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(dateLayout, previewStart)
		if err != nil {
			return fmt.Errorf("invalid --start %q: want YYYY-MM-DD", previewStart)
		}
		windows, err := cycle.Windows(start, previewWeeks)
		if err != nil {
			return err
		}

		current := 0
		if previewOn != "" {
			on, err := time.Parse(dateLayout, previewOn)
			if err != nil {
				return fmt.Errorf("invalid --on %q: want YYYY-MM-DD", previewOn)
			}
			week, ok := cycle.WeekOf(start, previewWeeks, on)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("%s is outside the mesocycle", previewOn))
			}
			current = week
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mesocycle %s → %s (%d weeks)\n",
			start.Format(dateLayout), cycle.EndDate(start, previewWeeks).Format(dateLayout), previewWeeks)
		for _, w := range windows {
			line := fmt.Sprintf("  Week %2d: %s → %s", w.Week, w.Start.Format(dateLayout), w.End.Format(dateLayout))
			if w.Week == current {
				line = color.New(color.FgGreen).Sprint(line + "  ◀")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewStart, "start", "", "first day of the mesocycle (YYYY-MM-DD)")
	previewCmd.Flags().IntVar(&previewWeeks, "weeks", 4, "duration in weeks (1-52)")
	previewCmd.Flags().StringVar(&previewOn, "on", "", "highlight the week containing this date")
	_ = previewCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(previewCmd)
}
