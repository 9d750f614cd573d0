package main

import (
	"alcyxob/fitness-coach/internal/planfile"
	"alcyxob/fitness-coach/internal/service"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a TOML or YAML plan file and print its outline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := loadDraft(args[0])
		if err != nil {
			return err
		}
		printOutline(cmd.OutOrStdout(), draft)
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✅ Plan is valid"))
		return nil
	},
}

// loadDraft reads a plan file and validates it the way the server would.
func loadDraft(path string) (service.TemplateDraft, error) {
	plan, err := planfile.Load(path)
	if err != nil {
		return service.TemplateDraft{}, fmt.Errorf("failed to read plan: %w", err)
	}
	draft, err := plan.Draft()
	if err != nil {
		return draft, fmt.Errorf("invalid plan: %w", err)
	}
	if err := service.ValidateTemplateDraft(draft); err != nil {
		return draft, fmt.Errorf("invalid plan: %w", err)
	}
	return draft, nil
}

func printOutline(w io.Writer, draft service.TemplateDraft) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(w, "%s (%d days)\n", bold(draft.Title), len(draft.Days))
	for i, day := range draft.Days {
		title := day.Title
		if title == "" {
			title = "untitled"
		}
		fmt.Fprintf(w, "  Day %d: %s\n", i+1, cyan(title))
		for _, ex := range day.Exercises {
			fmt.Fprintf(w, "    - %s", ex.Name)
			for _, s := range ex.Sets {
				if s.MinReps == s.MaxReps {
					fmt.Fprintf(w, " [%d]", s.MinReps)
				} else {
					fmt.Fprintf(w, " [%d-%d]", s.MinReps, s.MaxReps)
				}
			}
			fmt.Fprintln(w)
		}
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
