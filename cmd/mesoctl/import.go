package main

import (
	"alcyxob/fitness-coach/internal/app"
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/service"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	importTrainer   string
	importConfigDir string
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Store a TOML or YAML plan file as a template of a coach",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := loadDraft(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(importConfigDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Database.Driver == config.DriverMemory {
			return errors.New("import needs a persistent database; database.driver is memory")
		}
		repos, closeDB, err := app.OpenRepositories(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer closeDB()

		tree, err := importDraft(cmd.Context(), repos, importTrainer, draft)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✅ Template %q created (%s)", tree.Template.Title, tree.Template.ID.Hex()))
		return nil
	},
}

func importDraft(ctx context.Context, repos repository.Repositories, trainerEmail string, draft service.TemplateDraft) (*service.TemplateTree, error) {
	coach, err := repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(trainerEmail)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("no user with email %s", trainerEmail)
		}
		return nil, err
	}
	if !coach.IsCoach() {
		return nil, fmt.Errorf("%s is a %s, not a coach", trainerEmail, coach.Role)
	}

	templates := service.NewTemplateService(repos)
	return templates.ImportTemplate(ctx, service.Actor{ID: coach.ID, Role: coach.Role}, draft)
}

func init() {
	importCmd.Flags().StringVar(&importTrainer, "trainer", "", "email of the coach who will own the template")
	importCmd.Flags().StringVar(&importConfigDir, "config", ".", "directory holding config.yaml and .env")
	_ = importCmd.MarkFlagRequired("trainer")
	rootCmd.AddCommand(importCmd)
}
