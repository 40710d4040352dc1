package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/database"
	"github.com/evpower/recruit-backend/internal/logger"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/results"
)

func newAttemptsCommand(cfg *config.Config) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "Review aptitude test attempts",
	}
	cmd.PersistentFlags().StringVar(&email, "email", "", "Only attempts by this candidate")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadAttempts(cmd.Context(), cfg, email)
			if err != nil {
				return err
			}
			results.WriteAttemptList(os.Stdout, records)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [index]",
		Short: "Show the question-by-question review of one attempt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadAttempts(cmd.Context(), cfg, email)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				color.New(color.FgYellow).Println("No test results available")
				return nil
			}

			idx, err := pickAttempt(records, args)
			if err != nil {
				return err
			}
			results.WriteView(os.Stdout, results.Render(records[idx]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write attempts to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadAttempts(cmd.Context(), cfg, email)
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := results.WriteWorkbook(f, records); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("Exported %d attempts to %s\n", len(records), args[0])
			return nil
		},
	})

	return cmd
}

// loadAttempts reads the attempt log, filtered by email when one is given.
func loadAttempts(ctx context.Context, cfg *config.Config, email string) ([]model.AttemptRecord, error) {
	// Connection chatter stays out of the way unless debugging.
	level := "warn"
	if cfg.LogLevel == "debug" {
		level = cfg.LogLevel
	}
	log := logger.New(os.Stderr, level, "pretty")

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	store := attemptstore.NewRedisStore(rdb, log)
	if email != "" {
		return store.FindByEmail(ctx, email)
	}
	return store.ListAll(ctx)
}

// pickAttempt resolves the index argument, or asks for one when it is missing.
func pickAttempt(records []model.AttemptRecord, args []string) (int, error) {
	if len(args) == 1 {
		idx, err := strconv.Atoi(args[0])
		if err != nil || idx < 0 || idx >= len(records) {
			return 0, fmt.Errorf("index must be between 0 and %d", len(records)-1)
		}
		return idx, nil
	}

	options := make([]string, len(records))
	for i, r := range records {
		options[i] = fmt.Sprintf("%d  %s  %s  %d%%", i, r.Email, r.TestDate.Local().Format("2006-01-02"), r.Percentage)
	}
	var idx int
	if err := survey.AskOne(&survey.Select{Message: "Select an attempt:", Options: options}, &idx); err != nil {
		return 0, err
	}
	return idx, nil
}
