package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"
	"golang.org/x/term"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/database"
	"github.com/evpower/recruit-backend/internal/logger"
	"github.com/evpower/recruit-backend/internal/repository"
	"github.com/evpower/recruit-backend/internal/service"
)

func main() {
	var email string
	flag.StringVar(&email, "email", "", "Email of the staff account to repair")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Usage: reset-staff-password -email <address>")
		os.Exit(2)
	}

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	staffService := service.NewStaffService(repository.NewStaffRepository(pool), service.NewAuthService(cfg, nil))

	fmt.Println("=== Reset Staff Password ===")
	fmt.Println("This command sets a new password and re-activates the account.")

	fmt.Print("New Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	fmt.Print("Repeat Password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}

	if string(first) != string(second) {
		fmt.Println("Error: Passwords do not match")
		os.Exit(1)
	}
	if len(first) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}

	if err := staffService.ResetPassword(ctx, email, string(first)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			fmt.Printf("Error: No staff account for %s\n", email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to reset password")
	}

	fmt.Printf("Password for %s updated.\n", email)
}
