package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/database"
	"github.com/evpower/recruit-backend/internal/logger"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/repository"
	"github.com/evpower/recruit-backend/internal/service"
)

const minPasswordLength = 6

type answers struct {
	FullName string
	Email    string
	Password string
	Role     string
}

func main() {
	roleFlag := flag.String("role", "", "preselect the role (admin or hr)")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ans, err := ask(*roleFlag)
	if errors.Is(err, terminal.InterruptErr) {
		os.Exit(130)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Hashing needs no Redis.
	authService := service.NewAuthService(cfg, nil)
	staffService := service.NewStaffService(repository.NewStaffRepository(pool), authService)

	staff := &model.StaffUser{
		Email:    strings.ToLower(strings.TrimSpace(ans.Email)),
		FullName: strings.TrimSpace(ans.FullName),
		Role:     model.Role(ans.Role),
	}
	if err := staffService.Create(ctx, staff, ans.Password); err != nil {
		log.Error().Err(err).Str("email", staff.Email).Msg("Failed to create staff account")
		os.Exit(1)
	}

	fmt.Printf("Created %s account %q <%s> with ID %d\n", staff.Role, staff.FullName, staff.Email, staff.ID)
}

func ask(presetRole string) (answers, error) {
	var ans answers

	questions := []*survey.Question{
		{
			Name:     "FullName",
			Prompt:   &survey.Input{Message: "Full name:"},
			Validate: survey.Required,
		},
		{
			Name:     "Email",
			Prompt:   &survey.Input{Message: "Email:"},
			Validate: survey.ComposeValidators(survey.Required, emailLike),
		},
		{
			Name:     "Password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.MinLength(minPasswordLength),
		},
	}

	role := model.Role(strings.ToLower(presetRole))
	if role.Valid() {
		ans.Role = string(role)
	} else {
		questions = append(questions, &survey.Question{
			Name: "Role",
			Prompt: &survey.Select{
				Message: "Role:",
				Options: []string{string(model.RoleHR), string(model.RoleAdmin)},
				Default: string(model.RoleHR),
			},
		})
	}

	if err := survey.Ask(questions, &ans); err != nil {
		return ans, err
	}
	return ans, nil
}

func emailLike(v any) error {
	s, _ := v.(string)
	local, domain, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok || local == "" || !strings.Contains(domain, ".") {
		return errors.New("not a valid email address")
	}
	return nil
}
