package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/form"
	"github.com/evpower/recruit-backend/internal/intake"
	"github.com/evpower/recruit-backend/internal/logger"
	"github.com/evpower/recruit-backend/internal/model"
)

var fieldLabels = map[string]string{
	form.FieldFirstName:  "First name",
	form.FieldLastName:   "Last name",
	form.FieldAddress:    "Address",
	form.FieldMobile:     "Mobile number",
	form.FieldEmail:      "Email",
	form.FieldGraduation: "Graduation field",
	form.FieldCGPA:       "CGPA (0-10)",
	form.FieldPosition:   "Position",
	form.FieldResume:     "Resume file (.pdf, .doc, .docx)",
}

func newApplyCommand(cfg *config.Config) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Fill in and submit a job application",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(os.Stderr, cfg.LogLevel, "pretty")

			var ack *model.ApplicationAck
			ctrl := intake.NewController(
				intake.NewClient(url, nil, log),
				intake.NewTerminalLocker(os.Stdout),
				log,
				intake.WithToastHandler(func(msg string) {
					color.New(color.FgRed).Fprintln(os.Stdout, msg)
				}),
			)

			ctrl.Open()
			defer ctrl.Close()

			pending := append([]string(nil), form.Fields...)
			for {
				for _, name := range pending {
					if err := askField(ctrl, name); err != nil {
						return err
					}
				}

				err := ctrl.Submit(cmd.Context())
				if err == nil {
					ack = ctrl.Ack()
					break
				}
				if errors.Is(err, intake.ErrInvalidForm) {
					pending = failingFields(ctrl.Errors())
					continue
				}

				retry := false
				if err := survey.AskOne(&survey.Confirm{Message: "Submit again?", Default: true}, &retry); err != nil {
					return err
				}
				if !retry {
					return errors.New(intake.UserMessage(err))
				}
				pending = nil
			}

			ctrl.Close()
			printAck(ack)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", cfg.IntakeURL, "Intake endpoint")
	return cmd
}

// askField prompts for one field until the form accepts it.
func askField(ctrl *intake.Controller, name string) error {
	switch name {
	case form.FieldPosition:
		var position string
		prompt := &survey.Select{
			Message: fieldLabels[name] + ":",
			Options: model.DefaultPositions,
		}
		if err := survey.AskOne(prompt, &position); err != nil {
			return err
		}
		return ctrl.SetField(name, position)

	case form.FieldResume:
		var path string
		prompt := &survey.Input{Message: fieldLabels[name] + ":"}
		if err := survey.AskOne(prompt, &path, survey.WithValidator(survey.Required), survey.WithValidator(fileExists)); err != nil {
			return err
		}
		file, err := readResume(strings.TrimSpace(path))
		if err != nil {
			return err
		}
		return ctrl.SetResume(file)

	default:
		var value string
		prompt := &survey.Input{Message: fieldLabels[name] + ":", Default: form.Value(ctrl.Input(), name)}
		if err := survey.AskOne(prompt, &value, survey.WithValidator(fieldValidator(name))); err != nil {
			return err
		}
		return ctrl.SetField(name, value)
	}
}

func fieldValidator(name string) survey.Validator {
	return func(ans interface{}) error {
		s, _ := ans.(string)
		if msg := form.ValidateField(name, s); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

func fileExists(ans interface{}) error {
	s, _ := ans.(string)
	info, err := os.Stat(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("cannot open %q", s)
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory", s)
	}
	return nil
}

func readResume(path string) (*model.ResumeFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return model.NewResumeFile(filepath.Base(path), ctype, f)
}

func failingFields(errs form.Errors) []string {
	var out []string
	for _, name := range form.Fields {
		if errs[name] != "" {
			color.New(color.FgYellow).Printf("%s: %s\n", fieldLabels[name], errs[name])
			out = append(out, name)
		}
	}
	return out
}

func printAck(ack *model.ApplicationAck) {
	if ack == nil {
		return
	}
	color.New(color.FgGreen, color.Bold).Println(ack.Message)
	saved := ack.SavedApplication
	fmt.Printf("Application #%d for %s %s (%s), position %s\n",
		saved.ID, saved.FirstName, saved.LastName, saved.Email, saved.Position)
	fmt.Println("Your aptitude test login will arrive by email shortly.")
}
