package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/evpower/recruit-backend/internal/config"
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "hrctl",
		Short: "Recruiting desk tooling",
		Long: color.CyanString(`hrctl - recruiting desk tooling

Submit job applications from a terminal and review aptitude test
results straight from the attempt log.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newApplyCommand(cfg))
	rootCmd.AddCommand(newAttemptsCommand(cfg))

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
