// Package cmd implements the command-line interface for newsharvest.
// It provides the root command and subcommands for running and scheduling
// ingestion passes and inspecting the source registry.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsharvest/cmd/ingest"
	cmdschedule "github.com/jonesrussell/newsharvest/cmd/schedule"
	cmdsources "github.com/jonesrussell/newsharvest/cmd/sources"
	"github.com/jonesrussell/newsharvest/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// rootCmd represents the root command for the newsharvest CLI.
	rootCmd = &cobra.Command{
		Use:   "newsharvest",
		Short: "A news article ingestion pipeline",
		Long: `newsharvest ingests news articles from configured external sources
into a normalized, queryable article catalog.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to Viper.
	_ = godotenv.Load()

	if err := config.InitViper(cfgFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("newsharvest version %s\n", version)
		},
	})

	rootCmd.AddCommand(ingest.Command())
	rootCmd.AddCommand(cmdschedule.Command())
	rootCmd.AddCommand(cmdsources.Command())
}
