package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/database"
	"github.com/stemsi/bezem-backend/internal/logger"
	"github.com/stemsi/bezem-backend/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:   "sheetctl",
	Short: "Preview, import and re-export bezem/conversie workbooks",
	Long: `sheetctl runs a bezem- en conversieregeling workbook through the same
normalization pipeline as the API server. Without --db everything happens
in memory, which makes import a dry run.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("enroll-base", "", "Override ENROLL_BASE_URL for course links")
	rootCmd.PersistentFlags().Bool("db", false, "Use the PostgreSQL store from DATABASE_URL")
}

// setup loads the configuration and a logger on stderr.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger) {
	cfg := config.Load()
	if base, _ := cmd.Flags().GetString("enroll-base"); base != "" {
		cfg.EnrollBaseURL = base
	}
	level, _ := cmd.Flags().GetString("log-level")
	return cfg, logger.New(cmd.ErrOrStderr(), level, "pretty")
}

// openStore returns the PostgreSQL store when --db is set and an in-memory
// store otherwise. The returned func releases the store.
func openStore(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log zerolog.Logger) (repository.ConversionStore, func(), error) {
	useDB, _ := cmd.Flags().GetBool("db")
	if !useDB {
		return repository.NewMemoryStore(), func() {}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	return repository.NewConversionRepository(pool), pool.Close, nil
}
