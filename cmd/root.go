// Package cmd implements the forgecraft command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/adalundhe/forgecraft/core/config"
	"github.com/adalundhe/forgecraft/core/gate"
	"github.com/adalundhe/forgecraft/core/generation"
	"github.com/adalundhe/forgecraft/core/storage"
	"github.com/adalundhe/forgecraft/core/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "forgecraft",
	Short: "Forgecraft - generate and export game assets",
	Long: `Forgecraft turns free-text descriptions into game assets (sprites,
icons, animations, design documents), stores them locally, and exports
curated selections as engine-importable archives.`,
	SilenceUsage: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() error {
	return rootCmd.Execute()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Manager, error) {
	manager := config.NewManager(storage.ResolveDirs())
	if err := manager.Load(); err != nil {
		return nil, err
	}
	return manager, nil
}

func openStore(manager *config.Manager, logger *slog.Logger) (*store.Store, error) {
	return store.Open(manager.DatabasePath(), logger)
}

func newGenerationClient(ctx context.Context, manager *config.Manager, logger *slog.Logger) (*generation.Client, error) {
	cfg := manager.Current()
	key := manager.APIKey()
	if key == "" {
		return nil, fmt.Errorf("no API key: set %s in your environment", cfg.Provider.APIKeyEnv)
	}

	provider, err := generation.NewGeminiProvider(ctx, generation.GeminiConfig{
		APIKey:     key,
		TextModel:  cfg.Provider.TextModel,
		ImageModel: cfg.Provider.ImageModel,
		EditModel:  cfg.Provider.EditModel,
	})
	if err != nil {
		return nil, err
	}
	return generation.NewClient(provider, gate.New(), logger), nil
}
