package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/config"
	"github.com/pageza/mealmatch/backend/internal/database"
	"github.com/pageza/mealmatch/backend/internal/logging"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/recipes"
)

var (
	source string
	rounds int
)

// rootCmd copies recipes from an upstream provider into the local catalog
var rootCmd = &cobra.Command{
	Use:   "seed_recipes",
	Short: "Seed the recipe catalog from an upstream provider",
	Long: `Fetch recipes from TheMealDB or the recipe API and store them in the
recipes table used by the catalog provider.

Each round draws one batch from the source; MealDB batches are random, so
several rounds grow the catalog.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&source, "source", "mealdb", "upstream to copy from: mealdb or recipeapi")
	rootCmd.Flags().IntVar(&rounds, "rounds", 3, "number of batches to fetch")
}

func upstream(cfg *config.Config) (recipes.Provider, error) {
	client := &http.Client{Timeout: cfg.RecipeTimeout}
	switch source {
	case "mealdb":
		return recipes.NewMealDBClient(recipes.MealDBBaseURL, client, cfg.CandidateBatch), nil
	case "recipeapi":
		return recipes.NewAPIClient(cfg.RecipeAPIURL, client), nil
	}
	return nil, fmt.Errorf("unknown source %q", source)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if rounds < 1 {
		return fmt.Errorf("--rounds must be at least 1")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	provider, err := upstream(cfg)
	if err != nil {
		return err
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, logger); err != nil {
		return err
	}
	catalog := recipes.NewCatalogProvider(db)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	seen := map[string]bool{}
	for i := 0; i < rounds; i++ {
		batch, err := provider.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("round %d: %w", i+1, err)
		}
		fresh := make([]models.Recipe, 0, len(batch))
		for _, r := range batch {
			if !seen[r.ID] {
				seen[r.ID] = true
				fresh = append(fresh, r)
			}
		}
		if err := catalog.Upsert(ctx, fresh); err != nil {
			return fmt.Errorf("round %d: %w", i+1, err)
		}
		logger.Info("seeded recipes",
			zap.Int("round", i+1),
			zap.Int("fetched", len(batch)),
			zap.Int("stored", len(fresh)))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "stored %d recipes from %s\n", len(seen), source)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
