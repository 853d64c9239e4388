package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var recipeProviders = map[string]bool{
	"recipeapi": true,
	"mealdb":    true,
	"catalog":   true,
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	// name of the source a sensitive value must come from
	source := func(env, secret string) string {
		if cfg.Environment.usesSecrets() {
			return "secret " + secret
		}
		return "environment variable " + env
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not allowed in production")
		}
		if cfg.DBPath == "" {
			add("DB_PATH", "is required for sqlite")
		}
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required")
		}
		if cfg.DBUser == "" {
			add("DB_USER", source("DB_USER", "db_user")+" is required")
		}
		if cfg.DBPassword == "" {
			add("DB_PASSWORD", source("DB_PASSWORD", "db_password")+" is required")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", source("JWT_SECRET", "jwt_secret")+" is required")
	}

	if !recipeProviders[cfg.RecipeProvider] {
		add("RECIPE_PROVIDER", fmt.Sprintf("unknown provider %q", cfg.RecipeProvider))
	}
	if cfg.RecipeProvider == "recipeapi" && cfg.RecipeAPIURL == "" {
		add("RECIPE_API_URL", "is required for the recipeapi provider")
	}
	if cfg.RecipeTimeout <= 0 {
		add("RECIPE_TIMEOUT", "must be positive")
	}
	if cfg.CandidateBatch <= 0 {
		add("CANDIDATE_BATCH", "must be positive")
	}
	if cfg.ArchiveBucket != "" && cfg.AWSRegion == "" {
		add("AWS_REGION", "is required when ARCHIVE_BUCKET is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
