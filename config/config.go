package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string // postgres or sqlite
	DBPath     string // sqlite only
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Recipe provider
	RecipeProvider  string // recipeapi, mealdb or catalog
	RecipeAPIURL    string
	RecipeTimeout   time.Duration
	RecipeCacheTTL  time.Duration
	CandidateBatch  int
	SwipesPerMinute int

	// Session archive
	ArchiveBucket string
	AWSRegion     string

	LogLevel string
}

// fileConfig is the optional YAML overlay. It never carries secrets.
type fileConfig struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		Driver  string `yaml:"driver"`
		Path    string `yaml:"path"`
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Name    string `yaml:"name"`
		SSLMode string `yaml:"ssl_mode"`
	} `yaml:"database"`
	Redis struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
		DB   int    `yaml:"db"`
		URL  string `yaml:"url"`
	} `yaml:"redis"`
	Recipes struct {
		Provider       string `yaml:"provider"`
		BaseURL        string `yaml:"base_url"`
		Timeout        string `yaml:"timeout"`
		CacheTTL       string `yaml:"cache_ttl"`
		CandidateBatch int    `yaml:"candidate_batch"`
	} `yaml:"recipes"`
	RateLimit struct {
		SwipesPerMinute int `yaml:"swipes_per_minute"`
	} `yaml:"rate_limit"`
	Archive struct {
		Bucket string `yaml:"bucket"`
		Region string `yaml:"region"`
	} `yaml:"archive"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Defaults returns the configuration used before any source is applied.
func Defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		ServerHost:      "0.0.0.0",
		CORSOrigins:     []string{"http://localhost:8081", "http://localhost:19006"},
		DBDriver:        "postgres",
		DBPath:          "mealmatch.db",
		DBPort:          "5432",
		DBSSLMode:       "disable",
		RedisPort:       "6379",
		RecipeProvider:  "recipeapi",
		RecipeAPIURL:    "https://recipe-api-3isk.onrender.com",
		RecipeTimeout:   10 * time.Second,
		RecipeCacheTTL:  24 * time.Hour,
		CandidateBatch:  10,
		SwipesPerMinute: 60,
		LogLevel:        "info",
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, environment variables and, outside CI, Docker secrets.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := Defaults()
	cfg.Environment = env

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if env.usesSecrets() {
		loadSecrets(cfg)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.ServerHost, fc.Server.Host)
	setString(&cfg.ServerPort, fc.Server.Port)
	if len(fc.Server.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.Server.CORSOrigins
	}
	setString(&cfg.DBDriver, fc.Database.Driver)
	setString(&cfg.DBPath, fc.Database.Path)
	setString(&cfg.DBHost, fc.Database.Host)
	setString(&cfg.DBPort, fc.Database.Port)
	setString(&cfg.DBName, fc.Database.Name)
	setString(&cfg.DBSSLMode, fc.Database.SSLMode)
	setString(&cfg.RedisHost, fc.Redis.Host)
	setString(&cfg.RedisPort, fc.Redis.Port)
	setString(&cfg.RedisURL, fc.Redis.URL)
	if fc.Redis.DB != 0 {
		cfg.RedisDB = fc.Redis.DB
	}
	setString(&cfg.RecipeProvider, fc.Recipes.Provider)
	setString(&cfg.RecipeAPIURL, fc.Recipes.BaseURL)
	if err := setDuration(&cfg.RecipeTimeout, fc.Recipes.Timeout); err != nil {
		return fmt.Errorf("recipes.timeout: %w", err)
	}
	if err := setDuration(&cfg.RecipeCacheTTL, fc.Recipes.CacheTTL); err != nil {
		return fmt.Errorf("recipes.cache_ttl: %w", err)
	}
	if fc.Recipes.CandidateBatch > 0 {
		cfg.CandidateBatch = fc.Recipes.CandidateBatch
	}
	if fc.RateLimit.SwipesPerMinute > 0 {
		cfg.SwipesPerMinute = fc.RateLimit.SwipesPerMinute
	}
	setString(&cfg.ArchiveBucket, fc.Archive.Bucket)
	setString(&cfg.AWSRegion, fc.Archive.Region)
	setString(&cfg.LogLevel, fc.Logging.Level)
	return nil
}

// loadEnv applies plain environment variables. In CI the sensitive values are
// read here too; everywhere else they come from secrets.
func loadEnv(cfg *Config) error {
	setString(&cfg.ServerPort, os.Getenv("SERVER_PORT"))
	setString(&cfg.ServerHost, os.Getenv("SERVER_HOST"))
	setString(&cfg.DBDriver, os.Getenv("DB_DRIVER"))
	setString(&cfg.DBPath, os.Getenv("DB_PATH"))
	setString(&cfg.DBHost, os.Getenv("DB_HOST"))
	setString(&cfg.DBPort, os.Getenv("DB_PORT"))
	setString(&cfg.DBName, os.Getenv("DB_NAME"))
	setString(&cfg.DBSSLMode, os.Getenv("DB_SSL_MODE"))
	setString(&cfg.RedisHost, os.Getenv("REDIS_HOST"))
	setString(&cfg.RedisPort, os.Getenv("REDIS_PORT"))
	setString(&cfg.RedisURL, os.Getenv("REDIS_URL"))
	setString(&cfg.RecipeProvider, os.Getenv("RECIPE_PROVIDER"))
	setString(&cfg.RecipeAPIURL, os.Getenv("RECIPE_API_URL"))
	setString(&cfg.ArchiveBucket, os.Getenv("ARCHIVE_BUCKET"))
	setString(&cfg.AWSRegion, os.Getenv("AWS_REGION"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))
	if origins := splitList(os.Getenv("CORS_ORIGINS")); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}

	if err := setDuration(&cfg.RecipeTimeout, os.Getenv("RECIPE_TIMEOUT")); err != nil {
		return fmt.Errorf("RECIPE_TIMEOUT: %w", err)
	}
	if err := setDuration(&cfg.RecipeCacheTTL, os.Getenv("RECIPE_CACHE_TTL")); err != nil {
		return fmt.Errorf("RECIPE_CACHE_TTL: %w", err)
	}
	if err := setInt(&cfg.CandidateBatch, os.Getenv("CANDIDATE_BATCH")); err != nil {
		return fmt.Errorf("CANDIDATE_BATCH: %w", err)
	}
	if err := setInt(&cfg.SwipesPerMinute, os.Getenv("SWIPES_PER_MINUTE")); err != nil {
		return fmt.Errorf("SWIPES_PER_MINUTE: %w", err)
	}

	if cfg.Environment == CI {
		setString(&cfg.DBUser, os.Getenv("DB_USER"))
		setString(&cfg.DBPassword, os.Getenv("DB_PASSWORD"))
		setString(&cfg.JWTSecret, os.Getenv("JWT_SECRET"))
		setString(&cfg.RedisPassword, os.Getenv("REDIS_PASSWORD"))
	}
	return nil
}

// loadSecrets reads sensitive values from the Docker secrets directory.
func loadSecrets(cfg *Config) {
	setString(&cfg.DBUser, readSecret("db_user"))
	setString(&cfg.DBPassword, readSecret("db_password"))
	setString(&cfg.JWTSecret, readSecret("jwt_secret"))
	setString(&cfg.RedisPassword, readSecret("redis_password"))
	setString(&cfg.RedisURL, readSecret("redis_url"))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// DatabaseDSN returns the lib/pq connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setInt(dst *int, v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
