package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Gradebook rules
	Gradebook GradebookConfig

	// Roster import
	Roster RosterConfig

	// Event bus
	Events EventsConfig

	// Feature Flags
	Features *FeatureFlags

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string
}

// GradebookConfig holds the subject list and classification marks.
type GradebookConfig struct {
	// Subjects are fixed for the lifetime of the gradebook.
	Subjects []string

	// PassMark and DistinctionMark classify an average (0-100).
	PassMark        float64
	DistinctionMark float64

	// RankingTop is the default size of the ranking view.
	RankingTop int
}

// RosterConfig holds roster import settings.
type RosterConfig struct {
	// Path of an .xlsx roster imported at startup. Empty disables it.
	Path string
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	Async   bool
	Workers int

	// JournalSize is how many recent changes the activity journal keeps.
	JournalSize int

	// RedisURL enables forwarding events to a Redis channel. Optional.
	RedisURL     string
	RedisChannel string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// DefaultSubjects is used when GRADEBOOK_SUBJECTS is empty.
var DefaultSubjects = []string{"Math", "English", "Science"}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set are not overridden. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", f, err)
		}
		existing = append(existing, f)
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	// Load App config
	cfg.App = loadAppConfig()

	// Load Gradebook config
	var err error
	cfg.Gradebook, err = loadGradebookConfig()
	if err != nil {
		return nil, fmt.Errorf("gradebook config: %w", err)
	}

	// Load Roster config
	cfg.Roster = RosterConfig{Path: strings.TrimSpace(getEnv("ROSTER_PATH", ""))}

	// Load Events config
	cfg.Events = loadEventsConfig()

	// Load Feature Flags
	cfg.Features = LoadFeatureFlags()

	// Load Observability config
	cfg.Observability = loadObservabilityConfig(cfg.App)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", string(EnvDevelopment)))

	return AppConfig{
		Name:        getEnv("APP_NAME", "gradebook"),
		Environment: env,
		Debug:       getEnvBool("APP_DEBUG", false),
		Version:     getEnv("APP_VERSION", "0.1.0"),
	}
}

func loadGradebookConfig() (GradebookConfig, error) {
	pass, err := getEnvFloat("GRADEBOOK_PASS_MARK", 50)
	if err != nil {
		return GradebookConfig{}, err
	}
	distinction, err := getEnvFloat("GRADEBOOK_DISTINCTION_MARK", 70)
	if err != nil {
		return GradebookConfig{}, err
	}

	return GradebookConfig{
		Subjects:        getEnvStringSlice("GRADEBOOK_SUBJECTS", DefaultSubjects),
		PassMark:        pass,
		DistinctionMark: distinction,
		RankingTop:      getEnvInt("GRADEBOOK_RANKING_TOP", 10),
	}, nil
}

func loadEventsConfig() EventsConfig {
	return EventsConfig{
		Async:        getEnvBool("EVENTS_ASYNC", false),
		Workers:      getEnvInt("EVENTS_WORKERS", 4),
		JournalSize:  getEnvInt("EVENTS_JOURNAL_SIZE", 50),
		RedisURL:     strings.TrimSpace(getEnv("EVENTS_REDIS_URL", "")),
		RedisChannel: getEnv("EVENTS_REDIS_CHANNEL", "gradebook:events"),
	}
}

func loadObservabilityConfig(app AppConfig) ObservabilityConfig {
	// Records share the terminal with the menu, so only warnings show by default.
	defaultLevel := "warn"
	if app.Debug {
		defaultLevel = "debug"
	}
	defaultFormat := "text"
	if app.Environment == EnvProduction {
		defaultFormat = "json"
	}

	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", defaultLevel),
		LogFormat: getEnv("LOG_FORMAT", defaultFormat),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Gradebook.Subjects) == 0 {
		errs = append(errs, "GRADEBOOK_SUBJECTS must name at least one subject")
	}

	// Validate ranges
	if c.Gradebook.PassMark < 0 || c.Gradebook.PassMark > 100 {
		errs = append(errs, "GRADEBOOK_PASS_MARK must be 0-100")
	}
	if c.Gradebook.DistinctionMark < 0 || c.Gradebook.DistinctionMark > 100 {
		errs = append(errs, "GRADEBOOK_DISTINCTION_MARK must be 0-100")
	}
	if c.Gradebook.PassMark > c.Gradebook.DistinctionMark {
		errs = append(errs, "GRADEBOOK_PASS_MARK must not exceed GRADEBOOK_DISTINCTION_MARK")
	}
	if c.Gradebook.RankingTop <= 0 {
		errs = append(errs, "GRADEBOOK_RANKING_TOP must be positive")
	}

	if c.Events.Workers <= 0 {
		errs = append(errs, "EVENTS_WORKERS must be positive")
	}
	if c.Events.JournalSize <= 0 {
		errs = append(errs, "EVENTS_JOURNAL_SIZE must be positive")
	}
	if c.Events.RedisURL != "" && !strings.HasPrefix(c.Events.RedisURL, "redis://") && !strings.HasPrefix(c.Events.RedisURL, "rediss://") {
		errs = append(errs, "EVENTS_REDIS_URL must start with redis:// or rediss://")
	}

	switch strings.ToLower(c.Observability.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, "LOG_FORMAT must be json or text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvFloat, unlike the other helpers, rejects malformed input.
func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}
