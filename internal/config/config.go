package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	RunnerDirect   = "direct"
	RunnerTemporal = "temporal"
)

type Config struct {
	ServiceURL        string
	ListenPort        string
	PostgresURL       string
	TemporalAddress   string
	TemporalTaskQueue string
	Runner            string
	DefaultMode       string
	FollowupTimeout   time.Duration
	ResearchTimeout   time.Duration
	HistoryLimit      int
	LogLevel          string
	LogFile           string
}

// fileConfig mirrors Config for the optional YAML file. Timeouts are in
// seconds.
type fileConfig struct {
	ServiceURL        string `yaml:"service_url"`
	ListenPort        string `yaml:"listen_port"`
	PostgresURL       string `yaml:"postgres_url"`
	TemporalAddress   string `yaml:"temporal_address"`
	TemporalTaskQueue string `yaml:"temporal_task_queue"`
	Runner            string `yaml:"runner"`
	DefaultMode       string `yaml:"default_mode"`
	FollowupTimeout   *int   `yaml:"followup_timeout"`
	ResearchTimeout   *int   `yaml:"research_timeout"`
	HistoryLimit      *int   `yaml:"history_limit"`
	LogLevel          string `yaml:"log_level"`
	LogFile           string `yaml:"log_file"`
}

func defaults() Config {
	return Config{
		ServiceURL:        "http://localhost:8080",
		ListenPort:        "3000",
		TemporalAddress:   "localhost:7233",
		TemporalTaskQueue: "researcher-runs",
		Runner:            RunnerDirect,
		DefaultMode:       "balanced",
		FollowupTimeout:   60 * time.Second,
		ResearchTimeout:   0,
		HistoryLimit:      20,
		LogLevel:          "info",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// RESEARCHER_CONFIG (if any), then environment variables.
func Load() (Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("RESEARCHER_CONFIG")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.ServiceURL = getEnv("RESEARCH_SERVICE_URL", cfg.ServiceURL)
	cfg.ListenPort = getEnv("LISTEN_PORT", cfg.ListenPort)
	cfg.PostgresURL = getEnv("POSTGRES_URL", cfg.PostgresURL)
	if cfg.PostgresURL == "" && os.Getenv("POSTGRES_HOST") != "" {
		cfg.PostgresURL = buildPostgresURL()
	}
	cfg.TemporalAddress = getEnv("TEMPORAL_ADDRESS", cfg.TemporalAddress)
	cfg.TemporalTaskQueue = getEnv("TEMPORAL_TASK_QUEUE", cfg.TemporalTaskQueue)
	cfg.Runner = strings.ToLower(getEnv("RESEARCH_RUNNER", cfg.Runner))
	cfg.DefaultMode = getEnv("DEFAULT_MODE", cfg.DefaultMode)
	cfg.FollowupTimeout = getEnvSeconds("FOLLOWUP_TIMEOUT", cfg.FollowupTimeout)
	cfg.ResearchTimeout = getEnvSeconds("RESEARCH_TIMEOUT", cfg.ResearchTimeout)
	cfg.HistoryLimit = getEnvInt("HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	if cfg.Runner != RunnerDirect && cfg.Runner != RunnerTemporal {
		return Config{}, fmt.Errorf("unsupported research runner: %s", cfg.Runner)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	setString(&cfg.ServiceURL, file.ServiceURL)
	setString(&cfg.ListenPort, file.ListenPort)
	setString(&cfg.PostgresURL, file.PostgresURL)
	setString(&cfg.TemporalAddress, file.TemporalAddress)
	setString(&cfg.TemporalTaskQueue, file.TemporalTaskQueue)
	setString(&cfg.Runner, file.Runner)
	setString(&cfg.DefaultMode, file.DefaultMode)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.LogFile, file.LogFile)
	if file.FollowupTimeout != nil {
		cfg.FollowupTimeout = time.Duration(*file.FollowupTimeout) * time.Second
	}
	if file.ResearchTimeout != nil {
		cfg.ResearchTimeout = time.Duration(*file.ResearchTimeout) * time.Second
	}
	if file.HistoryLimit != nil {
		cfg.HistoryLimit = *file.HistoryLimit
	}
	return nil
}

func setString(target *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*target = value
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed >= 0 {
			return time.Duration(parsed) * time.Second
		}
	}
	return fallback
}

func buildPostgresURL() string {
	user := getEnv("POSTGRES_USER", "researcher")
	password := getEnv("POSTGRES_PASSWORD", "researcher")
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	database := getEnv("POSTGRES_DB", "researcher")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, database)
}
