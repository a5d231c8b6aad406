package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Agent    AgentConfig
	Analysis AnalysisConfig
	Metrics  MetricsConfig
}

type HTTPConfig struct {
	Addr string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AgentConfig описывает подключение к внешнему AI-агенту.
type AgentConfig struct {
	URL           string
	SubmitTimeout time.Duration
}

// AnalysisConfig управляет тайм-аутом зависших анализов.
type AnalysisConfig struct {
	MaxDuration   time.Duration
	SweepInterval time.Duration
}

// MetricsConfig содержит дефолты политик и пересчёт усилий в часы.
type MetricsConfig struct {
	EffortMinutesPerHour float64
	DefaultHourlyRate    float64
	DefaultMinSeverity   string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "pr_insight"),
			Password: getEnv("DB_PASSWORD", "pr_insight"),
			DBName:   getEnv("DB_NAME", "pr_insight"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Agent: AgentConfig{
			URL:           getEnv("AGENT_URL", "http://localhost:9000/analyze"),
			SubmitTimeout: getEnvDuration("AGENT_TIMEOUT", 5*time.Second),
		},
		Analysis: AnalysisConfig{
			MaxDuration:   getEnvDuration("ANALYSIS_MAX_DURATION", 30*time.Minute),
			SweepInterval: getEnvDuration("ANALYSIS_SWEEP_INTERVAL", time.Minute),
		},
		Metrics: MetricsConfig{
			EffortMinutesPerHour: getEnvFloat("METRICS_EFFORT_MINUTES_PER_HOUR", 60),
			DefaultHourlyRate:    getEnvFloat("DEFAULT_HOURLY_RATE", 50),
			DefaultMinSeverity:   getEnv("DEFAULT_MIN_SEVERITY", "Major"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
