package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/auditlens/auditlens/pkg/apperror"
)

// Config represents application configuration
type Config struct {
	Environment string           `yaml:"environment"`
	Fraud       FraudConfig      `yaml:"fraud"`
	Audit       AuditConfig      `yaml:"audit"`
	Encryption  EncryptionConfig `yaml:"encryption"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// FraudConfig represents fraud pipeline configuration
type FraudConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ZScoreThreshold     float64 `yaml:"zscore_threshold"`
	HighRiskThreshold   float64 `yaml:"high_risk_threshold"`
	HistoryCapacity     int     `yaml:"history_capacity"`
	EnableFuzzyMatch    bool    `yaml:"enable_fuzzy_match"`
}

// AuditConfig represents audit chain configuration
type AuditConfig struct {
	SigningSecret string `yaml:"signing_secret"`
}

// EncryptionConfig represents field-level encryption configuration
type EncryptionConfig struct {
	Enabled   bool   `yaml:"enabled"`
	MasterKey string `yaml:"master_key"` // base64url; generated at startup when empty
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Load loads configuration from an optional YAML file (CONFIG_FILE), a .env
// file if present, and environment variables. Environment variables win over
// the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Environment: "development",
		Fraud: FraudConfig{
			SimilarityThreshold: 0.85,
			ZScoreThreshold:     3.0,
			HighRiskThreshold:   0.7,
			HistoryCapacity:     1000,
			EnableFuzzyMatch:    true,
		},
		Encryption: EncryptionConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	config.Environment = getEnv("ENVIRONMENT", config.Environment)
	config.Fraud.SimilarityThreshold = getEnvFloat("FRAUD_SIMILARITY_THRESHOLD", config.Fraud.SimilarityThreshold)
	config.Fraud.ZScoreThreshold = getEnvFloat("FRAUD_ZSCORE_THRESHOLD", config.Fraud.ZScoreThreshold)
	config.Fraud.HighRiskThreshold = getEnvFloat("FRAUD_HIGH_RISK_THRESHOLD", config.Fraud.HighRiskThreshold)
	config.Fraud.HistoryCapacity = getEnvInt("FRAUD_HISTORY_CAPACITY", config.Fraud.HistoryCapacity)
	config.Fraud.EnableFuzzyMatch = getEnvBool("FRAUD_ENABLE_FUZZY_MATCH", config.Fraud.EnableFuzzyMatch)
	config.Audit.SigningSecret = getEnv("AUDIT_SIGNING_SECRET", config.Audit.SigningSecret)
	config.Encryption.Enabled = getEnvBool("ENCRYPTION_ENABLED", config.Encryption.Enabled)
	config.Encryption.MasterKey = getEnv("ENCRYPTION_MASTER_KEY", config.Encryption.MasterKey)
	config.Logging.Level = getEnv("LOG_LEVEL", config.Logging.Level)
	config.Logging.Format = getEnv("LOG_FORMAT", config.Logging.Format)

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Fraud.SimilarityThreshold <= 0 || c.Fraud.SimilarityThreshold > 1 {
		return apperror.NewInvalidInput("fraud similarity threshold must be in (0, 1]")
	}
	if c.Fraud.ZScoreThreshold <= 0 {
		return apperror.NewInvalidInput("fraud z-score threshold must be positive")
	}
	if c.Fraud.HistoryCapacity <= 0 {
		return apperror.NewInvalidInput("fraud history capacity must be positive")
	}
	if c.IsProduction() && c.Audit.SigningSecret == "" {
		return apperror.NewInvalidInput("audit signing secret must be set in production")
	}
	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
