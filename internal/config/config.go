package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the relevance scoring service
type Config struct {
	Server    ServerConfig
	Model     ModelConfig
	Training  TrainingConfig
	Tracking  TrackingConfig
	Ingestion IngestionConfig
}

// ServerConfig holds HTTP serving configuration
type ServerConfig struct {
	Addr string
}

// ModelConfig locates the long-lived scoring inputs
type ModelConfig struct {
	BackgroundModelPath string
	VocabularyPath      string
}

// TrainingConfig holds the word2vec hyperparameters
type TrainingConfig struct {
	VectorSize int     `yaml:"vector_size"`
	Window     int     `yaml:"window"`
	MinCount   int     `yaml:"min_count"`
	Epochs     int     `yaml:"epochs"`
	Negative   int     `yaml:"negative"`
	Workers    int     `yaml:"workers"`
	Alpha      float64 `yaml:"alpha"`
	MinAlpha   float64 `yaml:"min_alpha"`
	Seed       int64   `yaml:"seed"`
}

// TrackingConfig holds experiment tracking configuration
type TrackingConfig struct {
	BaseURL       string
	Experiment    string
	HealthTimeout time.Duration
}

// IngestionConfig holds bulk corpus conversion configuration
type IngestionConfig struct {
	Workers int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: GetStringEnv("SERVER_ADDR", ":8080"),
		},
		Model: ModelConfig{
			BackgroundModelPath: GetStringEnv("BACKGROUND_MODEL_PATH", "./data/background.model"),
			VocabularyPath:      GetStringEnv("DOMAIN_KEYWORDS_PATH", "./resources/keywords/keywords.txt"),
		},
		Training: TrainingConfig{
			VectorSize: GetIntEnv("TRAINING_VECTOR_SIZE", 1000),
			Window:     GetIntEnv("TRAINING_WINDOW", 5),
			MinCount:   GetIntEnv("TRAINING_MIN_COUNT", 4),
			Epochs:     GetIntEnv("TRAINING_EPOCHS", 10),
			Negative:   GetIntEnv("TRAINING_NEGATIVE", 5),
			Workers:    GetIntEnv("TRAINING_WORKERS", 4),
			Alpha:      GetFloatEnv("TRAINING_ALPHA", 0.025),
			MinAlpha:   GetFloatEnv("TRAINING_MIN_ALPHA", 0.0001),
			Seed:       int64(GetIntEnv("TRAINING_SEED", 1)),
		},
		Tracking: TrackingConfig{
			BaseURL:       GetStringEnv("TRACKING_URI", "http://localhost:5000"),
			Experiment:    GetStringEnv("TRACKING_EXPERIMENT", "ppml_rr"),
			HealthTimeout: GetDurationEnv("TRACKING_HEALTH_TIMEOUT", 2*time.Second),
		},
		Ingestion: IngestionConfig{
			Workers: GetIntEnv("INGESTION_WORKERS", 4),
		},
	}
}

// LoadTrainingFile overlays hyperparameters from a YAML file on top of cfg.
// Zero-valued fields in the file keep the current values.
func LoadTrainingFile(path string, cfg TrainingConfig) (TrainingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read training config: %w", err)
	}

	overlay := TrainingConfig{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("failed to parse training config: %w", err)
	}

	if overlay.VectorSize > 0 {
		cfg.VectorSize = overlay.VectorSize
	}
	if overlay.Window > 0 {
		cfg.Window = overlay.Window
	}
	if overlay.MinCount > 0 {
		cfg.MinCount = overlay.MinCount
	}
	if overlay.Epochs > 0 {
		cfg.Epochs = overlay.Epochs
	}
	if overlay.Negative > 0 {
		cfg.Negative = overlay.Negative
	}
	if overlay.Workers > 0 {
		cfg.Workers = overlay.Workers
	}
	if overlay.Alpha > 0 {
		cfg.Alpha = overlay.Alpha
	}
	if overlay.MinAlpha > 0 {
		cfg.MinAlpha = overlay.MinAlpha
	}
	if overlay.Seed != 0 {
		cfg.Seed = overlay.Seed
	}

	return cfg, nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
