package config

import (
	"os"
	"path/filepath"
	"strconv"

	"ednelkit/internal/errors"
)

// Config represents the complete toolkit configuration
type Config struct {
	LogLevel    string
	Java        JavaConfig
	Postprocess PostprocessConfig
	NestedCV    NestedCVConfig
	Dashboard   DashboardConfig
}

// JavaConfig holds settings for the JVM-hosted prediction compiler
type JavaConfig struct {
	Bin      string
	Jar      string
	HeapSize string
}

// PostprocessConfig holds aggregation settings
type PostprocessConfig struct {
	Metric   string
	NSamples int // 0 = infer from fold file names
	NFolds   int // 0 = infer from fold file names
}

// NestedCVConfig holds nested cross-validation settings
type NestedCVConfig struct {
	ExpectedFolds int
	Metric        string
}

// DashboardConfig holds structure viewer settings
type DashboardConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "INFO"),
		Java:        *loadJavaConfig(),
		Postprocess: *loadPostprocessConfig(),
		NestedCV:    *loadNestedCVConfig(),
		Dashboard:   *loadDashboardConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadJavaConfig() *JavaConfig {
	return &JavaConfig{
		Bin:      getEnvOrDefault("EDNEL_JAVA_BIN", "java"),
		Jar:      getEnvOrDefault("EDNEL_JAR", defaultJarPath()),
		HeapSize: getEnvOrDefault("EDNEL_HEAP_SIZE", "2G"),
	}
}

func loadPostprocessConfig() *PostprocessConfig {
	return &PostprocessConfig{
		Metric:   getEnvOrDefault("EDNEL_METRIC", "unweighted_area_under_roc"),
		NSamples: getEnvIntOrDefault("EDNEL_N_SAMPLES", 0),
		NFolds:   getEnvIntOrDefault("EDNEL_N_FOLDS", 0),
	}
}

func loadNestedCVConfig() *NestedCVConfig {
	return &NestedCVConfig{
		ExpectedFolds: getEnvIntOrDefault("EDNEL_EXPECTED_FOLDS", 10),
		Metric:        getEnvOrDefault("EDNEL_NESTEDCV_METRIC", "unweightedAreaUnderRoc"),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Port: getEnvOrDefault("EDNEL_DASHBOARD_PORT", "8050"),
	}
}

// defaultJarPath looks for ednel.jar next to the executable, as the scripts did
func defaultJarPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "ednel.jar"
	}
	return filepath.Join(filepath.Dir(exe), "ednel.jar")
}

func validateConfig(config *Config) error {
	if config.Java.Bin == "" {
		return errors.ConfigInvalid("java binary is required")
	}
	if config.Postprocess.NSamples < 0 || config.Postprocess.NFolds < 0 {
		return errors.ConfigInvalid("sample and fold counts cannot be negative")
	}
	if config.NestedCV.ExpectedFolds <= 0 {
		return errors.ConfigInvalid("expected fold count must be positive")
	}
	if config.Postprocess.Metric == "" {
		return errors.ConfigInvalid("metric of interest is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
