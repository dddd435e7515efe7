package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Fingerprint algorithm names accepted in FingerprintConfig.Algorithm.
const (
	AlgorithmAverage    = "average"
	AlgorithmPerception = "perception"
	AlgorithmDifference = "difference"
)

// Deletion failure policies accepted in DeletionConfig.OnFailure.
const (
	OnFailureFail  = "fail"
	OnFailureSkip  = "skip"
	OnFailureRetry = "retry"
)

// Config holds all configuration options for a dedup run
type Config struct {
	// Directory listing
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Perceptual hash selection
	Fingerprint FingerprintConfig `yaml:"fingerprint" json:"fingerprint"`

	// Deletion behaviour
	Deletion DeletionConfig `yaml:"deletion" json:"deletion"`

	// Run lock
	Lock LockConfig `yaml:"lock" json:"lock"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScanConfig holds directory listing configuration
type ScanConfig struct {
	Directory        string `yaml:"directory" json:"directory"`
	Recursive        bool   `yaml:"recursive" json:"recursive"`
	StrictExtensions bool   `yaml:"strict_extensions" json:"strict_extensions"`
}

// FingerprintConfig selects the perceptual hash used for one run
type FingerprintConfig struct {
	Algorithm string `yaml:"algorithm" json:"algorithm"`
}

// DeletionConfig holds deletion configuration
type DeletionConfig struct {
	DryRun      bool          `yaml:"dry_run" json:"dry_run"`
	OnFailure   string        `yaml:"on_failure" json:"on_failure"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// LockConfig holds run lock configuration. An empty Directory means the
// platform data directory.
type LockConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Directory:        "",
			Recursive:        false,
			StrictExtensions: false,
		},
		Fingerprint: FingerprintConfig{
			Algorithm: AlgorithmAverage,
		},
		Deletion: DeletionConfig{
			DryRun:      false,
			OnFailure:   OnFailureFail,
			MaxAttempts: 3,
			RetryDelay:  500 * time.Millisecond,
		},
		Lock: LockConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if dir := os.Getenv("PIXDEDUP_SCAN_DIR"); dir != "" {
		c.Scan.Directory = dir
	}
	if v := os.Getenv("PIXDEDUP_RECURSIVE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PIXDEDUP_RECURSIVE: %w", err))
		} else {
			c.Scan.Recursive = b
		}
	}
	if v := os.Getenv("PIXDEDUP_STRICT_EXTENSIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PIXDEDUP_STRICT_EXTENSIONS: %w", err))
		} else {
			c.Scan.StrictExtensions = b
		}
	}

	if algo := os.Getenv("PIXDEDUP_FINGERPRINT"); algo != "" {
		c.Fingerprint.Algorithm = algo
	}

	if v := os.Getenv("PIXDEDUP_DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PIXDEDUP_DRY_RUN: %w", err))
		} else {
			c.Deletion.DryRun = b
		}
	}
	if policy := os.Getenv("PIXDEDUP_ON_DELETE_FAILURE"); policy != "" {
		c.Deletion.OnFailure = policy
	}
	if v := os.Getenv("PIXDEDUP_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PIXDEDUP_MAX_ATTEMPTS: %w", err))
		} else {
			c.Deletion.MaxAttempts = n
		}
	}

	if v := os.Getenv("PIXDEDUP_LOCK_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PIXDEDUP_LOCK_ENABLED: %w", err))
		} else {
			c.Lock.Enabled = b
		}
	}
	if dir := os.Getenv("PIXDEDUP_LOCK_DIR"); dir != "" {
		c.Lock.Directory = dir
	}

	if logLevel := os.Getenv("PIXDEDUP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("PIXDEDUP_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".pixdedup.yaml",
		".pixdedup.yml",
		filepath.Join(home, ".config", "pixdedup", "config.yaml"),
		filepath.Join(home, ".config", "pixdedup", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Scan.Directory == "" {
		errs = append(errs, errors.New("scan directory is required"))
	}

	switch strings.ToLower(c.Fingerprint.Algorithm) {
	case AlgorithmAverage, AlgorithmPerception, AlgorithmDifference:
	default:
		errs = append(errs, fmt.Errorf("unknown fingerprint algorithm %q", c.Fingerprint.Algorithm))
	}

	switch strings.ToLower(c.Deletion.OnFailure) {
	case OnFailureFail, OnFailureSkip:
	case OnFailureRetry:
		if c.Deletion.MaxAttempts < 1 {
			errs = append(errs, errors.New("max attempts must be at least 1 when retrying deletions"))
		}
		if c.Deletion.RetryDelay < 0 {
			errs = append(errs, errors.New("retry delay cannot be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown deletion failure policy %q", c.Deletion.OnFailure))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override; callers add a key when the user set
// the flag explicitly.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if dir, ok := flags["scan-dir"].(string); ok && dir != "" {
		c.Scan.Directory = dir
	}
	if recursive, ok := flags["recursive"].(bool); ok {
		c.Scan.Recursive = recursive
	}
	if strict, ok := flags["strict-extensions"].(bool); ok {
		c.Scan.StrictExtensions = strict
	}
	if algo, ok := flags["fingerprint"].(string); ok && algo != "" {
		c.Fingerprint.Algorithm = algo
	}
	if dryRun, ok := flags["dry-run"].(bool); ok {
		c.Deletion.DryRun = dryRun
	}
	if policy, ok := flags["on-failure"].(string); ok && policy != "" {
		c.Deletion.OnFailure = policy
	}
	if attempts, ok := flags["max-attempts"].(int); ok && attempts > 0 {
		c.Deletion.MaxAttempts = attempts
	}
	if noLock, ok := flags["no-lock"].(bool); ok {
		c.Lock.Enabled = !noLock
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence and
// validates the result.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Resolve layers every configuration source like Load but skips validation,
// for callers that display an incomplete configuration.
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pixdedup.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	return config, nil
}
