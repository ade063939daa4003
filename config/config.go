package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"patternScout/internal/adapters/logger"
	"patternScout/internal/detection"
)

// Config holds all application configuration.
type Config struct {
	// Detection Parameters
	PivotRadius               int
	LevelTolerancePct         float64
	LevelTopN                 int
	LevelMinTouches           int
	TrendTouchTolerancePct    float64
	TrendResidualTolerancePct float64
	TrendBodyTolerancePct     float64
	VolumeMultiplier          float64
	VolumeLookback            int
	ConfirmationBars          int
	MinRetracementPct         float64
	MinConfidence             float64

	// Scoring
	ModelPath    string // Empty disables the correction model
	RecordScores bool   // Persist every scoring decision to the database
	RecordBuffer int    // Pending score records before new ones are dropped

	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat logger.Format

	// Service
	Workers        int           // Concurrent requests in a batch
	RequestTimeout time.Duration // Per-request detection deadline, zero for none
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	d := detection.DefaultConfig()
	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.PivotRadius, err = getEnvAsIntRequired("PIVOT_RADIUS", d.PivotRadius)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PIVOT_RADIUS: %v", err))
	} else if cfg.PivotRadius < 1 {
		errs = append(errs, "PIVOT_RADIUS must be at least 1")
	}

	cfg.LevelTolerancePct, err = getEnvAsFloatRequired("LEVEL_TOLERANCE_PCT", d.Levels.TolerancePct)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVEL_TOLERANCE_PCT: %v", err))
	} else if cfg.LevelTolerancePct <= 0 {
		errs = append(errs, "LEVEL_TOLERANCE_PCT must be positive")
	}

	cfg.LevelTopN, err = getEnvAsIntRequired("LEVEL_TOP_N", d.Levels.TopN)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVEL_TOP_N: %v", err))
	} else if cfg.LevelTopN < 0 {
		errs = append(errs, "LEVEL_TOP_N cannot be negative")
	}

	cfg.LevelMinTouches = getEnvAsInt("LEVEL_MIN_TOUCHES", d.Levels.MinTouches)
	if cfg.LevelMinTouches < 1 {
		errs = append(errs, "LEVEL_MIN_TOUCHES must be at least 1")
	}

	cfg.TrendTouchTolerancePct, err = getEnvAsFloatRequired("TREND_TOUCH_TOLERANCE_PCT", d.Trendlines.TouchTolerancePct)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TREND_TOUCH_TOLERANCE_PCT: %v", err))
	}
	cfg.TrendResidualTolerancePct, err = getEnvAsFloatRequired("TREND_RESIDUAL_TOLERANCE_PCT", d.Trendlines.ResidualTolerancePct)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TREND_RESIDUAL_TOLERANCE_PCT: %v", err))
	}
	cfg.TrendBodyTolerancePct, err = getEnvAsFloatRequired("TREND_BODY_TOLERANCE_PCT", d.Trendlines.BodyTolerancePct)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TREND_BODY_TOLERANCE_PCT: %v", err))
	}

	cfg.VolumeMultiplier, err = getEnvAsFloatRequired("VOLUME_MULTIPLIER", d.Patterns.VolumeMultiplier)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid VOLUME_MULTIPLIER: %v", err))
	}
	cfg.VolumeLookback = getEnvAsInt("VOLUME_LOOKBACK", d.Patterns.VolumeLookback)
	cfg.ConfirmationBars = getEnvAsInt("CONFIRMATION_BARS", d.Patterns.ConfirmationBars)
	cfg.MinRetracementPct = getEnvAsFloat("MIN_RETRACEMENT_PCT", d.Patterns.MinRetracementPct)

	cfg.MinConfidence, err = getEnvAsFloatRequired("MIN_CONFIDENCE", d.MinConfidence)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_CONFIDENCE: %v", err))
	}

	// Remaining range checks live with the detection config
	if len(errs) == 0 {
		if verr := cfg.Detection().Validate(); verr != nil {
			errs = append(errs, verr.Error())
		}
	}

	// Scoring
	cfg.ModelPath = getEnv("MODEL_PATH", "")
	cfg.RecordScores = getEnvAsBool("RECORD_SCORES", false)
	cfg.RecordBuffer = getEnvAsInt("RECORD_BUFFER", 1024)
	if cfg.RecordBuffer <= 0 {
		errs = append(errs, "RECORD_BUFFER must be positive")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/pattern_scores.db")
	if cfg.RecordScores && cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set when RECORD_SCORES is enabled")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = logger.ParseFormat(getEnv("LOG_FORMAT", "json"))

	// Service
	cfg.Workers, err = getEnvAsIntRequired("WORKERS", 4)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid WORKERS: %v", err))
	} else if cfg.Workers <= 0 {
		errs = append(errs, "WORKERS must be positive")
	}

	timeoutMs := getEnvAsInt("REQUEST_TIMEOUT_MS", 5000)
	if timeoutMs < 0 {
		errs = append(errs, "REQUEST_TIMEOUT_MS cannot be negative")
	}
	cfg.RequestTimeout = time.Duration(timeoutMs) * time.Millisecond

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// Detection maps the loaded values onto the detection defaults.
func (c *Config) Detection() detection.Config {
	d := detection.DefaultConfig()
	d.PivotRadius = c.PivotRadius
	d.MinConfidence = c.MinConfidence
	d.Levels.TolerancePct = c.LevelTolerancePct
	d.Levels.TopN = c.LevelTopN
	d.Levels.MinTouches = c.LevelMinTouches
	d.Trendlines.TouchTolerancePct = c.TrendTouchTolerancePct
	d.Trendlines.ResidualTolerancePct = c.TrendResidualTolerancePct
	d.Trendlines.BodyTolerancePct = c.TrendBodyTolerancePct
	d.Patterns.VolumeMultiplier = c.VolumeMultiplier
	d.Patterns.VolumeLookback = c.VolumeLookback
	d.Patterns.ConfirmationBars = c.ConfirmationBars
	d.Patterns.MinRetracementPct = c.MinRetracementPct
	d.Features.VolumeLookback = c.VolumeLookback
	return d
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
