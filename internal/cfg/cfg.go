package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"cancer-predictor/internal/common"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ListenAddr      string
	ModelPath       string
	ScalerPath      string
	MetricsEnabled  bool
	FrontendAddr    string
	APIURL          string
	APITimeout      time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

type ConfigFile struct {
	Server struct {
		ListenAddr      string `yaml:"listenAddr"`
		MetricsEnabled  *bool  `yaml:"metricsEnabled"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Artifacts struct {
		ModelPath  string `yaml:"modelPath"`
		ScalerPath string `yaml:"scalerPath"`
	} `yaml:"artifacts"`

	Frontend struct {
		ListenAddr string `yaml:"listenAddr"`
		APIURL     string `yaml:"apiURL"`
		APITimeout string `yaml:"apiTimeout"`
	} `yaml:"frontend"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads an optional .env file, then a YAML file named by CONFIG_FILE
// when set, otherwise plain environment variables.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to read .env file: %w", err)
	}

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	apiTimeout, err := time.ParseDuration(config.Frontend.APITimeout)
	if err != nil {
		apiTimeout = 10 * time.Second
	}

	shutdownTimeout, err := time.ParseDuration(config.Server.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 10 * time.Second
	}

	metricsEnabled := true
	if config.Server.MetricsEnabled != nil {
		metricsEnabled = *config.Server.MetricsEnabled
	}

	settings := Settings{
		ListenAddr:      getEnvOrDefault(common.EnvListenAddr, orDefault(config.Server.ListenAddr, common.DefaultListenAddr)),
		ModelPath:       getEnvOrDefault(common.EnvModelPath, orDefault(config.Artifacts.ModelPath, common.DefaultModelPath)),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, orDefault(config.Artifacts.ScalerPath, common.DefaultScalerPath)),
		MetricsEnabled:  getBoolOrDefault(common.EnvMetricsEnabled, metricsEnabled),
		FrontendAddr:    getEnvOrDefault(common.EnvFrontendAddr, orDefault(config.Frontend.ListenAddr, common.DefaultFrontendAddr)),
		APIURL:          getEnvOrDefault(common.EnvAPIURL, orDefault(config.Frontend.APIURL, common.DefaultAPIURL)),
		APITimeout:      getDurationOrDefault(common.EnvAPITimeout, apiTimeout),
		ShutdownTimeout: getDurationOrDefault(common.EnvShutdownTimeout, shutdownTimeout),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, orDefault(config.Log.Level, common.DefaultLogLevel)),
		LogFormat:       getEnvOrDefault(common.EnvLogFormat, orDefault(config.Log.Format, common.DefaultLogFormat)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ListenAddr:      getEnvOrDefault(common.EnvListenAddr, common.DefaultListenAddr),
		ModelPath:       getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, common.DefaultScalerPath),
		MetricsEnabled:  getBoolOrDefault(common.EnvMetricsEnabled, true),
		FrontendAddr:    getEnvOrDefault(common.EnvFrontendAddr, common.DefaultFrontendAddr),
		APIURL:          getEnvOrDefault(common.EnvAPIURL, common.DefaultAPIURL),
		APITimeout:      getDurationOrDefault(common.EnvAPITimeout, 10*time.Second),
		ShutdownTimeout: getDurationOrDefault(common.EnvShutdownTimeout, 10*time.Second),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:       getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// validateSettings performs range and presence checks on configuration values
func validateSettings(settings *Settings) error {
	if settings.ModelPath == "" {
		return errors.New(common.ErrMsgModelPathRequired)
	}
	if settings.ScalerPath == "" {
		return errors.New(common.ErrMsgScalerPathRequired)
	}
	if settings.APIURL == "" {
		return errors.New(common.ErrMsgAPIURLRequired)
	}
	if !strings.HasPrefix(settings.APIURL, "http://") && !strings.HasPrefix(settings.APIURL, "https://") {
		return fmt.Errorf("API URL must start with http:// or https://, got %q", settings.APIURL)
	}

	if settings.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if settings.FrontendAddr == "" {
		return fmt.Errorf("frontend address cannot be empty")
	}

	minAPI := time.Duration(common.MinAPITimeoutSeconds) * time.Second
	maxAPI := time.Duration(common.MaxAPITimeoutSeconds) * time.Second
	if settings.APITimeout < minAPI || settings.APITimeout > maxAPI {
		return fmt.Errorf("API timeout must be between %v and %v, got %v", minAPI, maxAPI, settings.APITimeout)
	}

	minShutdown := time.Duration(common.MinShutdownTimeoutSeconds) * time.Second
	maxShutdown := time.Duration(common.MaxShutdownTimeoutSeconds) * time.Second
	if settings.ShutdownTimeout < minShutdown || settings.ShutdownTimeout > maxShutdown {
		return fmt.Errorf("shutdown timeout must be between %v and %v, got %v", minShutdown, maxShutdown, settings.ShutdownTimeout)
	}

	switch settings.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	switch settings.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", settings.LogFormat)
	}

	return nil
}
