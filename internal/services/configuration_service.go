package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"examprep/internal/logger"
	"examprep/internal/storage"
)

// Configuration keys. Environment variables use the EXAMPREP_ prefix with
// dots and dashes replaced by underscores, e.g. EXAMPREP_STORAGE_BACKEND.
const (
	KeyProvider             = "provider"
	KeyModel                = "model"
	KeyGeminiAPIKey         = "gemini_api_key"
	KeyOpenAIAPIKey         = "openai_api_key"
	KeyAnthropicAPIKey      = "anthropic_api_key"
	KeyFrameworkTemperature = "framework_temperature"
	KeyFollowUpTemperature  = "followup_temperature"
	KeyStorageBackend       = "storage.backend"
	KeyStorageDir           = "storage.dir"
	KeyStorageRedisURL      = "storage.redis_url"
	KeyStorageSQLitePath    = "storage.sqlite_path"
	KeyAuthCodeTTL          = "auth.code_ttl"
	KeyAuthSimulatedDelay   = "auth.simulated_delay"
	KeyHistoryLimit         = "history.limit"
	KeyServerAddr           = "server.addr"
	KeyBreakerMaxRequests   = "breaker.max_requests"
	KeyBreakerInterval      = "breaker.interval"
	KeyBreakerTimeout       = "breaker.timeout"
	KeyBreakerFailures      = "breaker.failure_threshold"
	KeyLogLevel             = "log-level"
	KeyLogFile              = "log-file"
	KeyTestMode             = "test-mode"
)

const envPrefix = "EXAMPREP"

var configDefaults = map[string]interface{}{
	KeyProvider:             "gemini",
	KeyModel:                "",
	KeyGeminiAPIKey:         "",
	KeyOpenAIAPIKey:         "",
	KeyAnthropicAPIKey:      "",
	KeyFrameworkTemperature: 0.2,
	KeyFollowUpTemperature:  0.3,
	KeyStorageBackend:       storage.BackendFile,
	KeyStorageDir:           "",
	KeyStorageRedisURL:      "",
	KeyStorageSQLitePath:    "",
	KeyAuthCodeTTL:          10 * time.Minute,
	KeyAuthSimulatedDelay:   500 * time.Millisecond,
	KeyHistoryLimit:         DefaultHistoryLimit,
	KeyServerAddr:           ":8080",
	KeyBreakerMaxRequests:   1,
	KeyBreakerInterval:      time.Duration(0),
	KeyBreakerTimeout:       30 * time.Second,
	KeyBreakerFailures:      5,
	KeyLogLevel:             "",
	KeyLogFile:              "",
	KeyTestMode:             false,
}

// apiKeyAliases lists unprefixed environment names accepted for each provider key, in priority order.
var apiKeyAliases = map[string][]string{
	KeyGeminiAPIKey:    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"},
	KeyOpenAIAPIKey:    {"OPENAI_API_KEY"},
	KeyAnthropicAPIKey: {"ANTHROPIC_API_KEY"},
}

// ConfigPaths represents configuration file paths and their loading status
type ConfigPaths struct {
	ConfigDir       string // Configuration directory path
	ConfigFile      string // YAML config file actually read, if any
	ConfigEnvPath   string // Config-dir .env file path
	ConfigEnvLoaded bool   // Whether config-dir .env was loaded
	LocalEnvPath    string // Working-directory .env file path
	LocalEnvLoaded  bool   // Whether local .env was loaded
}

// BreakerConfig tunes the circuit breaker around model calls.
type BreakerConfig struct {
	MaxRequests      uint32        // Requests allowed through while half-open
	Interval         time.Duration // Closed-state count reset period, 0 never resets
	Timeout          time.Duration // Open-state duration before probing again
	FailureThreshold uint32        // Consecutive failures that trip the breaker
}

// AppConfig is the resolved configuration snapshot services are built from.
type AppConfig struct {
	Provider             string
	Model                string
	FrameworkTemperature float64
	FollowUpTemperature  float64
	Storage              storage.Config
	CodeTTL              time.Duration
	SimulatedDelay       time.Duration
	HistoryLimit         int
	ServerAddr           string
	Breaker              BreakerConfig
	TestMode             bool
}

// ConfigurationService provides configuration management for examprep.
// Priority (highest to lowest): flags > environment > local .env > config-dir .env > config.yaml > defaults.
type ConfigurationService struct {
	v           *viper.Viper
	configFile  string
	testMode    bool
	paths       ConfigPaths
	initialized bool
}

// NewConfigurationService creates a ConfigurationService over v.
// A nil v gets a fresh viper instance; pass viper.GetViper() to share flag bindings with cobra.
func NewConfigurationService(v *viper.Viper, configFile string, testMode bool) *ConfigurationService {
	if v == nil {
		v = viper.New()
	}
	return &ConfigurationService{
		v:          v,
		configFile: configFile,
		testMode:   testMode,
	}
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// Initialize loads every configuration layer.
// In test mode only defaults, environment and an explicit config file are used.
func (c *ConfigurationService) Initialize() error {
	if c.initialized {
		return nil
	}

	for key, value := range configDefaults {
		c.v.SetDefault(key, value)
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()
	for key, aliases := range apiKeyAliases {
		names := append([]string{envName(key)}, aliases...)
		if err := c.v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	configDir, err := storage.DefaultDir()
	if err != nil {
		logger.Debug("No user config directory", "error", err)
	}
	c.paths.ConfigDir = configDir

	if err := c.readConfigFile(configDir); err != nil {
		return err
	}

	if !c.testMode {
		if configDir != "" {
			c.paths.ConfigEnvPath = filepath.Join(configDir, ".env")
			loaded, err := c.mergeDotEnv(c.paths.ConfigEnvPath)
			if err != nil {
				return fmt.Errorf("failed to load config .env: %w", err)
			}
			c.paths.ConfigEnvLoaded = loaded
		}

		if workDir, err := os.Getwd(); err == nil {
			c.paths.LocalEnvPath = filepath.Join(workDir, ".env")
			loaded, err := c.mergeDotEnv(c.paths.LocalEnvPath)
			if err != nil {
				return fmt.Errorf("failed to load local .env: %w", err)
			}
			c.paths.LocalEnvLoaded = loaded
		}
	}

	c.initialized = true
	logger.Debug("Configuration loaded", "provider", c.v.GetString(KeyProvider), "storage", c.v.GetString(KeyStorageBackend),
		"config_file", c.paths.ConfigFile, "local_env", c.paths.LocalEnvLoaded)
	return nil
}

// readConfigFile reads the explicit config file, or config.yaml from configDir when present.
func (c *ConfigurationService) readConfigFile(configDir string) error {
	switch {
	case c.configFile != "":
		c.v.SetConfigFile(c.configFile)
	case c.testMode || configDir == "":
		return nil
	default:
		c.v.SetConfigName("config")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(configDir)
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	c.paths.ConfigFile = c.v.ConfigFileUsed()
	return nil
}

// mergeDotEnv layers a .env file above the config file.
// Variables already set in the process environment are skipped so they keep priority.
func (c *ConfigurationService) mergeDotEnv(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read .env file %s: %w", path, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return false, fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}

	layer := make(map[string]interface{})
	for key := range configDefaults {
		for _, name := range envNames(key) {
			value, ok := envMap[name]
			if !ok || os.Getenv(name) != "" {
				continue
			}
			setNested(layer, key, value)
			break
		}
	}

	if len(layer) == 0 {
		return true, nil
	}
	if err := c.v.MergeConfigMap(layer); err != nil {
		return false, fmt.Errorf("failed to merge .env file %s: %w", path, err)
	}
	return true, nil
}

// GetAPIKey returns the API key configured for provider.
func (c *ConfigurationService) GetAPIKey(provider string) (string, error) {
	if !c.initialized {
		return "", fmt.Errorf("configuration service not initialized")
	}

	key := strings.ToLower(provider) + "_api_key"
	if _, known := apiKeyAliases[key]; !known {
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	value := strings.TrimSpace(c.v.GetString(key))
	if value == "" {
		return "", fmt.Errorf("API key not configured for provider %s (expected %s)", provider, strings.Join(envNames(key), " or "))
	}
	return value, nil
}

// GetConfigPaths reports which files contributed to the configuration.
func (c *ConfigurationService) GetConfigPaths() ConfigPaths {
	return c.paths
}

// AppConfig resolves the current configuration into typed values.
func (c *ConfigurationService) AppConfig() (AppConfig, error) {
	if !c.initialized {
		return AppConfig{}, fmt.Errorf("configuration service not initialized")
	}

	cfg := AppConfig{
		Provider:             strings.ToLower(strings.TrimSpace(c.v.GetString(KeyProvider))),
		Model:                strings.TrimSpace(c.v.GetString(KeyModel)),
		FrameworkTemperature: c.v.GetFloat64(KeyFrameworkTemperature),
		FollowUpTemperature:  c.v.GetFloat64(KeyFollowUpTemperature),
		Storage: storage.Config{
			Backend:    c.v.GetString(KeyStorageBackend),
			Dir:        c.v.GetString(KeyStorageDir),
			RedisURL:   c.v.GetString(KeyStorageRedisURL),
			SQLitePath: c.v.GetString(KeyStorageSQLitePath),
		},
		CodeTTL:        c.v.GetDuration(KeyAuthCodeTTL),
		SimulatedDelay: c.v.GetDuration(KeyAuthSimulatedDelay),
		HistoryLimit:   c.v.GetInt(KeyHistoryLimit),
		ServerAddr:     c.v.GetString(KeyServerAddr),
		Breaker: BreakerConfig{
			MaxRequests:      c.v.GetUint32(KeyBreakerMaxRequests),
			Interval:         c.v.GetDuration(KeyBreakerInterval),
			Timeout:          c.v.GetDuration(KeyBreakerTimeout),
			FailureThreshold: c.v.GetUint32(KeyBreakerFailures),
		},
		TestMode: c.testMode || c.v.GetBool(KeyTestMode),
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside a request.
func (cfg AppConfig) Validate() error {
	if cfg.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	for name, temp := range map[string]float64{
		KeyFrameworkTemperature: cfg.FrameworkTemperature,
		KeyFollowUpTemperature:  cfg.FollowUpTemperature,
	} {
		if temp < 0 || temp > 2 {
			return fmt.Errorf("%s must be between 0 and 2, got %v", name, temp)
		}
	}
	if cfg.HistoryLimit <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyHistoryLimit, cfg.HistoryLimit)
	}
	if cfg.CodeTTL <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyAuthCodeTTL, cfg.CodeTTL)
	}
	if cfg.SimulatedDelay < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyAuthSimulatedDelay, cfg.SimulatedDelay)
	}
	return nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func envNames(key string) []string {
	return append([]string{envName(key)}, apiKeyAliases[key]...)
}

func setNested(m map[string]interface{}, key string, value interface{}) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child, ok := m[part].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			m[part] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = value
}
