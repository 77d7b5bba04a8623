package services

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examprep/internal/storage"
	"examprep/internal/testutils"
)

// clearProviderEnv blanks every API key variable so the host environment cannot leak in.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for key := range apiKeyAliases {
		for _, name := range envNames(key) {
			t.Setenv(name, "")
		}
	}
	t.Setenv("EXAMPREP_PROVIDER", "")
	t.Setenv("EXAMPREP_STORAGE_BACKEND", "")
}

func newTestConfiguration(t *testing.T, configFile string) *ConfigurationService {
	t.Helper()
	service := NewConfigurationService(viper.New(), configFile, true)
	require.NoError(t, service.Initialize())
	return service
}

func TestConfigurationService_Name(t *testing.T) {
	assert.Equal(t, "configuration", NewConfigurationService(nil, "", true).Name())
}

func TestConfigurationService_RequiresInitialize(t *testing.T) {
	service := NewConfigurationService(nil, "", true)

	_, err := service.AppConfig()
	assert.EqualError(t, err, "configuration service not initialized")
	_, err = service.GetAPIKey("gemini")
	assert.Error(t, err)
}

func TestConfigurationService_Defaults(t *testing.T) {
	clearProviderEnv(t)
	service := newTestConfiguration(t, "")

	cfg, err := service.AppConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Empty(t, cfg.Model)
	assert.Equal(t, 0.2, cfg.FrameworkTemperature)
	assert.Equal(t, 0.3, cfg.FollowUpTemperature)
	assert.Equal(t, storage.BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 10*time.Minute, cfg.CodeTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.SimulatedDelay)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.True(t, cfg.TestMode)
}

func TestConfigurationService_ConfigurationPriority(t *testing.T) {
	clearProviderEnv(t)
	configFile := testutils.CreateTempFile(t, "config.yaml", `
provider: openai
history:
  limit: 10
storage:
  backend: sqlite
  sqlite_path: /tmp/examprep-test.db
`)

	t.Run("config file over defaults", func(t *testing.T) {
		service := newTestConfiguration(t, configFile)
		cfg, err := service.AppConfig()
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, 10, cfg.HistoryLimit)
		assert.Equal(t, storage.BackendSQLite, cfg.Storage.Backend)
		assert.Equal(t, "/tmp/examprep-test.db", cfg.Storage.SQLitePath)
		assert.Equal(t, configFile, service.GetConfigPaths().ConfigFile)
	})

	t.Run("environment over config file", func(t *testing.T) {
		t.Setenv("EXAMPREP_PROVIDER", "anthropic")
		t.Setenv("EXAMPREP_STORAGE_BACKEND", "memory")
		cfg, err := newTestConfiguration(t, configFile).AppConfig()
		require.NoError(t, err)
		assert.Equal(t, "anthropic", cfg.Provider)
		assert.Equal(t, storage.BackendMemory, cfg.Storage.Backend)
	})

	t.Run("explicit set over everything", func(t *testing.T) {
		t.Setenv("EXAMPREP_PROVIDER", "anthropic")
		v := viper.New()
		v.Set(KeyProvider, "gemini")
		service := NewConfigurationService(v, configFile, true)
		require.NoError(t, service.Initialize())
		cfg, err := service.AppConfig()
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.Provider)
	})
}

func TestConfigurationService_MissingConfigFile(t *testing.T) {
	clearProviderEnv(t)
	service := NewConfigurationService(viper.New(), t.TempDir()+"/absent.yaml", true)

	err := service.Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfigurationService_GetAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		provider string
		expected string
		wantErr  string
	}{
		{
			name:     "prefixed variable",
			env:      map[string]string{"EXAMPREP_GEMINI_API_KEY": "prefixed"},
			provider: "gemini",
			expected: "prefixed",
		},
		{
			name:     "prefixed wins over alias",
			env:      map[string]string{"EXAMPREP_GEMINI_API_KEY": "prefixed", "GEMINI_API_KEY": "alias"},
			provider: "gemini",
			expected: "prefixed",
		},
		{
			name:     "google alias",
			env:      map[string]string{"GOOGLE_API_KEY": "google"},
			provider: "gemini",
			expected: "google",
		},
		{
			name:     "generic API_KEY alias",
			env:      map[string]string{"API_KEY": "generic"},
			provider: "Gemini",
			expected: "generic",
		},
		{
			name:     "openai key",
			env:      map[string]string{"OPENAI_API_KEY": "sk-test"},
			provider: "openai",
			expected: "sk-test",
		},
		{
			name:     "missing key names the variables",
			provider: "anthropic",
			wantErr:  "EXAMPREP_ANTHROPIC_API_KEY or ANTHROPIC_API_KEY",
		},
		{
			name:     "unsupported provider",
			provider: "mistral",
			wantErr:  "unsupported provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			key, err := newTestConfiguration(t, "").GetAPIKey(tt.provider)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestConfigurationService_MergeDotEnv(t *testing.T) {
	clearProviderEnv(t)
	service := newTestConfiguration(t, "")

	envFile := testutils.CreateTempFile(t, ".env", "GEMINI_API_KEY=from-dotenv\nEXAMPREP_HISTORY_LIMIT=7\nUNRELATED=1\n")
	loaded, err := service.mergeDotEnv(envFile)
	require.NoError(t, err)
	assert.True(t, loaded)

	key, err := service.GetAPIKey("gemini")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", key)

	cfg, err := service.AppConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.HistoryLimit)

	loaded, err = service.mergeDotEnv(t.TempDir() + "/.env")
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestConfigurationService_DotEnvNeverOverridesEnvironment(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "from-environment")
	service := newTestConfiguration(t, "")

	envFile := testutils.CreateTempFile(t, ".env", "GEMINI_API_KEY=from-dotenv\n")
	_, err := service.mergeDotEnv(envFile)
	require.NoError(t, err)

	key, err := service.GetAPIKey("gemini")
	require.NoError(t, err)
	assert.Equal(t, "from-environment", key)
}

func TestAppConfig_Validate(t *testing.T) {
	valid := AppConfig{
		Provider:             "gemini",
		FrameworkTemperature: 0.2,
		FollowUpTemperature:  0.3,
		CodeTTL:              time.Minute,
		HistoryLimit:         50,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"empty provider", func(c *AppConfig) { c.Provider = "" }, "provider must not be empty"},
		{"temperature too high", func(c *AppConfig) { c.FrameworkTemperature = 2.5 }, KeyFrameworkTemperature},
		{"negative temperature", func(c *AppConfig) { c.FollowUpTemperature = -1 }, KeyFollowUpTemperature},
		{"zero history", func(c *AppConfig) { c.HistoryLimit = 0 }, KeyHistoryLimit},
		{"zero code ttl", func(c *AppConfig) { c.CodeTTL = 0 }, KeyAuthCodeTTL},
		{"negative delay", func(c *AppConfig) { c.SimulatedDelay = -time.Second }, KeyAuthSimulatedDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
