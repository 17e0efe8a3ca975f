package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fsnEnvVars lists every FSN_* variable the tests touch so each case starts
// from a clean environment.
var fsnEnvVars = []string{
	"FSN_SERVER_PORT", "FSN_SERVER_READ_TIMEOUT", "FSN_SERVER_WRITE_TIMEOUT",
	"FSN_SERVER_REQUEST_TIMEOUT",
	"FSN_DATASET_SOURCE", "FSN_DATASET_PATH", "FSN_DATASET_URL",
	"FSN_DATASET_DRIVE_FILE_ID", "FSN_DATASET_DRIVE_API_KEY",
	"FSN_DATASET_SHEET_NAME", "FSN_DATASET_MISSING_TOKENS",
	"FSN_DATASET_CURRENCY_PREFIX", "FSN_DATASET_CACHE_TTL", "FSN_DATASET_REFRESH_CRON",
	"FSN_FEEDBACK_DB_PATH", "FSN_FEEDBACK_ADMIN_PASSWORD_HASH",
	"FSN_FEEDBACK_STOPWORDS", "FSN_FEEDBACK_MIN_KEYWORD_LENGTH", "FSN_FEEDBACK_TOP_KEYWORDS",
	"FSN_SECURITY_ALLOWED_ORIGINS", "FSN_SECURITY_ENABLE_CORS",
	"FSN_SECURITY_RATE_LIMIT_ENABLED", "FSN_SECURITY_RATE_LIMIT_RPS", "FSN_SECURITY_RATE_LIMIT_BURST",
	"FSN_LOGGING_LEVEL", "FSN_LOGGING_FORMAT", "FSN_LOGGING_OUTPUT", "FSN_LOGGING_FILE_PATH",
	"FSN_OBSERVABILITY_ENABLED", "FSN_OBSERVABILITY_SERVICE_NAME",
	"FSN_WEBSOCKET_READ_BUFFER_SIZE", "FSN_WEBSOCKET_WRITE_BUFFER_SIZE",
	"FSN_WEBSOCKET_PING_PERIOD", "FSN_WEBSOCKET_PONG_WAIT",
}

// cleanEnv unsets all FSN_* variables and restores them when the test ends.
func cleanEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string)
	for _, envVar := range fsnEnvVars {
		original[envVar] = os.Getenv(envVar)
		os.Unsetenv(envVar)
	}
	t.Cleanup(func() {
		for envVar, val := range original {
			if val != "" {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	})
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func()
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				// Verify default values
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)

				assert.Equal(t, SourceLocal, cfg.Dataset.Source)
				assert.True(t, filepath.IsAbs(cfg.Dataset.Path))
				assert.Equal(t, "umk_anak.xlsx", filepath.Base(cfg.Dataset.Path))
				assert.Empty(t, cfg.Dataset.MissingTokens) // pipeline defaults
				assert.Empty(t, cfg.Dataset.CurrencyPrefix)
				assert.Equal(t, 15*time.Minute, cfg.Dataset.CacheTTL)
				assert.Empty(t, cfg.Dataset.RefreshCron)

				assert.True(t, filepath.IsAbs(cfg.Feedback.DBPath))
				assert.Equal(t, "feedback.db", filepath.Base(cfg.Feedback.DBPath))
				assert.Empty(t, cfg.Feedback.AdminPasswordHash)
				assert.Equal(t, 3, cfg.Feedback.MinKeywordLength)
				assert.Equal(t, 10, cfg.Feedback.TopKeywords)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.EnableCORS)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "web.log", filepath.Base(cfg.Logging.FilePath))

				assert.True(t, cfg.Observability.Enabled)
				assert.Equal(t, "fsn-analytics", cfg.Observability.ServiceName)

				assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
				assert.Equal(t, 1024, cfg.WebSocket.WriteBufferSize)
				assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
				assert.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
			},
		},
		{
			name: "custom environment variables",
			setupEnv: func() {
				os.Setenv("FSN_SERVER_PORT", "9090")
				os.Setenv("FSN_SERVER_READ_TIMEOUT", "30s")
				os.Setenv("FSN_SECURITY_ALLOWED_ORIGINS", "http://example.com,https://example.com")
				os.Setenv("FSN_SECURITY_ENABLE_CORS", "false")
				os.Setenv("FSN_LOGGING_LEVEL", "debug")
				os.Setenv("FSN_FEEDBACK_TOP_KEYWORDS", "5")
				os.Setenv("FSN_DATASET_CACHE_TTL", "5m")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.False(t, cfg.Security.EnableCORS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 5, cfg.Feedback.TopKeywords)
				assert.Equal(t, 5*time.Minute, cfg.Dataset.CacheTTL)
			},
		},
		{
			name: "http source from environment",
			setupEnv: func() {
				os.Setenv("FSN_DATASET_SOURCE", "http")
				os.Setenv("FSN_DATASET_URL", "https://example.com/umk_anak.xlsx")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, SourceHTTP, cfg.Dataset.Source)
				assert.Equal(t, "https://example.com/umk_anak.xlsx", cfg.Dataset.URL)
				assert.Empty(t, cfg.Dataset.Path)
			},
		},
		{
			name: "drive source from environment",
			setupEnv: func() {
				os.Setenv("FSN_DATASET_SOURCE", "drive")
				os.Setenv("FSN_DATASET_DRIVE_FILE_ID", "1aBcD_eFgHiJ")
				os.Setenv("FSN_DATASET_DRIVE_API_KEY", "test-key")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, SourceDrive, cfg.Dataset.Source)
				assert.Equal(t, "1aBcD_eFgHiJ", cfg.Dataset.DriveFileID)
				assert.Equal(t, "test-key", cfg.Dataset.DriveAPIKey)
			},
		},
		{
			name: "invalid port number",
			setupEnv: func() {
				os.Setenv("FSN_SERVER_PORT", "99999")
			},
			wantErr: true,
		},
		{
			name: "zero port number",
			setupEnv: func() {
				os.Setenv("FSN_SERVER_PORT", "0")
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			setupEnv: func() {
				os.Setenv("FSN_SERVER_READ_TIMEOUT", "-5s")
			},
			wantErr: true,
		},
		{
			name: "empty allowed origins",
			setupEnv: func() {
				os.Setenv("FSN_SECURITY_ALLOWED_ORIGINS", "")
			},
			wantErr: true,
		},
		{
			name: "unknown dataset source",
			setupEnv: func() {
				os.Setenv("FSN_DATASET_SOURCE", "ftp")
			},
			wantErr: true,
		},
		{
			name: "http source without url",
			setupEnv: func() {
				os.Setenv("FSN_DATASET_SOURCE", "http")
			},
			wantErr: true,
		},
		{
			name: "drive source without file id",
			setupEnv: func() {
				os.Setenv("FSN_DATASET_SOURCE", "drive")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			setupEnv: func() {
				os.Setenv("FSN_LOGGING_LEVEL", "verbose")
			},
			wantErr: true,
		},
		{
			name: "pong wait shorter than ping period",
			setupEnv: func() {
				os.Setenv("FSN_WEBSOCKET_PONG_WAIT", "10s")
			},
			wantErr: true,
		},
		{
			name: "file output without file path",
			setupEnv: func() {
				os.Setenv("FSN_LOGGING_FILE_PATH", "")
			},
			wantErr: true,
		},
		{
			name: "malformed duration",
			setupEnv: func() {
				os.Setenv("FSN_SERVER_READ_TIMEOUT", "notaduration")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)

			if tt.setupEnv != nil {
				tt.setupEnv()
			}

			cfg, err := LoadFrom("")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

// TestLoadFrom tests loading with an explicit config file
func TestLoadFrom(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
		return configFile
	}

	t.Run("file values override defaults", func(t *testing.T) {
		cleanEnv(t)
		configFile := writeConfig(t, `
server:
  port: 6060
  read_timeout: 20s
logging:
  level: error
dataset:
  sheet_name: "Data Anak"
  currency_prefix: "RM"
  missing_tokens:
    - "invalid data"
    - "-"
`)

		cfg, err := LoadFrom(configFile)
		require.NoError(t, err)

		assert.Equal(t, 6060, cfg.Server.Port)
		assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
		// Keys absent from the file keep their defaults
		assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, "error", cfg.Logging.Level)
		assert.Equal(t, "Data Anak", cfg.Dataset.SheetName)
		assert.Equal(t, "RM", cfg.Dataset.CurrencyPrefix)
		assert.Equal(t, []string{"invalid data", "-"}, cfg.Dataset.MissingTokens)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		cleanEnv(t)
		os.Setenv("FSN_SERVER_PORT", "7070")

		configFile := writeConfig(t, `
server:
  port: 6060
logging:
  level: warn
`)

		cfg, err := LoadFrom(configFile)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)     // from env
		assert.Equal(t, "warn", cfg.Logging.Level) // from file
	})

	t.Run("ambient variables without the FSN prefix are ignored", func(t *testing.T) {
		cleanEnv(t)
		// PATH is always present in a real environment; single-word names
		// like LEVEL could collide with unrelated tooling. Only FSN_*
		// variables may bind.
		t.Setenv("PATH", "/usr/local/bin:/usr/bin")
		t.Setenv("LEVEL", "debug")
		t.Setenv("URL", "https://unrelated.example.com")

		configFile := writeConfig(t, `
dataset:
  path: data/umk_anak.xlsx
logging:
  level: warn
`)

		cfg, err := LoadFrom(configFile)
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(cfg.Dataset.Path, filepath.Join("data", "umk_anak.xlsx")),
			"dataset path %q must come from the file, not $PATH", cfg.Dataset.Path)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Empty(t, cfg.Dataset.URL)

		t.Setenv("FSN_DATASET_PATH", "/srv/fsn/umk_anak.xlsx")
		cfg, err = LoadFrom(configFile)
		require.NoError(t, err)
		assert.Equal(t, "/srv/fsn/umk_anak.xlsx", cfg.Dataset.Path)
	})

	t.Run("feedback section from file", func(t *testing.T) {
		cleanEnv(t)
		configFile := writeConfig(t, `
feedback:
  admin_password_hash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
  stopwords: ["app", "the"]
  min_keyword_length: 4
  top_keywords: 15
`)

		cfg, err := LoadFrom(configFile)
		require.NoError(t, err)

		assert.NotEmpty(t, cfg.Feedback.AdminPasswordHash)
		assert.Equal(t, []string{"app", "the"}, cfg.Feedback.Stopwords)
		assert.Equal(t, 4, cfg.Feedback.MinKeywordLength)
		assert.Equal(t, 15, cfg.Feedback.TopKeywords)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		cleanEnv(t)
		configFile := writeConfig(t, `
server:
  port: [not a number
`)

		_, err := LoadFrom(configFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config from file")
	})

	t.Run("non-existent file", func(t *testing.T) {
		cleanEnv(t)
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid file values fail validation", func(t *testing.T) {
		cleanEnv(t)
		configFile := writeConfig(t, `
dataset:
  source: carrier-pigeon
`)

		_, err := LoadFrom(configFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config validation failed")
	})
}

// TestValidateConfig exercises validation directly
func TestValidateConfig(t *testing.T) {
	// resolved returns a default config as it looks after path resolution.
	resolved := func() *Config {
		cfg := Default()
		cfg.Dataset.Path = "/srv/fsn/data/umk_anak.xlsx"
		cfg.Feedback.DBPath = "/srv/fsn/data/feedback.db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid configuration",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "port too large",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "local source without path",
			mutate:  func(cfg *Config) { cfg.Dataset.Path = "" },
			wantErr: "Path",
		},
		{
			name: "http source with invalid url",
			mutate: func(cfg *Config) {
				cfg.Dataset.Source = SourceHTTP
				cfg.Dataset.URL = "not a url"
			},
			wantErr: "URL",
		},
		{
			name:    "invalid logging format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "Format",
		},
		{
			name:    "zero cache ttl",
			mutate:  func(cfg *Config) { cfg.Dataset.CacheTTL = 0 },
			wantErr: "CacheTTL",
		},
		{
			name:    "zero top keywords",
			mutate:  func(cfg *Config) { cfg.Feedback.TopKeywords = 0 },
			wantErr: "TopKeywords",
		},
		{
			name:    "empty service name",
			mutate:  func(cfg *Config) { cfg.Observability.ServiceName = "" },
			wantErr: "ServiceName",
		},
		{
			name: "pong wait equals ping period",
			mutate: func(cfg *Config) {
				cfg.WebSocket.PingPeriod = 30 * time.Second
				cfg.WebSocket.PongWait = 30 * time.Second
			},
			wantErr: "pong wait",
		},
		{
			name: "console output allows empty file path",
			mutate: func(cfg *Config) {
				cfg.Logging.Output = "console"
				cfg.Logging.FilePath = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := resolved()
			tt.mutate(cfg)

			err := cfg.validateConfig()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestDefault verifies the built-in defaults before path resolution
func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, SourceLocal, cfg.Dataset.Source)
	assert.Empty(t, cfg.Dataset.Path, "path is resolved at load time")
	assert.Nil(t, cfg.Dataset.MissingTokens, "empty means pipeline defaults")
	assert.Equal(t, DatasetCacheTTL, cfg.Dataset.CacheTTL)
	assert.Equal(t, DefaultFeedbackDB, cfg.Feedback.DBPath)
	assert.Equal(t, DefaultMinKeywordLength, cfg.Feedback.MinKeywordLength)
	assert.Equal(t, DefaultTopKeywords, cfg.Feedback.TopKeywords)
	assert.Equal(t, DefaultRateLimitRPS, cfg.Security.RateLimit.RPS)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, WebSocketPingPeriod, cfg.WebSocket.PingPeriod)
	assert.Equal(t, WebSocketPongWait, cfg.WebSocket.PongWait)
}

// TestGetConfigFilePath tests config file discovery
func TestGetConfigFilePath(t *testing.T) {
	chdir := func(t *testing.T, dir string) {
		t.Helper()
		originalDir, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { os.Chdir(originalDir) })
	}

	t.Run("no config file exists", func(t *testing.T) {
		chdir(t, t.TempDir())
		assert.Equal(t, "", getConfigFilePath())
	})

	t.Run("config file in current directory", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte("server:\n  port: 8080\n"), 0644))
		chdir(t, tempDir)

		assert.Equal(t, "config.yaml", getConfigFilePath())
	})

	t.Run("config file in configs directory", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "configs"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "configs", "config.yaml"), []byte("server:\n  port: 8080\n"), 0644))
		chdir(t, tempDir)

		assert.Equal(t, filepath.Join("configs", "config.yaml"), getConfigFilePath())
	})
}

// TestEnvironmentVariableParsing tests envconfig type handling
func TestEnvironmentVariableParsing(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		check    func(*testing.T, *Config)
	}{
		{
			name:     "duration parsing",
			envVar:   "FSN_DATASET_CACHE_TTL",
			envValue: "90s",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 90*time.Second, cfg.Dataset.CacheTTL)
			},
		},
		{
			name:     "bool parsing",
			envVar:   "FSN_SECURITY_RATE_LIMIT_ENABLED",
			envValue: "false",
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Security.RateLimit.Enabled)
			},
		},
		{
			name:     "float parsing",
			envVar:   "FSN_SECURITY_RATE_LIMIT_RPS",
			envValue: "25.5",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 25.5, cfg.Security.RateLimit.RPS)
			},
		},
		{
			name:     "string slice parsing",
			envVar:   "FSN_FEEDBACK_STOPWORDS",
			envValue: "the,and,app",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"the", "and", "app"}, cfg.Feedback.Stopwords)
			},
		},
		{
			name:     "cron expression passthrough",
			envVar:   "FSN_DATASET_REFRESH_CRON",
			envValue: "0 3 * * *",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0 3 * * *", cfg.Dataset.RefreshCron)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			os.Setenv(tt.envVar, tt.envValue)

			cfg, err := LoadFrom("")
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

// TestLoadFullFlow tests the complete load flow with file plus environment
func TestLoadFullFlow(t *testing.T) {
	cleanEnv(t)
	os.Setenv("FSN_SERVER_PORT", "9191")
	os.Setenv("FSN_DATASET_SHEET_NAME", "Sheet2")

	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")
	configContent := `
server:
  port: 6060
  idle_timeout: 90s
dataset:
  path: ` + filepath.ToSlash(filepath.Join(tempDir, "umk_anak.xlsx")) + `
  cache_ttl: 10m
security:
  allowed_origins:
    - "http://dashboard.local"
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)

	// env > file > defaults
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "Sheet2", cfg.Dataset.SheetName)
	assert.Equal(t, 90*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Dataset.CacheTTL)
	assert.Equal(t, []string{"http://dashboard.local"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)

	// absolute file path preserved by resolution
	assert.True(t, strings.HasSuffix(filepath.ToSlash(cfg.Dataset.Path), "umk_anak.xlsx"))
	assert.True(t, filepath.IsAbs(cfg.Dataset.Path))
}
