package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
//
// Environment names are derived from the field names under the FSN prefix
// (split_words, no explicit envconfig tags): an explicit tag doubles as an
// unprefixed alternate name, which would let ambient variables like PATH
// leak into the configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Dataset       DatasetConfig       `yaml:"dataset"`
	Feedback      FeedbackConfig      `yaml:"feedback"`
	Security      SecurityConfig      `yaml:"security"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
	Paths         PathsConfig         `yaml:"paths"`
	WebSocket     WebSocketConfig     `yaml:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" split_words:"true" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true" validate:"gt=0"`
}

// DatasetConfig describes where the raw dataset comes from and how the
// cleaning pipeline labels missing data.
type DatasetConfig struct {
	// Source selects the acquisition strategy.
	Source string `yaml:"source" validate:"oneof=local http drive"`
	// Path is the workbook or CSV location for the local source. Relative
	// paths resolve against the executable directory.
	Path string `yaml:"path" validate:"required_if=Source local"`
	// URL is the download location for the http source.
	URL string `yaml:"url" validate:"required_if=Source http,omitempty,url"`
	// DriveFileID and DriveAPIKey select a Google Drive file for the drive source.
	DriveFileID string `yaml:"drive_file_id" split_words:"true" validate:"required_if=Source drive"`
	DriveAPIKey string `yaml:"drive_api_key" split_words:"true"`
	// SheetName is the preferred worksheet; empty lets the loader scan.
	SheetName string `yaml:"sheet_name" split_words:"true"`

	// MissingTokens are the input values treated as "no data".
	MissingTokens []string `yaml:"missing_tokens" split_words:"true"`
	// CurrencyPrefix is stripped from salary text before parsing.
	CurrencyPrefix string `yaml:"currency_prefix" split_words:"true"`
	// Sentinel labels written into cleaned records for missing fields.
	TextSentinel  string `yaml:"text_sentinel" split_words:"true"`
	IncomeFill    string `yaml:"income_fill" split_words:"true"`
	NutritionFill string `yaml:"nutrition_fill" split_words:"true"`

	// CacheTTL bounds how long a cleaned snapshot is served before reload.
	CacheTTL time.Duration `yaml:"cache_ttl" split_words:"true" validate:"gt=0"`
	// RefreshCron schedules background reloads; empty disables them.
	RefreshCron string `yaml:"refresh_cron" split_words:"true"`
}

// FeedbackConfig contains the usability-feedback settings
type FeedbackConfig struct {
	// DBPath is the sqlite file; relative paths resolve against the
	// executable directory.
	DBPath string `yaml:"db_path" split_words:"true" validate:"required"`
	// AdminPasswordHash is the bcrypt hash guarding the admin endpoints.
	// Empty leaves them locked.
	AdminPasswordHash string `yaml:"admin_password_hash" split_words:"true"`
	// Keyword aggregation settings.
	Stopwords        []string `yaml:"stopwords"`
	MinKeywordLength int      `yaml:"min_keyword_length" split_words:"true" validate:"gt=0"`
	TopKeywords      int      `yaml:"top_keywords" split_words:"true" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" split_words:"true" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" split_words:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps" validate:"omitempty,gt=0"`
	Burst   int     `yaml:"burst" validate:"omitempty,gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" validate:"oneof=json text"`
	Output      string `yaml:"output" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" split_words:"true"`
	Development bool   `yaml:"development"`
}

// ObservabilityConfig contains OpenTelemetry configuration
type ObservabilityConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" split_words:"true" validate:"required"`
	// Debug additionally writes spans to stdout.
	Debug bool `yaml:"debug"`
}

// PathsConfig carries optional overrides for the standard executable-relative
// layout. Empty fields fall back to the centralized Paths resolution.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" split_words:"true"`
	DataDir       string `yaml:"data_dir" split_words:"true"`
	ReportsDir    string `yaml:"reports_dir" split_words:"true"`
	CacheDir      string `yaml:"cache_dir" split_words:"true"`
	LogsDir       string `yaml:"logs_dir" split_words:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" split_words:"true" validate:"gt=0"`
	WriteBufferSize int           `yaml:"write_buffer_size" split_words:"true" validate:"gt=0"`
	PingPeriod      time.Duration `yaml:"ping_period" split_words:"true" validate:"gt=0"`
	PongWait        time.Duration `yaml:"pong_wait" split_words:"true" validate:"gt=0"`
}

var validate = validator.New()

// Load loads configuration with precedence: environment variables over config
// file over built-in defaults. The config file is searched in the standard
// locations; use LoadFrom to name one explicitly.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration using an explicit config file path. An empty
// path skips the file layer and uses defaults plus environment variables.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables override file values. Defaults are applied by
	// Default() rather than envconfig tags so the file layer survives them.
	if err := envconfig.Process("FSN", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Resolve relative paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validateConfig(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile merges a YAML file into cfg. Keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	return nil
}

// resolvePaths pins the executable directory and absolutizes the dataset,
// feedback, and log locations so the serving processes agree on them no
// matter the working directory.
func (c *Config) resolvePaths() error {
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	if c.Paths.ExecutableDir == "" {
		c.Paths.ExecutableDir = paths.ExecutableDir
	}

	if c.Dataset.Source == SourceLocal && c.Dataset.Path == "" {
		c.Dataset.Path = paths.DatasetFile
	}
	c.Dataset.Path = c.absolutize(c.Dataset.Path)

	if c.Feedback.DBPath == "" {
		c.Feedback.DBPath = paths.FeedbackDB
	}
	c.Feedback.DBPath = c.absolutize(c.Feedback.DBPath)

	c.Logging.FilePath = c.absolutize(c.Logging.FilePath)

	return nil
}

// absolutize resolves a relative path against the executable directory.
func (c *Config) absolutize(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Paths.ExecutableDir, path)
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	return c.resolveDir(c.Paths.DataDir, func(p *Paths) string { return p.DataDir })
}

// GetReportsDir returns the resolved reports directory path
func (c *Config) GetReportsDir() string {
	return c.resolveDir(c.Paths.ReportsDir, func(p *Paths) string { return p.ReportsDir })
}

// GetCacheDir returns the resolved cache directory path
func (c *Config) GetCacheDir() string {
	return c.resolveDir(c.Paths.CacheDir, func(p *Paths) string { return p.CacheDir })
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	return c.resolveDir(c.Paths.LogsDir, func(p *Paths) string { return p.LogsDir })
}

// resolveDir prefers the configured override, falling back to the centralized
// executable-relative layout.
func (c *Config) resolveDir(override string, pick func(*Paths) string) string {
	if override != "" {
		return c.absolutize(override)
	}
	paths, err := GetPaths()
	if err != nil {
		return override
	}
	return pick(paths)
}

// validateConfig validates the configuration
func (c *Config) validateConfig() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	// Cross-field checks the struct tags cannot express.
	if c.WebSocket.PongWait <= c.WebSocket.PingPeriod {
		return fmt.Errorf("websocket pong wait (%s) must exceed ping period (%s)",
			c.WebSocket.PongWait, c.WebSocket.PingPeriod)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Dataset: DatasetConfig{
			// Tokens, currency prefix, and sentinel labels default inside
			// the cleaning pipeline; empty here means "pipeline defaults".
			Source:   SourceLocal,
			CacheTTL: DatasetCacheTTL,
		},
		Feedback: FeedbackConfig{
			DBPath:           DefaultFeedbackDB,
			MinKeywordLength: DefaultMinKeywordLength,
			TopKeywords:      DefaultTopKeywords,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    "logs/web.log",
			Development: false,
		},
		Observability: ObservabilityConfig{
			Enabled:     true,
			ServiceName: ServiceName,
			Debug:       false,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  WebSocketReadBufferSize,
			WriteBufferSize: WebSocketWriteBufferSize,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
	}
}
