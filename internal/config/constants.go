package config

import "time"

// Application constants - all hardcoded values for the FSN analytics backend
const (
	// Application Info
	AppName     = "FSN Analytics"
	AppVersion  = "1.0.0"
	ServiceName = "fsn-analytics"

	// Dataset Source Types
	SourceLocal = "local"
	SourceHTTP  = "http"
	SourceDrive = "drive"

	// Server Defaults
	DefaultPort           = 8080
	DefaultRequestTimeout = 30 * time.Second

	// Rate Limiting
	DefaultRateLimitRPS   = 100.0
	DefaultRateLimitBurst = 50

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir     = "data"
	DefaultReportsDir  = "data/reports"
	DefaultCacheDir    = "data/cache"
	DefaultLogsDir     = "logs"
	DefaultDatasetFile = "data/umk_anak.xlsx"
	DefaultFeedbackDB  = "data/feedback.db"

	// Cache Settings
	DatasetCacheTTL = 15 * time.Minute

	// Feedback Settings
	FeedbackRatingMin       = 1
	FeedbackRatingMax       = 5
	DefaultMinKeywordLength = 3
	DefaultTopKeywords      = 10

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// API endpoint paths served by the web process
const (
	APIBasePath       = "/api"
	DatasetEndpoint   = "/api/dataset"
	FeedbackEndpoint  = "/api/feedback"
	HealthEndpoint    = "/api/health"
	VersionEndpoint   = "/api/version"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
