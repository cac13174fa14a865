package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Fanout handoff modes
const (
	FanoutModeLocal       = "local"
	FanoutModeEventBridge = "eventbridge"
)

// Storage backends
const (
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"
)

// Config holds all application configuration. It is built once at process
// start and passed to every client constructor.
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`
	LogLevel      string `yaml:"log_level"`

	// AWS configuration
	AWSRegion      string `yaml:"aws_region"`
	StorageBackend string `yaml:"storage_backend"`
	UsersTable     string `yaml:"users_table"`
	EventsTable    string `yaml:"events_table"`
	ResourcesTable string `yaml:"resources_table"`
	FanoutDLQTable string `yaml:"fanout_dlq_table"`
	EventBusName   string `yaml:"event_bus_name"`

	// Object storage
	S3Bucket           string        `yaml:"s3_bucket"`
	KnowledgeBucket    string        `yaml:"knowledge_bucket"`
	KnowledgeBucketURL string        `yaml:"knowledge_bucket_url"`
	PostNamespace      string        `yaml:"post_namespace"`
	KnowledgeNamespace string        `yaml:"knowledge_namespace"`
	SignedURLTTL       time.Duration `yaml:"signed_url_ttl"`
	MaxUploadBytes     int64         `yaml:"max_upload_bytes"`

	// Remote functions
	SearchUserFunction  string        `yaml:"search_user_function"`
	SearchEventFunction string        `yaml:"search_event_function"`
	UsageStatsFunction  string        `yaml:"usage_stats_function"`
	StatsCacheTTL       time.Duration `yaml:"stats_cache_ttl"`

	// Publish workflow
	FanoutMode            string        `yaml:"fanout_mode"`
	FanoutProfileSK       string        `yaml:"fanout_profile_sk"`
	PublishAuthorizeFirst bool          `yaml:"publish_authorize_first"`
	PublishStrict         bool          `yaml:"publish_strict"`
	FanoutConcurrency     int           `yaml:"fanout_concurrency"`
	DeadLetterRetention   time.Duration `yaml:"dead_letter_retention"`

	// Session
	JWTSecret     string `yaml:"jwt_secret"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	SessionCookie string `yaml:"session_cookie"`
	LoginPath     string `yaml:"login_path"`

	// Feature flags
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	EnableMetrics      bool     `yaml:"enable_metrics"`
	EnableTracing      bool     `yaml:"enable_tracing"`
	EnableXRay         bool     `yaml:"enable_xray"`
	OTLPEndpoint       string   `yaml:"otlp_endpoint"`
	MetricsNamespace   string   `yaml:"metrics_namespace"`
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables, in that order of priority.
// Outside production a local .env file is read first.
func LoadConfig() (*Config, error) {
	if getEnv("ENVIRONMENT", "development") != "production" {
		// a missing .env is not an error
		_ = godotenv.Load()
	}

	cfg := defaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerAddress:       ":8080",
		Environment:         "development",
		LogLevel:            "info",
		AWSRegion:           "eu-west-1",
		StorageBackend:      StorageDynamoDB,
		UsersTable:          "trustie-users",
		EventsTable:         "trustie-events",
		ResourcesTable:      "trustie-resources",
		FanoutDLQTable:      "trustie-fanout-dlq",
		EventBusName:        "trustie-events",
		PostNamespace:       "eu-west-1:admin",
		KnowledgeNamespace:  "eu-west-1:knowledge",
		SignedURLTTL:        time.Hour,
		MaxUploadBytes:      10 << 20,
		FanoutMode:          FanoutModeLocal,
		FanoutProfileSK:     "profile_basic",
		FanoutConcurrency:   4,
		DeadLetterRetention: 14 * 24 * time.Hour,
		StatsCacheTTL:       time.Minute,
		JWTIssuer:           "trustie-admin",
		SessionCookie:       "trustie_session",
		LoginPath:           "/login",
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
		MetricsNamespace:    "TrustieAdmin",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.ServerAddress = ":" + port
	}
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.UsersTable = getEnv("USERS_TABLE", c.UsersTable)
	c.EventsTable = getEnv("EVENTS_TABLE", c.EventsTable)
	c.ResourcesTable = getEnv("RESOURCES_TABLE", c.ResourcesTable)
	c.FanoutDLQTable = getEnv("FANOUT_DLQ_TABLE", c.FanoutDLQTable)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.KnowledgeBucket = getEnv("S3_BUCKET_KNOWLEDGE", c.KnowledgeBucket)
	c.KnowledgeBucketURL = strings.TrimSuffix(getEnv("S3_BUCKET_KNOWLEDGE_URL", c.KnowledgeBucketURL), "/")
	c.PostNamespace = getEnv("POST_NAMESPACE", c.PostNamespace)
	c.KnowledgeNamespace = getEnv("KNOWLEDGE_NAMESPACE", c.KnowledgeNamespace)
	c.SignedURLTTL = getEnvDuration("SIGNED_URL_TTL", c.SignedURLTTL)
	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))

	c.SearchUserFunction = getEnv("SEARCH_USER_FUNCTION", c.SearchUserFunction)
	c.SearchEventFunction = getEnv("SEARCH_EVENT_FUNCTION", c.SearchEventFunction)
	c.UsageStatsFunction = getEnv("USAGE_STATS_FUNCTION", c.UsageStatsFunction)
	c.StatsCacheTTL = getEnvDuration("STATS_CACHE_TTL", c.StatsCacheTTL)

	c.FanoutMode = getEnv("FANOUT_MODE", c.FanoutMode)
	c.FanoutProfileSK = getEnv("FANOUT_PROFILE_SK", c.FanoutProfileSK)
	c.PublishAuthorizeFirst = getEnvBool("PUBLISH_AUTHORIZE_FIRST", c.PublishAuthorizeFirst)
	c.PublishStrict = getEnvBool("PUBLISH_STRICT", c.PublishStrict)
	c.FanoutConcurrency = getEnvInt("FANOUT_CONCURRENCY", c.FanoutConcurrency)
	c.DeadLetterRetention = getEnvDuration("DEAD_LETTER_RETENTION", c.DeadLetterRetention)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.SessionCookie = getEnv("SESSION_COOKIE", c.SessionCookie)
	c.LoginPath = getEnv("LOGIN_PATH", c.LoginPath)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORSAllowedOrigins = splitList(origins)
	}
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableXRay = getEnvBool("ENABLE_XRAY", c.EnableXRay)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.FanoutMode {
	case FanoutModeLocal, FanoutModeEventBridge:
	default:
		return fmt.Errorf("FANOUT_MODE must be %q or %q, got %q", FanoutModeLocal, FanoutModeEventBridge, c.FanoutMode)
	}
	switch c.StorageBackend {
	case StorageDynamoDB, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageDynamoDB, StorageMemory, c.StorageBackend)
	}
	if c.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL must be positive")
	}
	if c.PublishStrict && !c.PublishAuthorizeFirst {
		return fmt.Errorf("PUBLISH_STRICT requires PUBLISH_AUTHORIZE_FIRST")
	}

	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StorageBackend == StorageMemory {
			return fmt.Errorf("the memory storage backend is not allowed in production")
		}
		if c.S3Bucket == "" || c.KnowledgeBucket == "" {
			return fmt.Errorf("S3_BUCKET and S3_BUCKET_KNOWLEDGE are required in production")
		}
		if c.FanoutMode == FanoutModeEventBridge && c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required for eventbridge fanout")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or a plain number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
