package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Gemini        GeminiConfig
	ConnStore     ConnStoreConfig
	QueryExecutor QueryExecutorConfig
	Audit         AuditConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
	SchemaRefresh SchemaRefreshConfig
}

type ServerConfig struct {
	Port string
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	Accounts    []string // "username:password:sector:role" entries
}

type GeminiConfig struct {
	APIKey  string
	ModelID string
	BaseURL string
	Timeout time.Duration
}

type ConnStoreConfig struct {
	FilePath string
}

type QueryExecutorConfig struct {
	MaxConns     int32
	QueryTimeout time.Duration
	MaxRows      int
}

type AuditConfig struct {
	Enabled   bool
	BatchSize int
	MaxWait   time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	ConsumerGroup string
}

type ElasticsearchConfig struct {
	Addresses     []string
	AuditIndex    string
	BulkWorkers   int           // Number of concurrent goroutines for bulk indexing
	FlushBytes    int           // Flush threshold for bulk indexer
	FlushInterval time.Duration // Flush interval for bulk indexer
}

type SchemaRefreshConfig struct {
	Enabled  bool
	Schedule string
}

func NewConfig() (*Config, error) {
	// Configure Viper to read .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// Enable automatic environment variable loading
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("JWT_SECRET", "your-super-secret-jwt-key-change-in-production")
	viper.SetDefault("JWT_TOKEN_EXPIRY", "1h")
	viper.SetDefault("ADMIN_ACCOUNTS", "admin@bank:bank123:bank:admin,admin@ithr:ithr123:ithr:admin")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash-latest")
	viper.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	viper.SetDefault("GEMINI_TIMEOUT", "60s")
	viper.SetDefault("CONNECTIONS_FILE_PATH", "./config/database.json")
	viper.SetDefault("QUERY_MAX_CONNS", 5)
	viper.SetDefault("QUERY_TIMEOUT", "30s")
	viper.SetDefault("QUERY_MAX_ROWS", 1000)
	viper.SetDefault("AUDIT_ENABLED", false)
	viper.SetDefault("AUDIT_BATCH_SIZE", 50)
	viper.SetDefault("AUDIT_MAX_BATCH_WAIT", "5s")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_AUDIT_TOPIC", "query_audit_events")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "query_audit_group")
	viper.SetDefault("ELASTICSEARCH_ADDRESSES", "http://localhost:9200")
	viper.SetDefault("ELASTICSEARCH_AUDIT_INDEX", "query-audit")
	viper.SetDefault("ELASTICSEARCH_BULK_WORKERS", 2)
	viper.SetDefault("ELASTICSEARCH_FLUSH_BYTES", 1048576) // 1MB
	viper.SetDefault("ELASTICSEARCH_FLUSH_INTERVAL", "5s")
	viper.SetDefault("SCHEMA_REFRESH_ENABLED", true)
	viper.SetDefault("SCHEMA_REFRESH_SCHEDULE", "0 0 */6 * * *") // Every 6 hours

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config
	config.Server.Port = viper.GetString("SERVER_PORT")

	// --- Auth ---
	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenExpiry = viper.GetDuration("JWT_TOKEN_EXPIRY")
	config.Auth.Accounts = strings.Split(viper.GetString("ADMIN_ACCOUNTS"), ",")

	// --- Gemini ---
	config.Gemini.APIKey = viper.GetString("GOOGLE_API_KEY")
	config.Gemini.ModelID = viper.GetString("GEMINI_MODEL")
	config.Gemini.BaseURL = viper.GetString("GEMINI_BASE_URL")
	config.Gemini.Timeout = viper.GetDuration("GEMINI_TIMEOUT")

	// --- Connection store ---
	config.ConnStore.FilePath = viper.GetString("CONNECTIONS_FILE_PATH")

	// --- Query executor ---
	config.QueryExecutor.MaxConns = viper.GetInt32("QUERY_MAX_CONNS")
	config.QueryExecutor.QueryTimeout = viper.GetDuration("QUERY_TIMEOUT")
	config.QueryExecutor.MaxRows = viper.GetInt("QUERY_MAX_ROWS")

	// --- Audit pipeline ---
	config.Audit.Enabled = viper.GetBool("AUDIT_ENABLED")
	config.Audit.BatchSize = viper.GetInt("AUDIT_BATCH_SIZE")
	config.Audit.MaxWait = viper.GetDuration("AUDIT_MAX_BATCH_WAIT")

	// --- Kafka ---
	config.Kafka.Brokers = strings.Split(viper.GetString("KAFKA_BROKERS"), ",")
	config.Kafka.AuditTopic = viper.GetString("KAFKA_AUDIT_TOPIC")
	config.Kafka.ConsumerGroup = viper.GetString("KAFKA_CONSUMER_GROUP")

	// --- Elasticsearch ---
	config.Elasticsearch.Addresses = strings.Split(viper.GetString("ELASTICSEARCH_ADDRESSES"), ",")
	config.Elasticsearch.AuditIndex = viper.GetString("ELASTICSEARCH_AUDIT_INDEX")
	config.Elasticsearch.BulkWorkers = viper.GetInt("ELASTICSEARCH_BULK_WORKERS")
	config.Elasticsearch.FlushBytes = viper.GetInt("ELASTICSEARCH_FLUSH_BYTES")
	config.Elasticsearch.FlushInterval = viper.GetDuration("ELASTICSEARCH_FLUSH_INTERVAL")

	// --- Schema refresh ---
	config.SchemaRefresh.Enabled = viper.GetBool("SCHEMA_REFRESH_ENABLED")
	config.SchemaRefresh.Schedule = viper.GetString("SCHEMA_REFRESH_SCHEDULE")

	log.Info().
		Str("port", config.Server.Port).
		Str("connections_file", config.ConnStore.FilePath).
		Bool("audit_enabled", config.Audit.Enabled).
		Msg("Config loaded")
	return &config, nil
}
