package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	GigaChat   GigaChatConfig
	Gemini     GeminiConfig
	Classifier ClassifierConfig
	Storage    StorageConfig
	Events     EventsConfig
	Kafka      KafkaConfig
	Ingestion  IngestionConfig
	BigQuery   BigQueryConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds the shared secret used to validate tokens issued by the auth service.
type JWTConfig struct {
	SecretKey string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// ClassifierConfig selects the external classifier: "gigachat", "gemini" or "none".
type ClassifierConfig struct {
	Provider string
}

// StorageConfig selects where uploaded statements are kept: "local" or "gcs".
type StorageConfig struct {
	Provider        string
	LocalPath       string
	Bucket          string
	KeyPrefix       string
	CredentialsFile string
}

// EventsConfig selects the message channel: "memory" or "kafka".
type EventsConfig struct {
	Transport  string
	Partitions int
}

type KafkaConfig struct {
	Brokers           []string
	TransactionsTopic string
	ClientID          string
}

type IngestionConfig struct {
	Workers               int
	QueueSize             int
	DuplicatePolicy       string
	ClassifierConcurrency int
	ClassifierTimeout     time.Duration
	MaxFileSize           int
}

type BigQueryConfig struct {
	Enabled   bool
	ProjectID string
	Dataset   string
	Table     string
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for Docker/K8s
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	partitions, _ := strconv.Atoi(getEnv("EVENTS_PARTITIONS", "4"))
	workers, _ := strconv.Atoi(getEnv("INGEST_WORKERS", "4"))
	queueSize, _ := strconv.Atoi(getEnv("INGEST_QUEUE_SIZE", "64"))
	classifierConcurrency, _ := strconv.Atoi(getEnv("CLASSIFIER_CONCURRENCY", "4"))
	classifierTimeout, _ := strconv.Atoi(getEnv("CLASSIFIER_TIMEOUT_SECONDS", "10"))
	maxFileSize, _ := strconv.Atoi(getEnv("UPLOAD_MAX_FILE_SIZE", "10485760"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			BodyLimit:    maxFileSize + 1<<20,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "change-me-in-production"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Classifier: ClassifierConfig{
			Provider: strings.ToLower(getEnv("CLASSIFIER_PROVIDER", "none")),
		},
		Storage: StorageConfig{
			Provider:        strings.ToLower(getEnv("STORAGE_PROVIDER", "local")),
			LocalPath:       getEnv("STORAGE_LOCAL_PATH", "uploads"),
			Bucket:          getEnv("GCS_BUCKET", ""),
			KeyPrefix:       getEnv("GCS_KEY_PREFIX", "finflow/documents"),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Events: EventsConfig{
			Transport:  strings.ToLower(getEnv("EVENTS_TRANSPORT", "memory")),
			Partitions: partitions,
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			TransactionsTopic: getEnv("KAFKA_TRANSACTIONS_TOPIC", "transactions.created"),
			ClientID:          getEnv("KAFKA_CLIENT_ID", "finflow"),
		},
		Ingestion: IngestionConfig{
			Workers:               workers,
			QueueSize:             queueSize,
			DuplicatePolicy:       strings.ToLower(getEnv("INGEST_DUPLICATE_POLICY", "skip")),
			ClassifierConcurrency: classifierConcurrency,
			ClassifierTimeout:     time.Duration(classifierTimeout) * time.Second,
			MaxFileSize:           maxFileSize,
		},
		BigQuery: BigQueryConfig{
			Enabled:   getEnv("BIGQUERY_PROJECTION_ENABLED", "false") == "true",
			ProjectID: getEnv("BIGQUERY_PROJECT_ID", ""),
			Dataset:   getEnv("BIGQUERY_DATASET", "finflow"),
			Table:     getEnv("BIGQUERY_TABLE", "transactions"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
