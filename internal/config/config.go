package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once in main and passed down explicitly; nothing below main
// reads ambient environment state.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// Alert delivery. The write token authorises event delivery to the
	// external observability backend.
	AlertBackendURL string
	AlertWriteToken string
	AlertBucketName string // S3 archive for raw alert payloads; empty disables
	AlertTopicARN   string // SNS fan-out topic; empty disables
	GitRepoURL      string
	GitCommit       string

	// Armed fault points, e.g. "login.access-token". The fault endpoint is
	// always armed and is not listed here.
	FaultPoints []string

	JWTSecret          string
	AccessTokenMinutes int

	RecoveryTokenHours int
	SMTPHost           string
	SMTPPort           string
	SMTPFrom           string
	SMTPUsername       string
	SMTPPassword       string

	FirstSuperuserEmail    string
	FirstSuperuserPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users          string
	Items          string
	RecoveryTokens string
	LoginEvents    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "8000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:          getEnv("DYNAMO_TABLE_USERS", "users"),
			Items:          getEnv("DYNAMO_TABLE_ITEMS", "items"),
			RecoveryTokens: getEnv("DYNAMO_TABLE_RECOVERY_TOKENS", "recovery_tokens"),
			LoginEvents:    getEnv("DYNAMO_TABLE_LOGIN_EVENTS", "login_events"),
		},

		AlertBackendURL: getEnv("ALERT_BACKEND_URL", ""),
		AlertWriteToken: getEnv("ALERT_WRITE_TOKEN", ""),
		AlertBucketName: getEnv("ALERT_BUCKET_NAME", ""),
		AlertTopicARN:   getEnv("ALERT_TOPIC_ARN", ""),
		GitRepoURL:      getEnv("GIT_REPO_URL", ""),
		GitCommit:       getEnv("GIT_COMMIT", ""),

		// The login defect ships armed: this service exists to fire alerts.
		FaultPoints: splitNonEmpty(getEnv("FAULT_POINTS", "login.access-token")),

		JWTSecret:          getEnv("JWT_SECRET", "changethis"),
		AccessTokenMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*8),

		RecoveryTokenHours: getEnvInt("RECOVERY_TOKEN_EXPIRE_HOURS", 48),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnv("SMTP_PORT", "1025"),
		SMTPFrom:           getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),

		FirstSuperuserEmail:    getEnv("FIRST_SUPERUSER", "admin@example.com"),
		FirstSuperuserPassword: getEnv("FIRST_SUPERUSER_PASSWORD", "changethis"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
