package config

import (
	"github.com/spf13/viper"
)

// The service runs with all settings coming from environment variables on
// the pod; LocalStack and the legacy payroll mock cover local development.

type Config struct {
	DBHost              string `mapstructure:"DB_HOST"`
	DBPort              string `mapstructure:"DB_PORT"`
	DBUser              string `mapstructure:"DB_USER"`
	DBPassword          string `mapstructure:"DB_PASSWORD"`
	DBName              string `mapstructure:"DB_NAME"`
	ServerPort          string `mapstructure:"SERVER_PORT"`
	AWSRegion           string `mapstructure:"AWS_REGION"`
	ClosureSQSQueueURL  string `mapstructure:"CLOSURE_SQS_QUEUE_URL"`
	EmailSQSQueueURL    string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	AWSEndpoint         string `mapstructure:"AWS_ENDPOINT"`
	LegacyPayrollURL    string `mapstructure:"LEGACY_PAYROLL_URL"`
	OTLPEndpoint        string `mapstructure:"OTLP_ENDPOINT"`
	EvidenceBucket      string `mapstructure:"EVIDENCE_BUCKET"`
	SenderEmail         string `mapstructure:"SENDER_EMAIL"`
	NotifyEmail         string `mapstructure:"NOTIFY_EMAIL"`
	ReferenceTimezone   string `mapstructure:"REFERENCE_TIMEZONE"`
	PendingLookbackDays int    `mapstructure:"PENDING_LOOKBACK_DAYS"`
	IsLocalDev          bool   `mapstructure:"IS_LOCAL_DEV"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "ponto_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("CLOSURE_SQS_QUEUE_URL", "http://localstack:4566/000000000000/closure-queue")
	viper.SetDefault("EMAIL_SQS_QUEUE_URL", "http://localstack:4566/000000000000/email-queue")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("LEGACY_PAYROLL_URL", "http://localhost:8081/")
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("EVIDENCE_BUCKET", "ponto-evidence")
	viper.SetDefault("SENDER_EMAIL", "ponto@ponto-service.com")
	viper.SetDefault("NOTIFY_EMAIL", "rh@ponto-service.com")
	viper.SetDefault("REFERENCE_TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("PENDING_LOOKBACK_DAYS", 60)
	viper.SetDefault("IS_LOCAL_DEV", false)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
