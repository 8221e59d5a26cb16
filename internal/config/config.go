package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
}

var (
	configInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	URL     string
	Enabled bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Enabled   bool
}

type JWTConfig struct {
	Secret string
}

// Load reads configuration from the environment with sane local defaults.
func Load() *Config {
	once.Do(func() {
		viper.SetDefault("ELECT_HOST", "")
		viper.SetDefault("ELECT_PORT", "8080")
		viper.SetDefault("ELECT_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("ELECT_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("ELECT_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("ELECT_JWT_SECRET", "secret")
		viper.SetDefault("POSTGRES_USER", "postgres")
		viper.SetDefault("POSTGRES_PASSWORD", "password")
		viper.SetDefault("POSTGRES_HOST", "localhost")
		viper.SetDefault("POSTGRES_PORT", "5432")
		viper.SetDefault("POSTGRES_DB", "elections")
		viper.SetDefault("POSTGRES_SSLMODE", "disable")
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_ENABLED", true)
		viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
		viper.SetDefault("KAFKA_TOPIC", "vote-events")
		viper.SetDefault("KAFKA_ENABLED", false)
		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
		viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
		viper.SetDefault("MINIO_BUCKET", "candidate-photos")
		viper.SetDefault("MINIO_ENABLED", false)
		viper.AutomaticEnv()

		configInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("ELECT_HOST"),
				Port:         viper.GetString("ELECT_PORT"),
				ReadTimeout:  viper.GetDuration("ELECT_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("ELECT_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("ELECT_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("POSTGRES_HOST"),
				Port:     viper.GetString("POSTGRES_PORT"),
				User:     viper.GetString("POSTGRES_USER"),
				Password: viper.GetString("POSTGRES_PASSWORD"),
				DBName:   viper.GetString("POSTGRES_DB"),
				SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			},
			Redis: RedisConfig{
				URL:     viper.GetString("REDIS_URL"),
				Enabled: viper.GetBool("REDIS_ENABLED"),
			},
			Kafka: KafkaConfig{
				Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
				Topic:   viper.GetString("KAFKA_TOPIC"),
				Enabled: viper.GetBool("KAFKA_ENABLED"),
			},
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				Enabled:   viper.GetBool("MINIO_ENABLED"),
			},
			JWT: JWTConfig{
				Secret: viper.GetString("ELECT_JWT_SECRET"),
			},
		}
	})
	return configInstance
}
