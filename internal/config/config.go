package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Upload  UploadConfig  `mapstructure:"upload"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Otel    OtelConfig    `mapstructure:"otel"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UploadConfig controls the image asset store. AllowedTypes is a
// comma-separated allow-list of content types; entries are trimmed and
// matched exactly. PublicPrefix is the URL prefix the static file route
// serves the upload directory under.
type UploadConfig struct {
	Path         string `mapstructure:"path"`
	AllowedTypes string `mapstructure:"allowed-types"`
	PublicPrefix string `mapstructure:"public-prefix"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
}

type MetricsConfig struct {
	Port string `mapstructure:"port"`
}

type OtelConfig struct {
	ExporterEndpoint string `mapstructure:"exporter_endpoint"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetDefault("http.port", "8080")
	viper.SetDefault("http.read_timeout", "15s")
	viper.SetDefault("http.write_timeout", "15s")
	viper.SetDefault("http.shutdown_timeout", "10s")

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "rental_service_db")
	viper.SetDefault("mongo.connect_timeout", "10s")
	viper.SetDefault("mongo.min_pool_size", 0)
	viper.SetDefault("mongo.max_pool_size", 100)

	viper.SetDefault("nats.url", "")
	viper.SetDefault("nats.connect_timeout", "5s")

	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("upload.path", "./uploads")
	viper.SetDefault("upload.allowed-types", "image/jpeg,image/png,image/webp")
	viper.SetDefault("upload.public-prefix", "/images")

	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)

	viper.SetDefault("metrics.port", "")
	viper.SetDefault("otel.exporter_endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		if fi, _ := os.Stat(path); !fi.IsDir() {
			viper.SetConfigFile(path)
		} else {
			viper.AddConfigPath(path)
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("RENTAL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found; using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
