// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"recharge-core/pkg/db"

	"github.com/spf13/viper"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       db.Config      `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type RedisConfig struct {
	// Addr empty disables Redis; the in-process account locker is used instead.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	// Brokers empty disables event publishing.
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type GatewayConfig struct {
	// DispatchTimeoutSeconds bounds one gateway dispatch end to end.
	DispatchTimeoutSeconds int `mapstructure:"dispatch_timeout_seconds"`
	// SimulatedLatencyMillis is the fixed latency of the simulator pool.
	SimulatedLatencyMillis int `mapstructure:"simulated_latency_millis"`
}

type BusinessConfig struct {
	Currency string `mapstructure:"currency"`
	// LockExpirationSeconds bounds how long a crashed holder can block an account.
	LockExpirationSeconds int `mapstructure:"lock_expiration_seconds"`
}

// LoadConfig loads configuration from an optional YAML file and the
// environment (RECHARGE_SERVER_PORT, RECHARGE_DB_HOST, ...), with defaults
// suitable for local development.
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "user")
	v.SetDefault("db.password", "password")
	v.SetDefault("db.dbname", "rechargedb")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "recharge_result")
	v.SetDefault("gateway.dispatch_timeout_seconds", 30)
	v.SetDefault("gateway.simulated_latency_millis", 2000)
	v.SetDefault("business.currency", "DZD")
	v.SetDefault("business.lock_expiration_seconds", 60)

	v.SetEnvPrefix("RECHARGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	config := &AppConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}
