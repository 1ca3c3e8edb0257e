package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything resolved at process start.
type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	MercadoPago struct {
		AccessToken string        `mapstructure:"accessToken"`
		BaseURL     string        `mapstructure:"baseURL"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"mercadopago"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
	} `mapstructure:"auth"`
	CORS struct {
		AllowOrigins []string `mapstructure:"allowOrigins"`
	} `mapstructure:"cors"`
	Jobs struct {
		DispatchInterval time.Duration `mapstructure:"dispatchInterval"`
		GoalsInterval    time.Duration `mapstructure:"goalsInterval"`
		BatchSize        int           `mapstructure:"batchSize"`
		LockTTL          time.Duration `mapstructure:"lockTTL"`
	} `mapstructure:"jobs"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Validate checks the settings without which the service cannot start.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if c.Jobs.BatchSize <= 0 {
		return fmt.Errorf("config: jobs.batchSize must be positive, got %d", c.Jobs.BatchSize)
	}
	return nil
}

// LoadConfig reads an optional .env file, an optional config.yml located in
// dir and environment variables, in increasing order of precedence.
func LoadConfig(dir string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// .env is optional outside production
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	// comma separated env values arrive as one or more untrimmed items
	cfg.Kafka.Brokers = splitList(strings.Join(cfg.Kafka.Brokers, ","))
	cfg.CORS.AllowOrigins = splitList(strings.Join(cfg.CORS.AllowOrigins, ","))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("mercadopago.baseURL", "https://api.mercadopago.com")
	v.SetDefault("mercadopago.timeout", 15*time.Second)
	v.SetDefault("cors.allowOrigins", []string{"*"})
	v.SetDefault("jobs.dispatchInterval", time.Hour)
	v.SetDefault("jobs.goalsInterval", 6*time.Hour)
	v.SetDefault("jobs.batchSize", 100)
	v.SetDefault("jobs.lockTTL", 10*time.Minute)
}

// bindEnv maps the flat variable names used in deployment to config keys.
func bindEnv(v *viper.Viper) {
	pairs := map[string]string{
		"app.port":                "APP_PORT",
		"app.env":                 "APP_ENV",
		"log.level":               "LOG_LEVEL",
		"database.dsn":            "DATABASE_DSN",
		"redis.addr":              "REDIS_ADDR",
		"redis.password":          "REDIS_PASSWORD",
		"redis.db":                "REDIS_DB",
		"kafka.brokers":           "KAFKA_BROKERS",
		"mercadopago.accessToken": "MERCADOPAGO_ACCESS_TOKEN",
		"mercadopago.baseURL":     "MERCADOPAGO_BASE_URL",
		"mercadopago.timeout":     "MERCADOPAGO_TIMEOUT",
		"auth.jwtSecret":          "JWT_SECRET",
		"cors.allowOrigins":       "CORS_ALLOW_ORIGINS",
		"jobs.dispatchInterval":   "JOBS_DISPATCH_INTERVAL",
		"jobs.goalsInterval":      "JOBS_GOALS_INTERVAL",
		"jobs.batchSize":          "JOBS_BATCH_SIZE",
		"jobs.lockTTL":            "JOBS_LOCK_TTL",
	}
	for key, env := range pairs {
		_ = v.BindEnv(key, env)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
