package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"simple-chat/internal/env"
)

const DevSessionSecret = "dev-only-session-secret"

type Config struct {
	App     AppConfig     `koanf:"app"`
	HTTP    HTTPConfig    `koanf:"http"`
	Session SessionConfig `koanf:"session"`
	Redis   RedisConfig   `koanf:"redis"`
	Logger  LoggerConfig  `koanf:"logger"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
}

type AppConfig struct {
	Name string `koanf:"name"`
	Env  string `koanf:"env"`
}

type HTTPConfig struct {
	Host            string        `koanf:"host"`
	Port            uint16        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type SessionConfig struct {
	CookieName string        `koanf:"cookie_name"`
	Secret     string        `koanf:"secret"`
	TTL        time.Duration `koanf:"ttl"`
	Secure     bool          `koanf:"secure"`
	// Store is "memory" or "redis".
	Store string `koanf:"store"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type LoggerConfig struct {
	Level      string `koanf:"level"`
	Encoding   string `koanf:"encoding"`
	FilePath   string `koanf:"file_path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyEnvOverrides(k)
	applyDefaults(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.Session.Secret == "" {
		return errors.New("session secret must not be empty")
	}
	if c.IsProduction() && c.Session.Secret == DevSessionSecret {
		return errors.New("set SESSION_SECRET before running in production")
	}
	return nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "app.name", "simple-chat")
	setDefault(k, "app.env", "development")

	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 3000)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.idle_timeout", time.Minute)
	setDefault(k, "http.shutdown_timeout", 5*time.Second)

	setDefault(k, "session.cookie_name", "simplechatsessid")
	setDefault(k, "session.secret", DevSessionSecret)
	setDefault(k, "session.ttl", 30*24*time.Hour)
	setDefault(k, "session.store", "memory")

	setDefault(k, "redis.addr", "localhost:6379")

	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.encoding", "json")
	setDefault(k, "logger.max_size_mb", 100)
	setDefault(k, "logger.max_backups", 5)
	setDefault(k, "logger.max_age_days", 28)

	setDefault(k, "metrics.enabled", true)
	setDefault(k, "metrics.path", "/metrics")

	setDefault(k, "tracing.endpoint", "http://localhost:4318/v1/traces")
	setDefault(k, "tracing.sample_ratio", 1.0)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if appEnv := env.GetString("APP_ENV", ""); appEnv != "" {
		k.Set("app.env", appEnv)
	}

	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	// PORT is what most platforms inject
	if port := env.GetInt("PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}

	if secret := env.GetString("SESSION_SECRET", ""); secret != "" {
		k.Set("session.secret", secret)
	}
	if store := env.GetString("SESSION_STORE", ""); store != "" {
		k.Set("session.store", store)
	}
	if ttl := env.GetDuration("SESSION_TTL", 0); ttl > 0 {
		k.Set("session.ttl", ttl)
	}

	if addr := env.GetString("REDIS_ADDR", ""); addr != "" {
		k.Set("redis.addr", addr)
	}
	if password := env.GetString("REDIS_PASSWORD", ""); password != "" {
		k.Set("redis.password", password)
	}

	if level := env.GetString("LOGGER_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}
	if encoding := env.GetString("LOGGER_ENCODING", ""); encoding != "" {
		k.Set("logger.encoding", encoding)
	}
	if path := env.GetString("LOGGER_FILE_PATH", ""); path != "" {
		k.Set("logger.file_path", path)
	}

	if endpoint := env.GetString("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.enabled", true)
		k.Set("tracing.endpoint", endpoint)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
