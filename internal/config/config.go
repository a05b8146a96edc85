package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret       string   `mapstructure:"JWT_SECRET"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	StageTimeoutMS  int      `mapstructure:"STAGE_TIMEOUT_MS"`
	RequestTimeoutS int      `mapstructure:"REQUEST_TIMEOUT_S"`
	ContextSessions int      `mapstructure:"CONTEXT_SESSIONS"`
	ReasoningURL    string   `mapstructure:"REASONING_URL"`
	ReasoningAPIKey string   `mapstructure:"REASONING_API_KEY"`
	ReasoningModel  string   `mapstructure:"REASONING_MODEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STAGE_TIMEOUT_MS", 8000)
	v.SetDefault("REQUEST_TIMEOUT_S", 30)
	v.SetDefault("CONTEXT_SESSIONS", 5)
	v.SetDefault("REASONING_MODEL", "gpt-4o-mini")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("STAGE_TIMEOUT_MS")
	v.BindEnv("REQUEST_TIMEOUT_S")
	v.BindEnv("CONTEXT_SESSIONS")
	v.BindEnv("REASONING_URL")
	v.BindEnv("REASONING_API_KEY")
	v.BindEnv("REASONING_MODEL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active, all requests are trusted.")
		log.Println("WARNING: Set ENV=production and JWT_SECRET for production use.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StageTimeout returns the per-stage deadline applied inside the pipeline
// fan-out. A stage that exceeds it is recorded as a failed stage, not a
// failed request.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutMS) * time.Millisecond
}

// RequestTimeout returns the overall per-request deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutS) * time.Second
}

// Validate checks that the configuration is safe to run. In production a
// JWT_SECRET must be set so that real authentication is enforced, and the
// per-stage timeout must be positive so a slow reasoning lookup cannot stall
// a diagnosis request indefinitely.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.StageTimeoutMS <= 0 {
		return fmt.Errorf("STAGE_TIMEOUT_MS must be positive, got %d", c.StageTimeoutMS)
	}
	if c.ContextSessions < 0 || c.ContextSessions > 10 {
		return fmt.Errorf("CONTEXT_SESSIONS must be between 0 and 10, got %d", c.ContextSessions)
	}
	if c.ReasoningURL != "" && c.ReasoningAPIKey == "" && c.IsProduction() {
		return fmt.Errorf("REASONING_API_KEY is required when REASONING_URL is set in production")
	}
	return nil
}
