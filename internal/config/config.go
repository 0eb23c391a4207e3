package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisChannel  string `env:"REDIS_CHANNEL" envDefault:"analysis-events"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`

	PredictTimeoutMS     int      `env:"PREDICT_TIMEOUT_MS" envDefault:"3000"`
	HistoryLimit         int      `env:"HISTORY_LIMIT" envDefault:"50"`
	PredictRatePerMinute int      `env:"PREDICT_RATE_PER_MINUTE" envDefault:"30"`
	CORSOrigins          []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080"`

	// 0 usa una semilla aleatoria por proceso.
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PredictTimeout es el limite por solicitud del pipeline; 0 lo desactiva.
func (c *Config) PredictTimeout() time.Duration {
	if c.PredictTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.PredictTimeoutMS) * time.Millisecond
}

// AccessTokenTTL devuelve la vigencia de los tokens de acceso.
func (c *Config) AccessTokenTTL() time.Duration {
	if c.JWTAccessTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

// RedisEnabled indica si hay un redis configurado para rate limit y fan-out de eventos.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
