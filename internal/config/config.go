package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config reúne toda la configuración del proceso, leída de variables de
// entorno (con .env opcional para dev).
type Config struct {
	Port string
	Env  string // dev | production

	DBDSN string

	LogLevel  string
	LogFormat string

	// Secreto HS256 para verificar tokens. Vacío = modo dev por headers.
	JWTSecret string

	// Gateway del asistente. BaseURL vacía = asistente deshabilitado.
	AssistantBaseURL string
	AssistantAPIKey  string
	AssistantModel   string
	AssistantTimeout time.Duration
}

// Load lee el .env si existe (en producción no suele haberlo) y arma la
// configuración con defaults razonables para dev.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getenv("PORT", "8080"),
		Env:  getenv("ENV", "dev"),

		DBDSN: os.Getenv("DB_DSN"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", ""),

		JWTSecret: os.Getenv("AUTH_JWT_SECRET"),

		AssistantBaseURL: os.Getenv("ASSISTANT_BASE_URL"),
		AssistantAPIKey:  os.Getenv("ASSISTANT_API_KEY"),
		AssistantModel:   getenv("ASSISTANT_MODEL", "gpt-4o"),
		AssistantTimeout: getDuration("ASSISTANT_TIMEOUT", 30*time.Second),
	}
}

// IsDev indica si corremos en modo desarrollo (headers de debug, logs bonitos).
func (c Config) IsDev() bool {
	return c.Env != "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
