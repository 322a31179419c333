package globals

import (
	"errors"
	"os"
)

var (
	JwtSecret    = []byte("aquiguaira-dev-secret") // overridden by JWT_SECRET
	jwtSecretSet bool

	Port          = ":8080"
	MongoURI      = "mongodb://localhost:27017"
	MongoDatabase = "empresas"
	RedisURL      = ""
	DatabaseURL   = ""
	AppEnv        = "production"
	PublicBaseURL = "https://aquiguaira.com.br"
	NominatimURL  = "https://nominatim.openstreetmap.org/search"
)

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"
const RequestIDKey ContextKey = "requestId"

// Load reads the process environment. Call it after godotenv has populated it.
func Load() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		JwtSecret = []byte(v)
		jwtSecretSet = true
	}
	if v := os.Getenv("PORT"); v != "" {
		if v[0] != ':' {
			v = ":" + v
		}
		Port = v
	}
	setFromEnv(&MongoURI, "MONGODB_URI")
	setFromEnv(&MongoDatabase, "MONGODB_DB")
	setFromEnv(&RedisURL, "REDIS_URL")
	setFromEnv(&DatabaseURL, "DATABASE_URL")
	setFromEnv(&AppEnv, "APP_ENV")
	setFromEnv(&PublicBaseURL, "PUBLIC_BASE_URL")
	setFromEnv(&NominatimURL, "NOMINATIM_URL")
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set outside development")

// CheckSecrets refuses the built-in signing key unless APP_ENV=development.
func CheckSecrets() error {
	if !jwtSecretSet && !IsDevelopment() {
		return ErrMissingJWTSecret
	}
	return nil
}

func IsDevelopment() bool {
	return AppEnv == "development"
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
