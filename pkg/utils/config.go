package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

type ServerConfig struct {
	Addr string
}

// LoadDotEnv pulls in a .env file when one exists. Missing files are fine;
// real environments set variables directly.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("ARCANUM_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("ARCANUM_JWT_ISSUER")
	if issuer == "" {
		issuer = "arcanum"
	}

	duration := 24 * time.Hour
	if raw := os.Getenv("ARCANUM_JWT_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("ARCANUM_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return ServerConfig{Addr: addr}
}
