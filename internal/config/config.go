// Package config reads configuration from the environment, with a .env
// file for development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Server holds everything cmd/server needs.
type Server struct {
	Addr      string
	Env       string
	DSN       string
	JWTSecret string
	RedisAddr string
}

// Client holds everything cmd/chat needs.
type Client struct {
	ServerURL string
	WSURL     string
	Env       string
}

// LoadServer reads server configuration. DSN and JWTSecret are
// required; startup fails without them.
func LoadServer() (*Server, error) {
	_ = godotenv.Load()

	cfg := &Server{
		Addr:      getEnv("ADDR", ":8080"),
		Env:       getEnv("ENV", "development"),
		DSN:       os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
	}
	if cfg.DSN == "" {
		return nil, missingEnv("DB_DSN")
	}
	if cfg.JWTSecret == "" {
		return nil, missingEnv("JWT_SECRET")
	}
	return cfg, nil
}

// LoadClient reads client configuration. Everything has a local-dev
// default.
func LoadClient() *Client {
	_ = godotenv.Load()

	return &Client{
		ServerURL: getEnv("SERVER_URL", "http://localhost:8080"),
		WSURL:     getEnv("WS_URL", "ws://localhost:8080/ws"),
		Env:       getEnv("ENV", "development"),
	}
}

// IsDevelopment selects console logging over JSON.
func (c *Server) IsDevelopment() bool { return c.Env == "development" }

func (c *Client) IsDevelopment() bool { return c.Env == "development" }

type missingEnv string

func (m missingEnv) Error() string { return string(m) + " is not set" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
