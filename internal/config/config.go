package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// OpenAI small-talk fallback
	OpenAIAPIKey string
	Model        string
	PersonaFile  string
	// Database (optional; JSONL file log is used when unset)
	DatabaseURL string
	TurnLogFile string
	// Transcript window kept per conversation
	MaxTranscript int
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:          getEnvDefault("PORT", "8080"),
		AllowedOrigin: getEnvDefault("ALLOWED_ORIGIN", "*"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:         getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		PersonaFile:   getEnvDefault("PERSONA_FILE", "./prompts/persona.yaml"),
		DatabaseURL:   os.Getenv("DB_URL"),
		TurnLogFile:   getEnvDefault("TURN_LOG_FILE", "data/turns.jsonl"),
		MaxTranscript: getEnvIntDefault("MAX_TRANSCRIPT", 40),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; small-talk fallback is disabled")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
