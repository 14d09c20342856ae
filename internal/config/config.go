package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID         string
	FirebaseAPIKey    string
	GeminiAPIKey      string
	GeminiModel       string
	Port              string
	SeedCount         int
	ToastBufferSize   int
	IdentityStatePath string
}

func Load() (*Config, error) {
	// Best-effort .env loading for local development; deployed
	// environments inject real env vars.
	_ = godotenv.Load()

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
	}

	firebaseAPIKey := os.Getenv("FIREBASE_WEB_API_KEY")
	if firebaseAPIKey == "" {
		slog.Warn("FIREBASE_WEB_API_KEY not set, anonymous sign-in will use a locally generated identity")
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, ad recommendations will be disabled")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	seedCount := 6
	if v := os.Getenv("SEED_COUNT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_COUNT %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("SEED_COUNT must be positive, got %d", parsed)
		}
		seedCount = parsed
	}

	toastBufferSize := 32
	if v := os.Getenv("TOAST_BUFFER_SIZE"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOAST_BUFFER_SIZE %q: %w", v, err)
		}
		toastBufferSize = parsed
	}

	identityStatePath := os.Getenv("IDENTITY_STATE_PATH")
	if identityStatePath == "" {
		identityStatePath = ".zenvue/identity.json"
	}

	return &Config{
		ProjectID:         projectID,
		FirebaseAPIKey:    firebaseAPIKey,
		GeminiAPIKey:      geminiAPIKey,
		GeminiModel:       geminiModel,
		Port:              port,
		SeedCount:         seedCount,
		ToastBufferSize:   toastBufferSize,
		IdentityStatePath: identityStatePath,
	}, nil
}
