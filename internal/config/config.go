package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read once at startup; everything else receives it injected.
type Config struct {
	Port        string
	Environment string

	DataDir        string
	UploadDir      string
	MaxUploadBytes int64

	JWTSecret string
	TokenTTL  time.Duration

	// Provider selection. Ollama wins over Hugging Face when both are set;
	// with neither, the deterministic mock provider is used.
	HuggingFaceAPIKey string
	HFBaseURL         string
	WhisperModel      string
	AnalysisModels    []string
	CoachingModels    []string
	MaxRetries        int

	OllamaURL   string
	OllamaModel string
}

func Load() *Config {
	return &Config{
		Port:        envOr("PORT", "8080"),
		Environment: envOr("ENVIRONMENT", "local"),

		DataDir:        envOr("DATA_DIR", "./data"),
		UploadDir:      envOr("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: envInt64("MAX_FILE_SIZE", 50*1024*1024),

		JWTSecret: envOr("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  envDuration("TOKEN_TTL", 24*time.Hour),

		HuggingFaceAPIKey: os.Getenv("HUGGINGFACE_API_KEY"),
		HFBaseURL:         envOr("HF_BASE_URL", "https://api-inference.huggingface.co"),
		WhisperModel:      envOr("HF_WHISPER_MODEL", "openai/whisper-large-v3"),
		AnalysisModels: envList("HF_ANALYSIS_MODELS",
			"mistralai/Mistral-7B-Instruct-v0.1",
			"google/flan-t5-large",
			"facebook/blenderbot-400M-distill"),
		CoachingModels: envList("HF_COACHING_MODELS",
			"mistralai/Mistral-7B-Instruct-v0.1",
			"google/flan-t5-large",
			"mistralai/mistral-small"),
		MaxRetries: int(envInt64("HF_MAX_RETRIES", 4)),

		OllamaURL:   firstEnv("OLLAMA_URL", "OLLAMA_HOST"),
		OllamaModel: envOr("OLLAMA_MODEL", "llama2"),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envList(k string, def ...string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
