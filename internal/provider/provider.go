// Package provider is the gateway to the AI backends. Exactly one provider
// is active per process, selected from the environment at startup and
// injected into the stage runner. Retry, backoff and model fallback live
// entirely inside this package; callers only ever see a final result or a
// final error.
package provider

import (
	"context"
	"errors"
	"time"

	"call-coach-go/internal/config"
	"call-coach-go/internal/logger"
)

// requestTimeout bounds a single provider HTTP call. There is no mid-stage
// cancellation beyond this.
const requestTimeout = 120 * time.Second

var (
	// ErrAllModelsFailed means every candidate model in a fallback chain
	// failed. Callers degrade to a default result instead of failing the
	// stage.
	ErrAllModelsFailed = errors.New("provider: all candidate models failed")

	// ErrTranscriptionUnsupported is returned by providers that only do
	// text generation.
	ErrTranscriptionUnsupported = errors.New("provider: transcription not supported")
)

// Transcription is the result of a speech-to-text call.
type Transcription struct {
	Text            string
	DurationSeconds float64
	Confidence      float64
	Provider        string
}

// Task tells the gateway which kind of generation is being asked for, so it
// can pick the right candidate chain and the mock can answer in shape.
type Task string

const (
	TaskAnalysis Task = "analysis"
	TaskCoaching Task = "coaching"
)

// TextRequest is one text-generation request. Models is an ordered
// candidate list, tried strictly left to right.
type TextRequest struct {
	Task         Task
	Prompt       string
	Models       []string
	MaxNewTokens int
	Temperature  float64
	TopP         float64
}

// Gateway is the uniform interface over the AI backends.
type Gateway interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte) (Transcription, error)
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// Detect picks the provider name from configuration: a configured Ollama
// host wins, then a Hugging Face key, then the deterministic mock. The mock
// keeps the pipeline fully testable with no external dependencies.
func Detect(cfg *config.Config) string {
	switch {
	case cfg.OllamaURL != "":
		return "ollama"
	case cfg.HuggingFaceAPIKey != "":
		return "huggingface"
	default:
		return "mock"
	}
}

// FromEnv builds the active gateway for this process.
func FromEnv(cfg *config.Config, log *logger.Logger) Gateway {
	switch Detect(cfg) {
	case "ollama":
		return NewOllama(cfg, log)
	case "huggingface":
		return NewHuggingFace(cfg, log)
	default:
		log.Warn("no AI provider configured, using deterministic mock responses")
		return NewMock()
	}
}
