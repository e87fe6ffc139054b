package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"call-coach-go/internal/config"
	"call-coach-go/internal/logger"
)

// Ollama runs generation against a locally hosted model. It serves a single
// configured model, so the candidate list in the request is ignored.
// Transcription is not supported; configure Hugging Face or rely on the
// mock for the transcribe stage.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	log     *logger.Logger
}

func NewOllama(cfg *config.Config, log *logger.Logger) *Ollama {
	return &Ollama{
		baseURL: strings.TrimRight(cfg.OllamaURL, "/"),
		model:   cfg.OllamaModel,
		client:  &http.Client{Timeout: requestTimeout},
		log:     log.WithComponent("provider-ollama"),
	}
}

func (p *Ollama) Name() string { return "ollama" }

func (p *Ollama) Transcribe(ctx context.Context, audio []byte) (Transcription, error) {
	return Transcription{}, ErrTranscriptionUnsupported
}

func (p *Ollama) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model":  p.model,
		"prompt": req.Prompt,
		"stream": false,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := p.doJSON(ctx, p.baseURL+"/api/generate", payload, &out); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.Response, nil
}

func (p *Ollama) doJSON(ctx context.Context, endpoint string, payload []byte, target any) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 45 * time.Second

	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", truncate(body, 200))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v body=%s", err, truncate(body, 200))
			return lastErr
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}
