package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"call-coach-go/internal/config"
	"call-coach-go/internal/logger"
)

var modelLoadingRe = regexp.MustCompile(`(?i)loading`)

// HuggingFace talks to the hosted inference API. One POST per model
// endpoint; JSON for text generation, raw audio bytes for transcription.
type HuggingFace struct {
	baseURL      string
	apiKey       string
	whisperModel string
	maxRetries   int
	client       *http.Client
	sleep        func(time.Duration) // swapped out by tests
	log          *logger.Logger
}

func NewHuggingFace(cfg *config.Config, log *logger.Logger) *HuggingFace {
	return &HuggingFace{
		baseURL:      cfg.HFBaseURL,
		apiKey:       cfg.HuggingFaceAPIKey,
		whisperModel: cfg.WhisperModel,
		maxRetries:   cfg.MaxRetries,
		client:       &http.Client{Timeout: requestTimeout},
		sleep:        time.Sleep,
		log:          log.WithComponent("provider-huggingface"),
	}
}

func (p *HuggingFace) Name() string { return "huggingface" }

func (p *HuggingFace) Transcribe(ctx context.Context, audio []byte) (Transcription, error) {
	body, err := p.request(ctx, p.whisperModel, audio, "audio/wav", 5)
	if err != nil {
		return Transcription{}, fmt.Errorf("transcribe with %s: %w", p.whisperModel, err)
	}

	text, duration := transcriptionText(body)
	if text == "" {
		return Transcription{}, fmt.Errorf("unexpected transcription response: %s", truncate(body, 200))
	}
	return Transcription{
		Text:            text,
		DurationSeconds: duration,
		Confidence:      0.9,
		Provider:        "huggingface:" + p.whisperModel,
	}, nil
}

// GenerateText walks the candidate models strictly left to right. A
// model-level failure, including retry exhaustion, moves to the next
// candidate; the order is never changed.
func (p *HuggingFace) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"inputs": req.Prompt,
		"parameters": map[string]any{
			"max_new_tokens": req.MaxNewTokens,
			"temperature":    req.Temperature,
			"top_p":          req.TopP,
		},
		"options": map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return "", err
	}

	for _, model := range req.Models {
		body, err := p.request(ctx, model, payload, "application/json", p.maxRetries)
		if err != nil {
			p.log.WithError(err).WithField("model", model).Warn("model failed, trying next candidate")
			continue
		}
		if generated := generatedText(body); generated != "" {
			return generated, nil
		}
		p.log.WithField("model", model).Warn("model returned no generated text, trying next candidate")
	}
	return "", ErrAllModelsFailed
}

// request performs one model call with the retry protocol: while the model
// is still loading, or the API answers 429/503, wait 2000ms doubled per
// attempt and retry up to maxRetries; other transport errors get one flat
// second between attempts; 4xx responses are permanent.
func (p *HuggingFace) request(ctx context.Context, model string, payload []byte, contentType string, maxRetries int) ([]byte, error) {
	endpoint := p.baseURL + "/models/" + url.PathEscape(model)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		body, retryable, wait, err := p.attempt(ctx, endpoint, payload, contentType, attempt)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == maxRetries {
			break
		}
		p.log.WithFields(map[string]any{
			"model":   model,
			"attempt": attempt + 1,
			"wait_ms": wait.Milliseconds(),
		}).Info("retrying huggingface request")
		p.sleep(wait)
	}
	return nil, fmt.Errorf("huggingface request for %s failed: %w", model, lastErr)
}

func (p *HuggingFace) attempt(ctx context.Context, endpoint string, payload []byte, contentType string, attempt int) (body []byte, retryable bool, wait time.Duration, err error) {
	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, true, time.Second, err
	}
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, time.Second, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, true, backoffWait(attempt), fmt.Errorf("huggingface status %d: %s", resp.StatusCode, truncate(body, 200))
	case resp.StatusCode >= 500:
		return nil, true, time.Second, fmt.Errorf("huggingface server error %d: %s", resp.StatusCode, truncate(body, 200))
	case resp.StatusCode >= 400:
		return nil, false, 0, fmt.Errorf("huggingface status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	// A 200 can still carry {"error": "Model ... is loading"}.
	if msg := apiError(body); msg != "" {
		if modelLoadingRe.MatchString(msg) {
			return nil, true, backoffWait(attempt), fmt.Errorf("model loading: %s", msg)
		}
		return nil, false, 0, fmt.Errorf("huggingface error: %s", msg)
	}
	return body, false, 0, nil
}

// backoffWait is 2000ms * 2^attempt: 2s, 4s, 8s, 16s, ...
func backoffWait(attempt int) time.Duration {
	return 2000 * time.Millisecond << attempt
}

func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error
	}
	return ""
}

// generatedText reconciles the response shapes the generation models use:
// an array of {generated_text}, a bare {generated_text} or {text} object,
// or a plain JSON string.
func generatedText(body []byte) string {
	var arr []struct {
		GeneratedText string `json:"generated_text"`
	}
	if json.Unmarshal(body, &arr) == nil && len(arr) > 0 && arr[0].GeneratedText != "" {
		return arr[0].GeneratedText
	}
	var obj struct {
		GeneratedText string `json:"generated_text"`
		Text          string `json:"text"`
	}
	if json.Unmarshal(body, &obj) == nil {
		if obj.GeneratedText != "" {
			return obj.GeneratedText
		}
		if obj.Text != "" {
			return obj.Text
		}
	}
	var s string
	if json.Unmarshal(body, &s) == nil {
		return s
	}
	return ""
}

func transcriptionText(body []byte) (string, float64) {
	var obj struct {
		Text     string  `json:"text"`
		Duration float64 `json:"duration"`
	}
	if json.Unmarshal(body, &obj) == nil && obj.Text != "" {
		return obj.Text, obj.Duration
	}
	var arr []struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(body, &arr) == nil && len(arr) > 0 {
		return arr[0].Text, 0
	}
	var s string
	if json.Unmarshal(body, &s) == nil {
		return s, 0
	}
	return "", 0
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
