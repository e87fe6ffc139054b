package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"call-coach-go/internal/config"
	"call-coach-go/internal/logger"
)

func newTestHF(baseURL string, maxRetries int) (*HuggingFace, *sleepRecorder) {
	rec := &sleepRecorder{}
	hf := NewHuggingFace(&config.Config{
		HFBaseURL:         baseURL,
		HuggingFaceAPIKey: "test-key",
		WhisperModel:      "openai/whisper-large-v3",
		MaxRetries:        maxRetries,
	}, logger.Discard())
	hf.sleep = rec.sleep
	return hf, rec
}

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
}

func generationOK(text string) string {
	data, _ := json.Marshal([]map[string]string{{"generated_text": text}})
	return string(data)
}

func TestGenerateTextBackoffOnRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(generationOK(`{"ok": true}`)))
	}))
	defer srv.Close()

	hf, rec := newTestHF(srv.URL, 4)
	got, err := hf.GenerateText(context.Background(), TextRequest{
		Task:   TaskAnalysis,
		Prompt: "p",
		Models: []string{"model-a"},
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != `{"ok": true}` {
		t.Errorf("text = %q", got)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(rec.waits) != len(want) {
		t.Fatalf("waits = %v, want %v", rec.waits, want)
	}
	for i := range want {
		if rec.waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, rec.waits[i], want[i])
		}
	}
}

func TestGenerateTextRetriesWhileModelLoading(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			json.NewEncoder(w).Encode(map[string]string{"error": "Model model-a is currently loading"})
			return
		}
		w.Write([]byte(generationOK("done")))
	}))
	defer srv.Close()

	hf, rec := newTestHF(srv.URL, 4)
	got, err := hf.GenerateText(context.Background(), TextRequest{Models: []string{"model-a"}})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "done" {
		t.Errorf("text = %q", got)
	}
	if len(rec.waits) != 2 || rec.waits[0] != 2*time.Second || rec.waits[1] != 4*time.Second {
		t.Errorf("waits = %v, want [2s 4s]", rec.waits)
	}
}

// The full backoff ladder doubles from 2000ms on every loading response
// until the model answers.
func TestGenerateTextBackoffLadder(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 4 {
			json.NewEncoder(w).Encode(map[string]string{"error": "Model is loading"})
			return
		}
		w.Write([]byte(generationOK("ready")))
	}))
	defer srv.Close()

	hf, rec := newTestHF(srv.URL, 4)
	got, err := hf.GenerateText(context.Background(), TextRequest{Models: []string{"model-a"}})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "ready" {
		t.Errorf("text = %q", got)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if len(rec.waits) != len(want) {
		t.Fatalf("waits = %v, want %v", rec.waits, want)
	}
	for i := range want {
		if rec.waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, rec.waits[i], want[i])
		}
	}
}

func TestGenerateTextClientErrorIsPermanent(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hf, rec := newTestHF(srv.URL, 4)
	_, err := hf.GenerateText(context.Background(), TextRequest{Models: []string{"model-a"}})
	if !errors.Is(err, ErrAllModelsFailed) {
		t.Fatalf("err = %v, want ErrAllModelsFailed", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
	if len(rec.waits) != 0 {
		t.Errorf("waits = %v, want none", rec.waits)
	}
}

func TestGenerateTextRetryExhaustion(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	hf, rec := newTestHF(srv.URL, 2)
	_, err := hf.GenerateText(context.Background(), TextRequest{Models: []string{"model-a"}})
	if !errors.Is(err, ErrAllModelsFailed) {
		t.Fatalf("err = %v, want ErrAllModelsFailed", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want initial + 2 retries", calls)
	}
	if len(rec.waits) != 2 {
		t.Errorf("waits = %v, want 2 entries", rec.waits)
	}
}

// The candidate chain is walked strictly left to right and a model that
// answers with no usable text counts as failed.
func TestGenerateTextModelFallbackOrder(t *testing.T) {
	var mu sync.Mutex
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := strings.TrimPrefix(r.URL.Path, "/models/")
		mu.Lock()
		models = append(models, model)
		mu.Unlock()
		switch model {
		case "model-a":
			w.WriteHeader(http.StatusNotFound)
		case "model-b":
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(generationOK("from model-c")))
		}
	}))
	defer srv.Close()

	hf, _ := newTestHF(srv.URL, 1)
	got, err := hf.GenerateText(context.Background(), TextRequest{
		Models: []string{"model-a", "model-b", "model-c"},
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "from model-c" {
		t.Errorf("text = %q", got)
	}
	want := []string{"model-a", "model-b", "model-c"}
	if len(models) != 3 {
		t.Fatalf("models tried = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("models[%d] = %q, want %q", i, models[i], want[i])
		}
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("content type = %q, want audio/wav", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		json.NewEncoder(w).Encode(map[string]any{"text": "hello world", "duration": 12.5})
	}))
	defer srv.Close()

	hf, _ := newTestHF(srv.URL, 1)
	tr, err := hf.Transcribe(context.Background(), []byte("RIFFfake"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "hello world" || tr.DurationSeconds != 12.5 {
		t.Errorf("transcription = %+v", tr)
	}
}

func TestGeneratedTextShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"array", `[{"generated_text": "a"}]`, "a"},
		{"object", `{"generated_text": "b"}`, "b"},
		{"text field", `{"text": "c"}`, "c"},
		{"plain string", `"d"`, "d"},
		{"empty array", `[]`, ""},
		{"garbage", `not json`, ""},
	}
	for _, tt := range tests {
		if got := generatedText([]byte(tt.body)); got != tt.want {
			t.Errorf("%s: generatedText = %q, want %q", tt.name, got, tt.want)
		}
	}
}
