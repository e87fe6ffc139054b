// Package events carries pipeline progress to subscribers. The stage
// runner publishes typed events onto a per-call topic; the websocket
// fan-out in internal/api is just one subscriber.
package events

import "time"

// Event kinds, one started/completed/failed triple per stage plus the
// upload notification.
const (
	CallUploaded = "call-uploaded"

	TranscriptionStarted   = "transcription-started"
	TranscriptionCompleted = "transcription-completed"
	TranscriptionFailed    = "transcription-failed"

	AnalysisStarted   = "analysis-started"
	AnalysisCompleted = "analysis-completed"
	AnalysisFailed    = "analysis-failed"

	CoachingStarted   = "coaching-generation-started"
	CoachingCompleted = "coaching-generation-completed"
	CoachingFailed    = "coaching-generation-failed"
)

// Event is one pipeline notification.
type Event struct {
	Type      string         `json:"type"`
	CallID    string         `json:"callId"`
	Status    string         `json:"status,omitempty"`
	Error     string         `json:"error,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// CallTopic names the per-call topic an event is published on.
func CallTopic(callID string) string {
	return "call-" + callID
}
