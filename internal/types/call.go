package types

import "time"

// CallStatus is the lifecycle state of an uploaded call.
type CallStatus string

const (
	StatusUploaded          CallStatus = "uploaded"
	StatusTranscribing      CallStatus = "transcribing"
	StatusTranscribed       CallStatus = "transcribed"
	StatusAnalyzing         CallStatus = "analyzing"
	StatusAnalyzed          CallStatus = "analyzed"
	StatusCoachingGenerated CallStatus = "coaching-generated"
	StatusFailed            CallStatus = "failed"
)

// Stage names one pipeline step. The value is what ends up in
// CallError.Step when that step fails.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
	StageCoaching      Stage = "coaching"
)

// EntryStates returns the call statuses from which the stage may legally
// start. "failed" is accepted everywhere so an explicit re-trigger after a
// failure always has a legal transition; nothing retries automatically.
func (s Stage) EntryStates() []CallStatus {
	switch s {
	case StageTranscription:
		return []CallStatus{StatusUploaded, StatusFailed}
	case StageAnalysis:
		return []CallStatus{StatusTranscribed, StatusFailed}
	case StageCoaching:
		return []CallStatus{StatusAnalyzed, StatusCoachingGenerated, StatusFailed}
	}
	return nil
}

// InProgress returns the status a call holds while the stage runs.
// Coaching has no dedicated in-progress status; the runner guards
// concurrent coaching triggers in-process instead.
func (s Stage) InProgress() (CallStatus, bool) {
	switch s {
	case StageTranscription:
		return StatusTranscribing, true
	case StageAnalysis:
		return StatusAnalyzing, true
	}
	return "", false
}

// Completed returns the status a call moves to when the stage succeeds.
func (s Stage) Completed() CallStatus {
	switch s {
	case StageTranscription:
		return StatusTranscribed
	case StageAnalysis:
		return StatusAnalyzed
	case StageCoaching:
		return StatusCoachingGenerated
	}
	return StatusFailed
}

// CanStartFrom reports whether the stage may begin on a call currently in
// the given status.
func (s Stage) CanStartFrom(status CallStatus) bool {
	for _, st := range s.EntryStates() {
		if st == status {
			return true
		}
	}
	return false
}

// CallError records why and where a pipeline stage failed.
type CallError struct {
	Message   string    `json:"message"`
	Step      Stage     `json:"step"`
	Timestamp time.Time `json:"timestamp"`
}

type CallMetadata struct {
	CustomerInfo string    `json:"customerInfo,omitempty"`
	AgentInfo    string    `json:"agentInfo,omitempty"`
	CallDate     time.Time `json:"callDate,omitempty"`
	CallType     string    `json:"callType,omitempty"` // inbound | outbound
}

// Call is one audio submission moving through the pipeline.
type Call struct {
	ID                string       `json:"id"`
	UserID            string       `json:"userId"`
	FileName          string       `json:"fileName"`
	OriginalName      string       `json:"originalName"`
	FilePath          string       `json:"-"`
	FileSize          int64        `json:"fileSize"`
	MimeType          string       `json:"mimeType"`
	DurationSeconds   float64      `json:"duration,omitempty"`
	UploadedAt        time.Time    `json:"uploadedAt"`
	Status            CallStatus   `json:"status"`
	Transcript        string       `json:"transcript,omitempty"`
	TranscriptionTime *time.Time   `json:"transcriptionTime,omitempty"`
	Metadata          CallMetadata `json:"metadata"`
	Error             *CallError   `json:"error,omitempty"`
}
