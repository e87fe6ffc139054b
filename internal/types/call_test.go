package types

import "testing"

func TestStageCanStartFrom(t *testing.T) {
	tests := []struct {
		stage  Stage
		status CallStatus
		want   bool
	}{
		{StageTranscription, StatusUploaded, true},
		{StageTranscription, StatusFailed, true},
		{StageTranscription, StatusTranscribing, false},
		{StageTranscription, StatusTranscribed, false},
		{StageTranscription, StatusAnalyzed, false},

		{StageAnalysis, StatusTranscribed, true},
		{StageAnalysis, StatusFailed, true},
		{StageAnalysis, StatusUploaded, false},
		{StageAnalysis, StatusAnalyzing, false},
		{StageAnalysis, StatusCoachingGenerated, false},

		{StageCoaching, StatusAnalyzed, true},
		{StageCoaching, StatusCoachingGenerated, true},
		{StageCoaching, StatusFailed, true},
		{StageCoaching, StatusUploaded, false},
		{StageCoaching, StatusTranscribed, false},
	}
	for _, tt := range tests {
		if got := tt.stage.CanStartFrom(tt.status); got != tt.want {
			t.Errorf("%s.CanStartFrom(%s) = %v, want %v", tt.stage, tt.status, got, tt.want)
		}
	}
}

func TestStageInProgress(t *testing.T) {
	if st, ok := StageTranscription.InProgress(); !ok || st != StatusTranscribing {
		t.Errorf("transcription in-progress = %q, %v", st, ok)
	}
	if st, ok := StageAnalysis.InProgress(); !ok || st != StatusAnalyzing {
		t.Errorf("analysis in-progress = %q, %v", st, ok)
	}
	if _, ok := StageCoaching.InProgress(); ok {
		t.Error("coaching should have no in-progress status")
	}
}

func TestStageCompleted(t *testing.T) {
	tests := []struct {
		stage Stage
		want  CallStatus
	}{
		{StageTranscription, StatusTranscribed},
		{StageAnalysis, StatusAnalyzed},
		{StageCoaching, StatusCoachingGenerated},
	}
	for _, tt := range tests {
		if got := tt.stage.Completed(); got != tt.want {
			t.Errorf("%s.Completed() = %s, want %s", tt.stage, got, tt.want)
		}
	}
}
