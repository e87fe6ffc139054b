// Package pipeline executes the three call-processing stages. A stage
// trigger validates preconditions synchronously, moves the call into its
// in-progress state with a compare-and-set, and returns at once; the work
// itself runs in a spawned task whose outcome is observable only through
// the persisted records and the published events. There is no return
// channel to the trigger and no mid-stage cancellation.
package pipeline

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"call-coach-go/internal/config"
	"call-coach-go/internal/events"
	"call-coach-go/internal/interpret"
	"call-coach-go/internal/logger"
	"call-coach-go/internal/provider"
	"call-coach-go/internal/store"
	"call-coach-go/internal/types"
)

// Precondition errors, reported synchronously to the trigger caller with
// no state change and no provider work.
var (
	ErrInvalidState      = errors.New("pipeline: call state does not allow this stage")
	ErrStageInProgress   = errors.New("pipeline: stage already in progress for this call")
	ErrTranscriptMissing = errors.New("pipeline: call must be transcribed before analysis")
	ErrAnalysisMissing   = errors.New("pipeline: call analysis not found, analyze the call first")
)

const analysisVersion = "1.0"

// Ack is the immediate answer to a stage trigger. Cached means the stage
// short-circuited on an existing result and nothing was started.
type Ack struct {
	CallID     string           `json:"callId"`
	Status     types.CallStatus `json:"status"`
	Cached     bool             `json:"cached,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
	Analysis   *types.Analysis  `json:"analysis,omitempty"`
	Coaching   *types.Coaching  `json:"coaching,omitempty"`
}

// Runner drives the pipeline. Stage tasks for different calls run fully in
// parallel; the store is the only shared state.
type Runner struct {
	store   *store.Store
	hub     *events.Hub
	gateway provider.Gateway
	cfg     *config.Config
	log     *logger.Logger

	wg sync.WaitGroup

	// Coaching has no in-progress call status, so concurrent coaching
	// triggers for one call are guarded in-process instead.
	mu               sync.Mutex
	coachingInflight map[string]struct{}
}

func NewRunner(st *store.Store, hub *events.Hub, gw provider.Gateway, cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		store:            st,
		hub:              hub,
		gateway:          gw,
		cfg:              cfg,
		log:              log.WithComponent("pipeline"),
		coachingInflight: make(map[string]struct{}),
	}
}

// Wait blocks until every in-flight stage task has finished. Used during
// shutdown and by tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// loadOwnedCall fetches the call and hides other users' calls behind
// not-found, same as the lookup the API layer does.
func (r *Runner) loadOwnedCall(callID, userID string) (*types.Call, error) {
	call, err := r.store.GetCall(callID)
	if err != nil {
		return nil, err
	}
	if userID != "" && call.UserID != userID {
		return nil, store.ErrNotFound
	}
	return call, nil
}

// StartTranscription begins the transcribe stage. A call whose transcript
// already exists answers with the cached transcript and performs no
// transition and no provider call.
func (r *Runner) StartTranscription(callID, userID string) (*Ack, error) {
	call, err := r.loadOwnedCall(callID, userID)
	if err != nil {
		return nil, err
	}
	if call.Status == types.StatusTranscribing {
		return nil, ErrStageInProgress
	}
	if call.Transcript != "" {
		return &Ack{CallID: callID, Status: call.Status, Cached: true, Transcript: call.Transcript}, nil
	}

	updated, err := r.store.UpdateCall(callID, func(c *types.Call) error {
		if c.Status == types.StatusTranscribing {
			return ErrStageInProgress
		}
		if !types.StageTranscription.CanStartFrom(c.Status) {
			return ErrInvalidState
		}
		c.Status = types.StatusTranscribing
		c.Error = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.publish(events.TranscriptionStarted, callID, string(updated.Status), nil)
	r.spawn(func() { r.runTranscription(updated) })
	return &Ack{CallID: callID, Status: updated.Status}, nil
}

// StartAnalysis begins the analyze stage. An existing analysis is returned
// as-is; re-analysis is rejected, not merged.
func (r *Runner) StartAnalysis(callID, userID string) (*Ack, error) {
	call, err := r.loadOwnedCall(callID, userID)
	if err != nil {
		return nil, err
	}
	if call.Transcript == "" {
		return nil, ErrTranscriptMissing
	}
	if existing, err := r.store.GetAnalysisByCall(callID); err == nil {
		return &Ack{CallID: callID, Status: call.Status, Cached: true, Analysis: existing}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	updated, err := r.store.UpdateCall(callID, func(c *types.Call) error {
		if c.Status == types.StatusAnalyzing {
			return ErrStageInProgress
		}
		if !types.StageAnalysis.CanStartFrom(c.Status) {
			return ErrInvalidState
		}
		c.Status = types.StatusAnalyzing
		c.Error = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.publish(events.AnalysisStarted, callID, string(updated.Status), nil)
	r.spawn(func() { r.runAnalysis(updated) })
	return &Ack{CallID: callID, Status: updated.Status}, nil
}

// StartCoaching begins the coach stage. The precondition is the existence
// of an analysis, not a particular call status, so coaching stays
// reachable even after a crash left call and analysis records
// inconsistent. An existing plan is returned unless force is set, in
// which case it is deleted and regenerated.
func (r *Runner) StartCoaching(callID, userID string, force bool) (*Ack, error) {
	call, err := r.loadOwnedCall(callID, userID)
	if err != nil {
		return nil, err
	}
	analysis, err := r.store.GetAnalysisByCall(callID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAnalysisMissing
		}
		return nil, err
	}

	if existing, err := r.store.GetCoachingByAnalysis(analysis.ID); err == nil {
		if !force {
			return &Ack{CallID: callID, Status: call.Status, Cached: true, Coaching: existing}, nil
		}
		if err := r.store.DeleteCoaching(existing); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	r.mu.Lock()
	if _, busy := r.coachingInflight[callID]; busy {
		r.mu.Unlock()
		return nil, ErrStageInProgress
	}
	r.coachingInflight[callID] = struct{}{}
	r.mu.Unlock()

	r.publish(events.CoachingStarted, callID, string(call.Status), nil)
	r.spawn(func() {
		defer func() {
			r.mu.Lock()
			delete(r.coachingInflight, callID)
			r.mu.Unlock()
		}()
		r.runCoaching(call, analysis)
	})
	return &Ack{CallID: callID, Status: call.Status}, nil
}

func (r *Runner) spawn(task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		task()
	}()
}

func (r *Runner) publish(event, callID, status string, payload map[string]any) {
	r.hub.Publish(events.CallTopic(callID), events.Event{
		Type:    event,
		CallID:  callID,
		Status:  status,
		Payload: payload,
	})
}

// fail records the stage failure on the call and notifies subscribers.
// Every stage task exits through either a success persist or this.
func (r *Runner) fail(callID string, stage types.Stage, cause error) {
	log := r.log.WithCall(callID).WithStage(string(stage))
	log.WithError(cause).Error("stage failed")

	_, err := r.store.UpdateCall(callID, func(c *types.Call) error {
		c.Status = types.StatusFailed
		c.Error = &types.CallError{
			Message:   cause.Error(),
			Step:      stage,
			Timestamp: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("failed to record stage failure")
	}
	r.hub.Publish(events.CallTopic(callID), events.Event{
		Type:   failedEvent(stage),
		CallID: callID,
		Status: string(types.StatusFailed),
		Error:  cause.Error(),
	})
}

func failedEvent(stage types.Stage) string {
	switch stage {
	case types.StageTranscription:
		return events.TranscriptionFailed
	case types.StageAnalysis:
		return events.AnalysisFailed
	default:
		return events.CoachingFailed
	}
}

func (r *Runner) runTranscription(call *types.Call) {
	log := r.log.WithCall(call.ID).WithStage(string(types.StageTranscription))
	log.Info("starting transcription")
	start := time.Now()

	audio, err := os.ReadFile(call.FilePath)
	if err != nil {
		r.fail(call.ID, types.StageTranscription, err)
		return
	}
	tr, err := r.gateway.Transcribe(context.Background(), audio)
	if err != nil {
		r.fail(call.ID, types.StageTranscription, err)
		return
	}

	now := time.Now().UTC()
	_, err = r.store.UpdateCall(call.ID, func(c *types.Call) error {
		c.Transcript = tr.Text
		c.DurationSeconds = tr.DurationSeconds
		c.Status = types.StatusTranscribed
		c.TranscriptionTime = &now
		c.Error = nil
		return nil
	})
	if err != nil {
		r.fail(call.ID, types.StageTranscription, err)
		return
	}

	elapsed := time.Since(start).Milliseconds()
	log.WithField("duration_ms", elapsed).Info("transcription completed")
	r.publish(events.TranscriptionCompleted, call.ID, string(types.StatusTranscribed), map[string]any{
		"transcript":     tr.Text,
		"duration":       tr.DurationSeconds,
		"processingTime": elapsed,
	})
}

func (r *Runner) runAnalysis(call *types.Call) {
	log := r.log.WithCall(call.ID).WithStage(string(types.StageAnalysis))
	log.Info("starting analysis")
	start := time.Now()

	raw, err := r.gateway.GenerateText(context.Background(), provider.TextRequest{
		Task:         provider.TaskAnalysis,
		Prompt:       provider.AnalysisPrompt(call.Transcript),
		Models:       r.cfg.AnalysisModels,
		MaxNewTokens: 1024,
		Temperature:  0.2,
		TopP:         0.95,
	})

	var result interpret.AnalysisResult
	if err != nil {
		// Provider variability never fails the stage; the result just
		// carries default provenance.
		log.WithError(err).Warn("generation failed, degrading to default analysis")
		result = interpret.DefaultAnalysis(r.gateway.Name())
	} else {
		result = interpret.ParseAnalysis(raw, r.gateway.Name())
	}

	analysis := &types.Analysis{
		ID:              uuid.New().String(),
		CallID:          call.ID,
		UserID:          call.UserID,
		AnalysisPayload: result.Payload,
		ParseSource:     string(result.Source),
		AnalyzedAt:      time.Now().UTC(),
		AnalysisVersion: analysisVersion,
		ProcessingTime:  time.Since(start).Milliseconds(),
	}
	if err := r.store.SaveAnalysis(analysis); err != nil {
		r.fail(call.ID, types.StageAnalysis, err)
		return
	}
	if _, err := r.store.UpdateCall(call.ID, func(c *types.Call) error {
		c.Status = types.StatusAnalyzed
		c.Error = nil
		return nil
	}); err != nil {
		r.fail(call.ID, types.StageAnalysis, err)
		return
	}

	log.WithField("duration_ms", analysis.ProcessingTime).WithField("parse_source", analysis.ParseSource).Info("analysis completed")
	r.publish(events.AnalysisCompleted, call.ID, string(types.StatusAnalyzed), map[string]any{
		"analysisId":     analysis.ID,
		"overallScore":   analysis.OverallScore,
		"parseSource":    analysis.ParseSource,
		"processingTime": analysis.ProcessingTime,
	})
}

func (r *Runner) runCoaching(call *types.Call, analysis *types.Analysis) {
	log := r.log.WithCall(call.ID).WithStage(string(types.StageCoaching))
	log.Info("starting coaching generation")
	start := time.Now()

	raw, err := r.gateway.GenerateText(context.Background(), provider.TextRequest{
		Task:         provider.TaskCoaching,
		Prompt:       provider.CoachingPrompt(analysis),
		Models:       r.cfg.CoachingModels,
		MaxNewTokens: 800,
		Temperature:  0.15,
		TopP:         0.95,
	})

	var result interpret.CoachingResult
	if err != nil {
		log.WithError(err).Warn("generation failed, degrading to default coaching plan")
		result = interpret.DefaultCoaching(r.gateway.Name())
	} else {
		result = interpret.ParseCoaching(raw, r.gateway.Name())
	}
	ensureResourceIDs(&result.Payload)

	now := time.Now().UTC()
	plan := &types.Coaching{
		ID:              uuid.New().String(),
		AnalysisID:      analysis.ID,
		CallID:          call.ID,
		UserID:          call.UserID,
		CoachingPayload: result.Payload,
		ParseSource:     string(result.Source),
		Progress: types.CoachingProgress{
			ArticlesRead:         []string{},
			VideosWatched:        []string{},
			CallExamplesReviewed: []string{},
			QuizAttempts:         []types.QuizAttempt{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.SaveCoaching(plan); err != nil {
		r.fail(call.ID, types.StageCoaching, err)
		return
	}
	if _, err := r.store.UpdateCall(call.ID, func(c *types.Call) error {
		c.Status = types.StatusCoachingGenerated
		c.Error = nil
		return nil
	}); err != nil {
		r.fail(call.ID, types.StageCoaching, err)
		return
	}

	elapsed := time.Since(start).Milliseconds()
	log.WithField("duration_ms", elapsed).WithField("parse_source", plan.ParseSource).Info("coaching plan generated")
	r.publish(events.CoachingCompleted, call.ID, string(types.StatusCoachingGenerated), map[string]any{
		"coachingId":     plan.ID,
		"parseSource":    plan.ParseSource,
		"processingTime": elapsed,
	})
}

// ensureResourceIDs assigns completion keys to resources and quiz
// questions the provider left without ids; progress tracking needs a
// stable key per item.
func ensureResourceIDs(p *types.CoachingPayload) {
	for i := range p.RecommendedResources.Articles {
		if p.RecommendedResources.Articles[i].ID == "" {
			p.RecommendedResources.Articles[i].ID = uuid.New().String()
		}
	}
	for i := range p.RecommendedResources.Videos {
		if p.RecommendedResources.Videos[i].ID == "" {
			p.RecommendedResources.Videos[i].ID = uuid.New().String()
		}
	}
	for i := range p.RecommendedResources.CallExamples {
		if p.RecommendedResources.CallExamples[i].ID == "" {
			p.RecommendedResources.CallExamples[i].ID = uuid.New().String()
		}
	}
	for i := range p.Quiz.Questions {
		if p.Quiz.Questions[i].ID == "" {
			p.Quiz.Questions[i].ID = uuid.New().String()
		}
	}
}
