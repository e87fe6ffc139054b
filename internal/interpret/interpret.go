// Package interpret converts raw provider output into the canonical
// analysis and coaching shapes. Parsing degrades in a fixed order: the
// response is used directly when it already has the expected structure,
// repaired and reparsed when it is almost-JSON, mined with textual
// heuristics when it is free text, and replaced by a fixed default when
// nothing can be extracted. The provenance tag records which layer
// produced the result so downstream consumers can tell a real analysis
// from a placeholder without string-sniffing.
package interpret

import (
	"encoding/json"

	"call-coach-go/internal/types"
)

// Source tags how a result was obtained.
type Source string

const (
	SourceStructured Source = "structured" // response already had the expected shape
	SourceRepaired   Source = "repaired"   // malformed JSON recovered by repair
	SourceHeuristic  Source = "heuristic"  // mined out of free text
	SourceDefault    Source = "default"    // fixed fallback, no signal from the provider
)

type AnalysisResult struct {
	Payload types.AnalysisPayload
	Source  Source
}

type CoachingResult struct {
	Payload types.CoachingPayload
	Source  Source
}

// ParseAnalysis interprets a raw text-generation response for the analyze
// stage. It never fails; the worst case is the documented default.
func ParseAnalysis(raw, providerName string) AnalysisResult {
	if candidate := extractJSON(raw); candidate != "" {
		if payload, src, ok := decodeAnalysis(candidate); ok {
			payload.Provider = providerName
			return AnalysisResult{Payload: payload, Source: src}
		}
	}
	if payload, ok := analysisFromText(raw); ok {
		payload.Provider = providerName
		return AnalysisResult{Payload: payload, Source: SourceHeuristic}
	}
	return DefaultAnalysis(providerName)
}

// ParseCoaching interprets a raw text-generation response for the coach
// stage.
func ParseCoaching(raw, providerName string) CoachingResult {
	if candidate := extractJSON(raw); candidate != "" {
		if payload, src, ok := decodeCoaching(candidate); ok {
			payload.Provider = providerName
			return CoachingResult{Payload: payload, Source: src}
		}
	}
	if payload, ok := coachingFromText(raw); ok {
		payload.Provider = providerName
		return CoachingResult{Payload: payload, Source: SourceHeuristic}
	}
	return DefaultCoaching(providerName)
}

func decodeAnalysis(candidate string) (types.AnalysisPayload, Source, bool) {
	data, src, ok := looseJSON(candidate)
	if !ok {
		return types.AnalysisPayload{}, "", false
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return types.AnalysisPayload{}, "", false
	}
	if _, hasScores := top["scores"]; !hasScores {
		return types.AnalysisPayload{}, "", false
	}
	var payload types.AnalysisPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return types.AnalysisPayload{}, "", false
	}
	return payload, src, true
}

func decodeCoaching(candidate string) (types.CoachingPayload, Source, bool) {
	data, src, ok := looseJSON(candidate)
	if !ok {
		return types.CoachingPayload{}, "", false
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return types.CoachingPayload{}, "", false
	}
	if _, hasFeedback := top["personalizedFeedback"]; !hasFeedback {
		return types.CoachingPayload{}, "", false
	}
	var payload types.CoachingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return types.CoachingPayload{}, "", false
	}
	if payload.Quiz.PassingScore == 0 {
		payload.Quiz.PassingScore = 80
	}
	return payload, src, true
}

// DefaultAnalysis is the fixed result used when the provider was
// unreachable or unparseable through every layer above.
func DefaultAnalysis(providerName string) AnalysisResult {
	return AnalysisResult{
		Source: SourceDefault,
		Payload: types.AnalysisPayload{
			Scores: types.AnalysisScores{
				CallOpening: types.ScoreBlock{
					Score:    80,
					Feedback: "Standard call opening evaluation",
					Criteria: []string{"Greeting", "Introduction", "Purpose"},
				},
				IssueUnderstanding: types.ScoreBlock{
					Score:    70,
					Feedback: "Issue comprehension assessment",
					Criteria: []string{"Active listening", "Question asking", "Issue identification"},
				},
				Sentiment: types.SentimentBlock{
					AgentSentiment:    types.SentimentPositive,
					CustomerSentiment: types.SentimentNeutral,
					OverallTone:       "professional",
					Feedback:          "Default sentiment analysis",
				},
				CSAT: types.CSATBlock{
					PredictedScore: 4,
					Confidence:     75,
					Indicators:     []string{"Professional service"},
					Feedback:       "Default satisfaction prediction",
				},
				ResolutionQuality: types.ResolutionBlock{
					Score:      75,
					IsResolved: true,
					FCR:        true,
					Feedback:   "Default resolution assessment",
				},
			},
			OverallScore:     75,
			Strengths:        []string{"Professional communication", "Efficient handling"},
			ImprovementAreas: []string{"Response time", "Proactive communication"},
			KeyInsights:      []string{"Default analysis generated", "Professional interaction maintained"},
			Provider:         providerName,
		},
	}
}

// DefaultCoaching is the fixed coaching fallback.
func DefaultCoaching(providerName string) CoachingResult {
	return CoachingResult{
		Source: SourceDefault,
		Payload: types.CoachingPayload{
			PersonalizedFeedback: types.PersonalizedFeedback{
				Summary:          "Coaching analysis completed using " + providerName + " models",
				DetailedFeedback: "Generated coaching recommendations based on AI analysis",
				PriorityAreas:    []string{"Communication skills", "Customer service excellence"},
				ActionItems:      []string{"Review call handling procedures", "Practice empathy techniques"},
			},
			RecommendedResources: types.RecommendedResources{
				Articles:     []types.Article{},
				Videos:       []types.Video{},
				CallExamples: []types.CallExample{},
			},
			Quiz: types.Quiz{
				Questions:     []types.QuizQuestion{},
				PassingScore:  80,
				EstimatedTime: 5,
			},
			Provider: providerName,
		},
	}
}
