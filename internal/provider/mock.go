package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"call-coach-go/internal/types"
)

const mockTranscript = "Hello, thank you for calling our customer service. I'm Sarah, how can I help you today? " +
	"Well, I'm having trouble with my recent order. It was supposed to arrive yesterday but I haven't received it yet. " +
	"I'm sorry to hear about that. Let me look up your order information. Can you please provide me with your order number? " +
	"Sure, it's ORDER-12345. Thank you. I can see your order here. It looks like there was a delay at our shipping facility, " +
	"but your package is now out for delivery and should arrive today by 6 PM. That's great news! " +
	"Is there anything else I can help you with? No, that's all. Thank you for your help. You're welcome! Have a great day!"

// Mock is the deterministic provider used when nothing is configured. It
// answers instantly with fixed, structurally complete results so the whole
// pipeline works offline.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (Mock) Name() string { return "mock" }

func (Mock) Transcribe(ctx context.Context, audio []byte) (Transcription, error) {
	return Transcription{
		Text:            mockTranscript,
		DurationSeconds: 184,
		Confidence:      0.92,
		Provider:        "mock",
	}, nil
}

func (Mock) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	switch req.Task {
	case TaskAnalysis:
		return marshalJSON(MockAnalysisPayload())
	case TaskCoaching:
		return marshalJSON(MockCoachingPayload())
	}
	return "", fmt.Errorf("mock: unknown task %q", req.Task)
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MockAnalysisPayload is the fixed analysis the mock provider produces.
// Exported so tests can assert against the exact values.
func MockAnalysisPayload() types.AnalysisPayload {
	return types.AnalysisPayload{
		Scores: types.AnalysisScores{
			CallOpening: types.ScoreBlock{
				Score:    90,
				Feedback: "Professional greeting with clear identification",
				Criteria: []string{"Greeting", "Introduction", "Purpose"},
			},
			IssueUnderstanding: types.ScoreBlock{
				Score:    80,
				Feedback: "Good listening skills and clarifying questions",
				Criteria: []string{"Active listening", "Question asking", "Issue identification"},
			},
			Sentiment: types.SentimentBlock{
				AgentSentiment:    types.SentimentPositive,
				CustomerSentiment: types.SentimentNeutral,
				OverallTone:       "professional",
				Feedback:          "Maintained professional tone throughout",
			},
			CSAT: types.CSATBlock{
				PredictedScore: 4,
				Confidence:     85,
				Indicators:     []string{"Issue resolved", "Professional service", "Quick response"},
				Feedback:       "Customer likely satisfied with resolution",
			},
			ResolutionQuality: types.ResolutionBlock{
				Score:      85,
				IsResolved: true,
				FCR:        true,
				Feedback:   "Issue resolved on first contact",
			},
		},
		OverallScore: 85,
		Strengths: []string{
			"Polite and professional greeting",
			"Clear communication throughout the call",
			"Efficient problem resolution",
			"Empathetic response to customer concern",
		},
		ImprovementAreas: []string{
			"Could have proactively offered tracking information",
			"Missed opportunity to explain shipping delay reasons",
			"Could have offered compensation for the inconvenience",
		},
		KeyInsights: []string{
			"Customer was initially frustrated but became satisfied",
			"Agent maintained professionalism throughout",
			"Resolution was efficient and effective",
		},
		Provider: "mock",
	}
}

// MockCoachingPayload is the fixed coaching plan the mock provider produces.
func MockCoachingPayload() types.CoachingPayload {
	return types.CoachingPayload{
		PersonalizedFeedback: types.PersonalizedFeedback{
			Summary: "Overall good performance with room for improvement in proactive service delivery.",
			DetailedFeedback: "You handled this call well with a professional tone and efficient resolution. " +
				"Consider being more proactive in future calls by offering additional information before the customer asks.",
			PriorityAreas: []string{
				"Proactive communication",
				"Customer retention strategies",
				"Compensation guidelines",
			},
			ActionItems: []string{
				"Review proactive communication techniques",
				"Practice offering goodwill gestures",
				"Study company compensation policies",
			},
		},
		RecommendedResources: types.RecommendedResources{
			Articles: []types.Article{{
				Title:             "Proactive Customer Service Excellence",
				Description:       "Learn how to anticipate customer needs and provide exceptional service",
				URL:               "https://example.com/proactive-service",
				Category:          "customer service",
				EstimatedReadTime: 8,
			}},
			Videos: []types.Video{{
				Title:       "Handling Shipping Delays Like a Pro",
				Description: "Best practices for managing delivery issues and customer expectations",
				URL:         "https://example.com/shipping-delays",
				Duration:    420,
				Category:    "problem resolution",
			}},
			CallExamples: []types.CallExample{{
				Title:       "Excellent Proactive Service Example",
				Description: "How to provide information before customers ask",
				Category:    "proactive service",
				Scores: map[string]int{
					"callOpening":        95,
					"issueUnderstanding": 90,
					"resolutionQuality":  92,
				},
			}},
		},
		Quiz: types.Quiz{
			Questions: []types.QuizQuestion{{
				ID:       "q1",
				Type:     "multiple-choice",
				Question: "When should you offer order tracking information?",
				Options: []string{
					"Only when the customer asks",
					"Proactively during delivery inquiries",
					"At the end of every call",
					"Never, customers should check online",
				},
				CorrectAnswer: "Proactively during delivery inquiries",
				Difficulty:    "easy",
				Category:      "proactive service",
			}},
			PassingScore:  80,
			EstimatedTime: 5,
		},
		Provider: "mock",
	}
}
