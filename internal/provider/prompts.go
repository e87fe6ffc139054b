package provider

import (
	"encoding/json"
	"fmt"

	"call-coach-go/internal/types"
)

// AnalysisPrompt asks the model for a strict-JSON quality assessment of
// one transcript.
func AnalysisPrompt(transcript string) string {
	return fmt.Sprintf(`Analyze this customer service call transcript and provide a detailed assessment:

"%s"

Return ONLY a JSON object with this structure (no commentary, no markdown fences):
{
  "scores": {
    "callOpening": {"score": 0-100, "feedback": "", "criteria": []},
    "issueUnderstanding": {"score": 0-100, "feedback": "", "criteria": []},
    "sentiment": {"agentSentiment": "positive|neutral|negative", "customerSentiment": "positive|neutral|negative", "overallTone": "professional|friendly|neutral|tense|hostile", "feedback": ""},
    "csat": {"predictedScore": 1-5, "confidence": 0-100, "indicators": [], "feedback": ""},
    "resolutionQuality": {"score": 0-100, "isResolved": true, "fcr": true, "feedback": ""}
  },
  "overallScore": 0-100,
  "strengths": [],
  "improvementAreas": [],
  "keyInsights": []
}`, transcript)
}

// CoachingPrompt asks the model for a personalized coaching plan built on a
// finished analysis.
func CoachingPrompt(analysis *types.Analysis) string {
	summary, _ := json.MarshalIndent(analysis.AnalysisPayload, "", "  ")
	return fmt.Sprintf(`Based on this call analysis, create a personalized coaching plan:

%s

Return ONLY a JSON object with this structure (no commentary, no markdown fences):
{
  "personalizedFeedback": {"summary": "", "detailedFeedback": "", "priorityAreas": [], "actionItems": []},
  "recommendedResources": {
    "articles": [{"title": "", "description": "", "url": "", "category": "", "estimatedReadTime": 0}],
    "videos": [{"title": "", "description": "", "url": "", "duration": 0, "category": ""}],
    "callExamples": [{"title": "", "description": "", "category": "", "scores": {}}]
  },
  "quiz": {
    "questions": [{"id": "", "type": "multiple-choice", "question": "", "options": [], "correctAnswer": "", "difficulty": "easy|medium|hard", "category": ""}],
    "passingScore": 80,
    "estimatedTime": 5
  }
}`, string(summary))
}
