package types

import "time"

// Sentiment values for agent/customer sentiment.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ScoreBlock is one scored quality dimension.
type ScoreBlock struct {
	Score    int      `json:"score"` // 0-100
	Feedback string   `json:"feedback,omitempty"`
	Criteria []string `json:"criteria,omitempty"`
}

type SentimentBlock struct {
	AgentSentiment    string `json:"agentSentiment"`    // positive | neutral | negative
	CustomerSentiment string `json:"customerSentiment"` // positive | neutral | negative
	OverallTone       string `json:"overallTone"`       // professional | friendly | neutral | tense | hostile
	Feedback          string `json:"feedback,omitempty"`
}

// CSATBlock is the predicted customer-satisfaction score.
type CSATBlock struct {
	PredictedScore int      `json:"predictedScore"` // 1-5
	Confidence     int      `json:"confidence"`     // 0-100
	Indicators     []string `json:"indicators,omitempty"`
	Feedback       string   `json:"feedback,omitempty"`
}

type ResolutionBlock struct {
	Score      int    `json:"score"` // 0-100
	IsResolved bool   `json:"isResolved"`
	FCR        bool   `json:"fcr"`
	Feedback   string `json:"feedback,omitempty"`
}

type AnalysisScores struct {
	CallOpening        ScoreBlock      `json:"callOpening"`
	IssueUnderstanding ScoreBlock      `json:"issueUnderstanding"`
	Sentiment          SentimentBlock  `json:"sentiment"`
	CSAT               CSATBlock       `json:"csat"`
	ResolutionQuality  ResolutionBlock `json:"resolutionQuality"`
}

// AnalysisPayload is the provider-produced portion of an analysis, before
// the runner attaches identity and timing.
type AnalysisPayload struct {
	Scores           AnalysisScores `json:"scores"`
	OverallScore     int            `json:"overallScore"`
	Strengths        []string       `json:"strengths"`
	ImprovementAreas []string       `json:"improvementAreas"`
	KeyInsights      []string       `json:"keyInsights"`
	Provider         string         `json:"provider,omitempty"`
}

// Analysis is the stored quality analysis of one call. At most one exists
// per call; re-analysis is rejected, not merged.
type Analysis struct {
	ID     string `json:"id"`
	CallID string `json:"callId"`
	UserID string `json:"userId"`
	AnalysisPayload
	ParseSource     string    `json:"parseSource,omitempty"` // structured | repaired | heuristic | default
	AnalyzedAt      time.Time `json:"analyzedAt"`
	AnalysisVersion string    `json:"analysisVersion"`
	ProcessingTime  int64     `json:"processingTime"` // milliseconds
}
