package interpret

import (
	"regexp"
	"strconv"
	"strings"

	"call-coach-go/internal/types"
)

// Curated keyword sets for sentiment detection. Positive-only text reads
// positive, negative-only reads negative, both or neither read neutral.
var (
	positiveWords = []string{"happy", "satisfied", "pleased", "good", "great", "excellent"}
	negativeWords = []string{"angry", "frustrated", "upset", "bad", "poor", "terrible"}
)

const listPlaceholder = "Identified through AI analysis"

// analysisFromText mines a best-effort analysis out of free text. It only
// reports failure on empty input; any non-empty text yields the keyword
// defaults at minimum.
func analysisFromText(text string) (types.AnalysisPayload, bool) {
	if strings.TrimSpace(text) == "" {
		return types.AnalysisPayload{}, false
	}
	return types.AnalysisPayload{
		Scores: types.AnalysisScores{
			CallOpening: types.ScoreBlock{
				Score:    extractScore(text, []string{"opening", "greeting"}, 80),
				Feedback: "Analysis extracted from text response",
				Criteria: []string{"Greeting", "Introduction", "Purpose"},
			},
			IssueUnderstanding: types.ScoreBlock{
				Score:    extractScore(text, []string{"understanding", "comprehension"}, 70),
				Feedback: "Issue comprehension assessment from text",
				Criteria: []string{"Active listening", "Question asking", "Issue identification"},
			},
			Sentiment: types.SentimentBlock{
				AgentSentiment:    extractSentiment(text),
				CustomerSentiment: extractSentiment(text),
				OverallTone:       "professional",
				Feedback:          "Sentiment analysis from text",
			},
			CSAT: types.CSATBlock{
				PredictedScore: 4,
				Confidence:     75,
				Indicators:     extractListItems(text, []string{"satisfaction", "happy", "pleased"}),
				Feedback:       "Customer satisfaction analysis from text",
			},
			ResolutionQuality: types.ResolutionBlock{
				Score:      extractScore(text, []string{"resolution", "solution"}, 75),
				IsResolved: true,
				FCR:        true,
				Feedback:   "Resolution quality assessment from text",
			},
		},
		OverallScore:     extractScore(text, []string{"overall", "total", "score"}, 75),
		Strengths:        extractListItems(text, []string{"strength", "good", "positive", "well"}),
		ImprovementAreas: extractListItems(text, []string{"improve", "better", "weakness", "issue"}),
		KeyInsights:      extractListItems(text, []string{"insight", "observation", "note", "important"}),
	}, true
}

func coachingFromText(text string) (types.CoachingPayload, bool) {
	if strings.TrimSpace(text) == "" {
		return types.CoachingPayload{}, false
	}
	summary := firstSentence(text)
	if summary == "" {
		summary = "Coaching analysis completed using open-source AI"
	}
	detailed := text
	if len(detailed) > 500 {
		detailed = detailed[:500] + "..."
	}
	return types.CoachingPayload{
		PersonalizedFeedback: types.PersonalizedFeedback{
			Summary:          summary,
			DetailedFeedback: detailed,
			PriorityAreas:    extractListItems(text, []string{"priority", "focus", "important", "key"}),
			ActionItems:      extractListItems(text, []string{"action", "do", "practice", "work on"}),
		},
		RecommendedResources: types.RecommendedResources{
			Articles: []types.Article{{
				Title:             "AI-Generated Learning Resource",
				Description:       "Open-source AI coaching recommendations",
				URL:               "#",
				Category:          "coaching",
				EstimatedReadTime: 5,
			}},
			Videos:       []types.Video{},
			CallExamples: []types.CallExample{},
		},
		Quiz: types.Quiz{
			Questions:     []types.QuizQuestion{},
			PassingScore:  80,
			EstimatedTime: 5,
		},
	}, true
}

// extractScore returns the first number following any of the topic
// keywords, or the fallback when no keyword carries one.
func extractScore(text string, keywords []string, fallback int) int {
	for _, kw := range keywords {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw) + `[:\s]*([0-9]+(?:\.[0-9]+)?)`)
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return int(v)
			}
		}
	}
	return fallback
}

func extractSentiment(text string) string {
	lower := strings.ToLower(text)
	hasPositive := containsAny(lower, positiveWords)
	hasNegative := containsAny(lower, negativeWords)
	switch {
	case hasPositive && !hasNegative:
		return types.SentimentPositive
	case hasNegative && !hasPositive:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

// extractListItems collects the sentence fragments following each topic
// keyword, capped at three items. Required lists are never left empty; a
// generic placeholder stands in when nothing matched.
func extractListItems(text string, keywords []string) []string {
	var items []string
	for _, kw := range keywords {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw) + `s?[:\s]+([^.\n]+)`)
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			item := strings.TrimSpace(m[1])
			if len(item) > 3 {
				items = append(items, item)
			}
			if len(items) == 3 {
				return items
			}
		}
	}
	if len(items) == 0 {
		return []string{listPlaceholder}
	}
	return items
}

func firstSentence(text string) string {
	for _, s := range regexp.MustCompile(`[.!?]+`).Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			return s + "."
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
