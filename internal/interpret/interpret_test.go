package interpret

import (
	"strings"
	"testing"

	"call-coach-go/internal/types"
)

const structuredAnalysis = `{
	"scores": {
		"callOpening": {"score": 92, "feedback": "Strong greeting"},
		"issueUnderstanding": {"score": 88},
		"sentiment": {"agentSentiment": "positive", "customerSentiment": "neutral", "overallTone": "professional"},
		"csat": {"predictedScore": 5, "confidence": 90},
		"resolutionQuality": {"score": 85, "isResolved": true, "fcr": true}
	},
	"overallScore": 89,
	"strengths": ["Clear greeting"],
	"improvementAreas": ["Faster verification"],
	"keyInsights": ["Customer stayed calm"]
}`

func TestParseAnalysisStructured(t *testing.T) {
	res := ParseAnalysis(structuredAnalysis, "mock")
	if res.Source != SourceStructured {
		t.Fatalf("source = %s, want %s", res.Source, SourceStructured)
	}
	if res.Payload.OverallScore != 89 {
		t.Errorf("overallScore = %d, want 89", res.Payload.OverallScore)
	}
	if res.Payload.Scores.CallOpening.Score != 92 {
		t.Errorf("callOpening = %d, want 92", res.Payload.Scores.CallOpening.Score)
	}
	if res.Payload.Provider != "mock" {
		t.Errorf("provider = %q, want mock", res.Payload.Provider)
	}
}

func TestParseAnalysisFencedAndProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n" + structuredAnalysis + "\n```\nLet me know if you need more."
	res := ParseAnalysis(raw, "ollama")
	if res.Source != SourceStructured {
		t.Fatalf("source = %s, want %s", res.Source, SourceStructured)
	}
	if res.Payload.OverallScore != 89 {
		t.Errorf("overallScore = %d, want 89", res.Payload.OverallScore)
	}
}

func TestParseAnalysisRepaired(t *testing.T) {
	// Trailing commas: invalid JSON that repair handles.
	raw := `{"scores": {"callOpening": {"score": 77},}, "overallScore": 77,}`
	res := ParseAnalysis(raw, "ollama")
	if res.Source != SourceRepaired {
		t.Fatalf("source = %s, want %s", res.Source, SourceRepaired)
	}
	if res.Payload.Scores.CallOpening.Score != 77 {
		t.Errorf("callOpening = %d, want 77", res.Payload.Scores.CallOpening.Score)
	}
}

func TestParseAnalysisHeuristic(t *testing.T) {
	raw := "The agent did well. Opening: 85. Understanding was weak, comprehension 60. Resolution: 90. Overall score 82. The customer sounded happy and satisfied."
	res := ParseAnalysis(raw, "huggingface")
	if res.Source != SourceHeuristic {
		t.Fatalf("source = %s, want %s", res.Source, SourceHeuristic)
	}
	p := res.Payload
	if p.Scores.CallOpening.Score != 85 {
		t.Errorf("opening = %d, want 85", p.Scores.CallOpening.Score)
	}
	if p.Scores.IssueUnderstanding.Score != 60 {
		t.Errorf("understanding = %d, want 60", p.Scores.IssueUnderstanding.Score)
	}
	if p.Scores.ResolutionQuality.Score != 90 {
		t.Errorf("resolution = %d, want 90", p.Scores.ResolutionQuality.Score)
	}
	if p.OverallScore != 82 {
		t.Errorf("overall = %d, want 82", p.OverallScore)
	}
	if p.Scores.Sentiment.CustomerSentiment != types.SentimentPositive {
		t.Errorf("sentiment = %q, want positive", p.Scores.Sentiment.CustomerSentiment)
	}
}

func TestParseAnalysisHeuristicDefaults(t *testing.T) {
	res := ParseAnalysis("nothing useful here", "mock")
	if res.Source != SourceHeuristic {
		t.Fatalf("source = %s, want %s", res.Source, SourceHeuristic)
	}
	p := res.Payload
	if p.Scores.CallOpening.Score != 80 || p.Scores.IssueUnderstanding.Score != 70 ||
		p.Scores.ResolutionQuality.Score != 75 || p.OverallScore != 75 {
		t.Errorf("keyword defaults = %d/%d/%d/%d, want 80/70/75/75",
			p.Scores.CallOpening.Score, p.Scores.IssueUnderstanding.Score,
			p.Scores.ResolutionQuality.Score, p.OverallScore)
	}
	if p.Scores.Sentiment.CustomerSentiment != types.SentimentNeutral {
		t.Errorf("sentiment = %q, want neutral", p.Scores.Sentiment.CustomerSentiment)
	}
}

func TestParseAnalysisDefault(t *testing.T) {
	res := ParseAnalysis("", "mock")
	if res.Source != SourceDefault {
		t.Fatalf("source = %s, want %s", res.Source, SourceDefault)
	}
	if res.Payload.OverallScore != 75 {
		t.Errorf("default overall = %d, want 75", res.Payload.OverallScore)
	}
	if res.Payload.Scores.CSAT.PredictedScore != 4 {
		t.Errorf("default csat = %d, want 4", res.Payload.Scores.CSAT.PredictedScore)
	}
}

func TestParseCoachingStructured(t *testing.T) {
	raw := `{
		"personalizedFeedback": {"summary": "Good call", "detailedFeedback": "Solid throughout"},
		"recommendedResources": {"articles": [{"title": "Openings"}], "videos": [], "callExamples": []},
		"quiz": {"questions": [{"question": "Q?", "correctAnswer": "A"}]}
	}`
	res := ParseCoaching(raw, "mock")
	if res.Source != SourceStructured {
		t.Fatalf("source = %s, want %s", res.Source, SourceStructured)
	}
	if res.Payload.PersonalizedFeedback.Summary != "Good call" {
		t.Errorf("summary = %q", res.Payload.PersonalizedFeedback.Summary)
	}
	if res.Payload.Quiz.PassingScore != 80 {
		t.Errorf("passingScore defaulted to %d, want 80", res.Payload.Quiz.PassingScore)
	}
}

func TestParseCoachingHeuristic(t *testing.T) {
	raw := "Focus on active listening in future calls. The detailed review shows the agent should practice summarizing the issue back to the customer before proposing a fix."
	res := ParseCoaching(raw, "ollama")
	if res.Source != SourceHeuristic {
		t.Fatalf("source = %s, want %s", res.Source, SourceHeuristic)
	}
	if got := res.Payload.PersonalizedFeedback.Summary; got != "Focus on active listening in future calls." {
		t.Errorf("summary = %q", got)
	}
	if len(res.Payload.RecommendedResources.Articles) != 1 {
		t.Errorf("articles = %d, want 1 placeholder", len(res.Payload.RecommendedResources.Articles))
	}
}

func TestParseCoachingDefault(t *testing.T) {
	res := ParseCoaching("   ", "huggingface")
	if res.Source != SourceDefault {
		t.Fatalf("source = %s, want %s", res.Source, SourceDefault)
	}
	want := "Coaching analysis completed using huggingface models"
	if res.Payload.PersonalizedFeedback.Summary != want {
		t.Errorf("summary = %q, want %q", res.Payload.PersonalizedFeedback.Summary, want)
	}
}

func TestExtractJSONBalanced(t *testing.T) {
	raw := `noise before {"a": {"b": "contains } brace in string"}, "c": 1} noise after {"d": 2}`
	got := extractJSON(raw)
	want := `{"a": {"b": "contains } brace in string"}, "c": 1}`
	if got != want {
		t.Errorf("extractJSON = %q, want %q", got, want)
	}
}

func TestExtractJSONUnbalancedReturnsTail(t *testing.T) {
	raw := `prefix {"a": 1, "b": {"c": 2}`
	got := extractJSON(raw)
	if !strings.HasPrefix(got, `{"a": 1`) {
		t.Errorf("extractJSON = %q, want tail starting at first brace", got)
	}
}

func TestExtractSentiment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"the customer was happy and satisfied", types.SentimentPositive},
		{"the customer was angry and frustrated", types.SentimentNegative},
		{"the customer was happy then angry", types.SentimentNeutral},
		{"no signal at all", types.SentimentNeutral},
	}
	for _, tt := range tests {
		if got := extractSentiment(tt.text); got != tt.want {
			t.Errorf("extractSentiment(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractListItemsCapAndPlaceholder(t *testing.T) {
	text := "strength: clear greeting. strength: calm tone. strength: fast resolution. strength: good closing."
	items := extractListItems(text, []string{"strength"})
	if len(items) != 3 {
		t.Fatalf("items = %d, want cap of 3", len(items))
	}

	empty := extractListItems("no matches here", []string{"strength"})
	if len(empty) != 1 || empty[0] != listPlaceholder {
		t.Errorf("empty match = %v, want single placeholder", empty)
	}
}

func TestExtractScore(t *testing.T) {
	if got := extractScore("opening: 88.5 overall 90", []string{"opening"}, 10); got != 88 {
		t.Errorf("score = %d, want 88", got)
	}
	if got := extractScore("nothing", []string{"opening"}, 42); got != 42 {
		t.Errorf("fallback = %d, want 42", got)
	}
}
