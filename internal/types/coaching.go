package types

import "time"

type PersonalizedFeedback struct {
	Summary          string   `json:"summary"`
	DetailedFeedback string   `json:"detailedFeedback"`
	PriorityAreas    []string `json:"priorityAreas"`
	ActionItems      []string `json:"actionItems"`
}

type Article struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	URL               string `json:"url,omitempty"`
	Category          string `json:"category,omitempty"`
	EstimatedReadTime int    `json:"estimatedReadTime,omitempty"` // minutes
}

type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Duration    int    `json:"duration,omitempty"` // seconds
	Category    string `json:"category,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

type CallExample struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	AudioURL      string         `json:"audioUrl,omitempty"`
	TranscriptURL string         `json:"transcriptUrl,omitempty"`
	Category      string         `json:"category,omitempty"`
	Scores        map[string]int `json:"scores,omitempty"`
}

type RecommendedResources struct {
	Articles     []Article     `json:"articles"`
	Videos       []Video       `json:"videos"`
	CallExamples []CallExample `json:"callExamples"`
}

// Total is the number of resources across all three lists.
func (r RecommendedResources) Total() int {
	return len(r.Articles) + len(r.Videos) + len(r.CallExamples)
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"` // multiple-choice | true-false | scenario
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	Category      string   `json:"category,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"` // easy | medium | hard
}

type Quiz struct {
	Questions     []QuizQuestion `json:"questions"`
	PassingScore  int            `json:"passingScore"`
	EstimatedTime int            `json:"estimatedTime"` // minutes
}

// QuizAnswer is one learner answer, scored against the stored correct answer.
type QuizAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"isCorrect"`
}

type QuizAttempt struct {
	AttemptDate time.Time    `json:"attemptDate"`
	Score       int          `json:"score"`
	Answers     []QuizAnswer `json:"answers"`
}

type CompletionCriteria struct {
	ReadArticles       bool `json:"readArticles"`
	WatchVideos        bool `json:"watchVideos"`
	ReviewCallExamples bool `json:"reviewCallExamples"`
	PassQuiz           bool `json:"passQuiz"`
	OverallProgress    int  `json:"overallProgress"` // 0-100
}

type CoachingProgress struct {
	ArticlesRead         []string      `json:"articlesRead"`
	VideosWatched        []string      `json:"videosWatched"`
	CallExamplesReviewed []string      `json:"callExamplesReviewed"`
	QuizAttempts         []QuizAttempt `json:"quizAttempts"`
	BestQuizScore        int           `json:"bestQuizScore"`
	IsCompleted          bool          `json:"isCompleted"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
}

// CoachingPayload is the provider-produced portion of a coaching plan.
type CoachingPayload struct {
	PersonalizedFeedback PersonalizedFeedback `json:"personalizedFeedback"`
	RecommendedResources RecommendedResources `json:"recommendedResources"`
	Quiz                 Quiz                 `json:"quiz"`
	Provider             string               `json:"provider,omitempty"`
}

// Coaching is the stored coaching plan for one analysis. At most one exists
// per analysis. Progress and completion criteria are the only fields mutated
// after creation.
type Coaching struct {
	ID         string `json:"id"`
	AnalysisID string `json:"analysisId"`
	CallID     string `json:"callId"`
	UserID     string `json:"userId"`
	CoachingPayload
	ParseSource        string             `json:"parseSource,omitempty"`
	CompletionCriteria CompletionCriteria `json:"completionCriteria"`
	Progress           CoachingProgress   `json:"progress"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}
