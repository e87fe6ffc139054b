// Package coaching recomputes learning progress for a coaching plan.
// Resources contribute 70% of overall progress, passing the quiz the
// remaining 30%.
package coaching

import (
	"fmt"
	"math"
	"time"

	"call-coach-go/internal/types"
)

// Resource types accepted by ApplyResource.
const (
	ResourceArticle     = "article"
	ResourceVideo       = "video"
	ResourceCallExample = "callExample"
)

const (
	resourceWeight = 70.0
	quizWeight     = 30
)

// ApplyResource marks one resource completed and recomputes progress.
// Completing the same resource twice is a no-op.
func ApplyResource(c *types.Coaching, resourceType, resourceID string) error {
	switch resourceType {
	case ResourceArticle:
		c.Progress.ArticlesRead = appendUnique(c.Progress.ArticlesRead, resourceID)
	case ResourceVideo:
		c.Progress.VideosWatched = appendUnique(c.Progress.VideosWatched, resourceID)
	case ResourceCallExample:
		c.Progress.CallExamplesReviewed = appendUnique(c.Progress.CallExamplesReviewed, resourceID)
	default:
		return fmt.Errorf("coaching: unknown resource type %q", resourceType)
	}
	Recompute(c)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Recompute refreshes the completion criteria and the weighted overall
// progress from the current progress sets:
//
//	resourceProgress = completedResources / totalResources * 70
//	quizProgress     = 30 if bestQuizScore >= passingScore else 0
//	overallProgress  = round(resourceProgress + quizProgress)
func Recompute(c *types.Coaching) {
	total := c.RecommendedResources.Total()
	completed := len(c.Progress.ArticlesRead) +
		len(c.Progress.VideosWatched) +
		len(c.Progress.CallExamplesReviewed)

	resourceProgress := 0.0
	if total > 0 {
		resourceProgress = float64(completed) / float64(total) * resourceWeight
	}
	quizProgress := 0
	if c.Progress.BestQuizScore >= c.Quiz.PassingScore {
		quizProgress = quizWeight
	}
	c.CompletionCriteria.OverallProgress = int(math.Round(resourceProgress + float64(quizProgress)))

	c.CompletionCriteria.ReadArticles = len(c.Progress.ArticlesRead) == len(c.RecommendedResources.Articles)
	c.CompletionCriteria.WatchVideos = len(c.Progress.VideosWatched) == len(c.RecommendedResources.Videos)
	c.CompletionCriteria.ReviewCallExamples = len(c.Progress.CallExamplesReviewed) == len(c.RecommendedResources.CallExamples)
}

// QuizResult is what a quiz submission reports back to the learner.
type QuizResult struct {
	Score       int                `json:"score"`
	Passed      bool               `json:"passed"`
	BestScore   int                `json:"bestScore"`
	IsCompleted bool               `json:"isCompleted"`
	Answers     []types.QuizAnswer `json:"answers"`
}

func (r QuizResult) attempt() types.QuizAttempt {
	return types.QuizAttempt{
		AttemptDate: time.Now().UTC(),
		Score:       r.Score,
		Answers:     r.Answers,
	}
}

// SubmitQuiz scores the answers against the stored correct answers,
// records the attempt and advances completion. The best score never
// decreases. The first time all four completion criteria hold
// simultaneously, the plan flips to completed and overall progress is
// forced to 100.
func SubmitQuiz(c *types.Coaching, answers []types.QuizAnswer) (QuizResult, error) {
	if len(c.Quiz.Questions) == 0 {
		return QuizResult{}, fmt.Errorf("coaching: plan has no quiz questions")
	}

	byID := make(map[string]types.QuizQuestion, len(c.Quiz.Questions))
	for _, q := range c.Quiz.Questions {
		byID[q.ID] = q
	}

	correct := 0
	scored := make([]types.QuizAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		isCorrect := ok && q.CorrectAnswer == a.Answer
		if isCorrect {
			correct++
		}
		scored = append(scored, types.QuizAnswer{
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
			IsCorrect:  isCorrect,
		})
	}

	score := int(math.Round(float64(correct) / float64(len(c.Quiz.Questions)) * 100))
	result := QuizResult{
		Score:   score,
		Passed:  score >= c.Quiz.PassingScore,
		Answers: scored,
	}

	c.Progress.QuizAttempts = append(c.Progress.QuizAttempts, result.attempt())
	if score > c.Progress.BestQuizScore {
		c.Progress.BestQuizScore = score
	}
	result.BestScore = c.Progress.BestQuizScore
	c.CompletionCriteria.PassQuiz = result.Passed

	Recompute(c)

	allDone := c.CompletionCriteria.ReadArticles &&
		c.CompletionCriteria.WatchVideos &&
		c.CompletionCriteria.ReviewCallExamples &&
		c.CompletionCriteria.PassQuiz
	if allDone && !c.Progress.IsCompleted {
		now := time.Now().UTC()
		c.Progress.IsCompleted = true
		c.Progress.CompletedAt = &now
		c.CompletionCriteria.OverallProgress = 100
	}
	result.IsCompleted = c.Progress.IsCompleted
	c.UpdatedAt = time.Now().UTC()
	return result, nil
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}
