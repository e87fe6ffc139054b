package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"call-coach-go/internal/coaching"
	"call-coach-go/internal/types"
)

func (s *Server) handleGenerateCoaching(c *gin.Context) {
	force := c.Query("force") == "true"
	ack, err := s.runner.StartCoaching(c.Param("callId"), userID(c), force)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if ack.Cached {
		c.JSON(http.StatusOK, gin.H{
			"callId":   ack.CallID,
			"status":   ack.Status,
			"cached":   true,
			"coaching": ack.Coaching,
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"callId": ack.CallID, "status": ack.Status})
}

func (s *Server) handleGetCoaching(c *gin.Context) {
	plan, err := s.ownedCoaching(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coaching": plan})
}

type progressRequest struct {
	ResourceType string `json:"resourceType" binding:"required"`
	ResourceID   string `json:"resourceId" binding:"required"`
}

func (s *Server) handleProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := s.ownedCoaching(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := coaching.ApplyResource(plan, req.ResourceType, req.ResourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.PutCoaching(plan); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"progress":           plan.Progress,
		"completionCriteria": plan.CompletionCriteria,
	})
}

type quizRequest struct {
	Answers []types.QuizAnswer `json:"answers" binding:"required"`
}

func (s *Server) handleQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := s.ownedCoaching(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := coaching.SubmitQuiz(plan, req.Answers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.PutCoaching(plan); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"score":              result.Score,
		"passed":             result.Passed,
		"bestScore":          result.BestScore,
		"isCompleted":        result.IsCompleted,
		"answers":            result.Answers,
		"completionCriteria": plan.CompletionCriteria,
	})
}

// ownedCoaching resolves the coaching plan for a call the caller owns.
func (s *Server) ownedCoaching(c *gin.Context) (*types.Coaching, error) {
	call, err := s.ownedCall(c, c.Param("callId"))
	if err != nil {
		return nil, err
	}
	return s.store.GetCoachingByCall(call.ID)
}
