package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleTranscribe(c *gin.Context) {
	ack, err := s.runner.StartTranscription(c.Param("callId"), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if ack.Cached {
		c.JSON(http.StatusOK, gin.H{
			"callId":     ack.CallID,
			"status":     ack.Status,
			"cached":     true,
			"transcript": ack.Transcript,
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"callId": ack.CallID, "status": ack.Status})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	ack, err := s.runner.StartAnalysis(c.Param("callId"), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if ack.Cached {
		c.JSON(http.StatusOK, gin.H{
			"callId":   ack.CallID,
			"status":   ack.Status,
			"cached":   true,
			"analysis": ack.Analysis,
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"callId": ack.CallID, "status": ack.Status})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	call, err := s.ownedCall(c, c.Param("callId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	analysis, err := s.store.GetAnalysisByCall(call.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
