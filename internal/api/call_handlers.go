package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"call-coach-go/internal/events"
	"call-coach-go/internal/store"
	"call-coach-go/internal/types"
)

var allowedAudioExt = map[string]string{
	".wav": "audio/wav",
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	if file.Size > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds maximum upload size"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	mime, ok := allowedAudioExt[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported audio format, use wav, mp3 or m4a"})
		return
	}

	var meta types.CallMetadata
	if raw := c.PostForm("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metadata json"})
			return
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.respondError(c, err)
		return
	}
	storedName := fmt.Sprintf("%s%s", id, ext)
	dst := filepath.Join(s.cfg.UploadDir, storedName)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.respondError(c, err)
		return
	}

	call := &types.Call{
		ID:           id,
		UserID:       userID(c),
		FileName:     storedName,
		OriginalName: file.Filename,
		FilePath:     dst,
		FileSize:     file.Size,
		MimeType:     mime,
		UploadedAt:   time.Now().UTC(),
		Status:       types.StatusUploaded,
		Metadata:     meta,
	}
	if err := s.store.SaveCall(call); err != nil {
		os.Remove(dst)
		s.respondError(c, err)
		return
	}

	s.hub.Publish(events.CallTopic(call.ID), events.Event{
		Type:   events.CallUploaded,
		CallID: call.ID,
		Status: string(call.Status),
	})
	c.JSON(http.StatusCreated, gin.H{"call": call})
}

func (s *Server) handleListCalls(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := types.CallStatus(c.Query("status"))

	calls, total, err := s.store.ListCalls(userID(c), status, offset, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": calls, "total": total, "offset": offset, "limit": limit})
}

func (s *Server) handleGetCall(c *gin.Context) {
	call, err := s.ownedCall(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": call})
}

// handleDeleteCall removes the call with its analysis, coaching plan and
// audio file.
func (s *Server) handleDeleteCall(c *gin.Context) {
	call, err := s.ownedCall(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	if plan, err := s.store.GetCoachingByCall(call.ID); err == nil {
		if err := s.store.DeleteCoaching(plan); err != nil {
			s.respondError(c, err)
			return
		}
	}
	if err := s.store.DeleteAnalysisByCall(call.ID); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.DeleteCall(call.ID); err != nil {
		s.respondError(c, err)
		return
	}
	if call.FilePath != "" {
		if err := os.Remove(call.FilePath); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).Warn("failed to remove audio file")
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": call.ID})
}

// ownedCall fetches a call and hides other users' calls behind not-found.
func (s *Server) ownedCall(c *gin.Context, id string) (*types.Call, error) {
	call, err := s.store.GetCall(id)
	if err != nil {
		return nil, err
	}
	if call.UserID != userID(c) {
		return nil, store.ErrNotFound
	}
	return call, nil
}
