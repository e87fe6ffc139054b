package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"call-coach-go/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleReport(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.WriteXLSX(s.store, userID(c), &buf); err != nil {
		s.respondError(c, err)
		return
	}
	name := "call-analyses-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
