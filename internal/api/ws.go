package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"call-coach-go/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens via the token middleware; origins are not restricted.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// handleWS streams pipeline events for one call to the client. The caller
// must own the call. The connection closes when the client goes away; it
// is not required for any processing to happen.
func (s *Server) handleWS(c *gin.Context) {
	callID := c.Query("call")
	if callID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "call query parameter is required"})
		return
	}
	if _, err := s.ownedCall(c, callID); err != nil {
		s.respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	sub := s.hub.Subscribe(events.CallTopic(callID))
	go s.writeEvents(conn, sub)
	s.readUntilClose(conn, sub)
}

func (s *Server) writeEvents(conn *websocket.Conn, sub *events.Subscriber) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readUntilClose drains client frames so close handshakes and pongs are
// processed, then unsubscribes.
func (s *Server) readUntilClose(conn *websocket.Conn, sub *events.Subscriber) {
	defer s.hub.Unsubscribe(sub)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
