package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/motivateai/rag/pkg/rag"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Data    any    `json:"data,omitempty"`
}

type wsQuery struct {
	Query     string  `json:"query"`
	K         int     `json:"k"`
	Threshold float64 `json:"threshold"`
	Filter    string  `json:"filter"`
}

// websocketQuery streams answer tokens for each query received on the
// connection, then sends the full result with its sources.
func (s *Server) websocketQuery(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var q wsQuery
		if err := conn.ReadJSON(&q); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Error("websocket read failed", "error", err)
			}
			return
		}

		if q.Query == "" {
			s.send(conn, wsMessage{Type: "error", Content: "Query cannot be empty"})
			continue
		}
		if q.K == 0 {
			q.K = s.config.DefaultK
		}
		if q.Threshold == 0 {
			q.Threshold = s.config.DefaultThreshold
		}

		result, err := s.engine.QueryStream(c.Request.Context(), rag.Request{
			Query:     q.Query,
			K:         q.K,
			Threshold: q.Threshold,
			Filter:    q.Filter,
		}, func(token string) {
			s.send(conn, wsMessage{Type: "stream", Content: token})
		})
		if err != nil {
			s.send(conn, wsMessage{Type: "error", Content: err.Error()})
			continue
		}

		s.send(conn, wsMessage{Type: "result", Data: result})
	}
}

func (s *Server) send(conn *websocket.Conn, msg wsMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Error("websocket write failed", "error", err)
	}
}
