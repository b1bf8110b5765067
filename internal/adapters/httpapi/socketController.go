package httpapi

import (
	"net/http"
	"strings"

	ws "postfeed/internal/adapters/websocket"
	"postfeed/internal/config"
	postPort "postfeed/internal/ports/post"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type SocketController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewSocketController(hub *ws.Hub, allowedOrigins []string) *SocketController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &SocketController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// Connect upgrades to a websocket session listening on the topics query
// parameter (comma separated, default the feed topic).
func (ctl *SocketController) Connect(c *gin.Context) {
	topics := parseTopics(c.Query("topics"))
	conn, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		config.Logger.Warn("⚠️ Websocket upgrade failed", zap.Error(err))
		return
	}
	client := ws.NewClient(ctl.hub, conn, topics)
	client.Start()
	config.Logger.Debug("websocket connected", zap.Uint64("client", client.ID()), zap.Strings("topics", topics))
}

func parseTopics(raw string) []string {
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return []string{postPort.FeedTopic}
	}
	return topics
}
