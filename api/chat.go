package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/tripassist/internal/auth"
	"github.com/Domenick1991/tripassist/internal/service/assistant"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	maxFrameSize = 4096
)

// ChatSocketHandler serves the conversation over a websocket: every text
// frame is one user message and is answered with one text frame.
type ChatSocketHandler struct {
	assistant assistant.AssistantUseCase
	tokens    *auth.Service
	upgrader  websocket.Upgrader
	log       logrus.FieldLogger
}

// NewChatSocketHandler builds the handler. tokens may be nil, in which case
// the ?token= parameter is ignored. Browsers may connect from the same host
// or from one of allowedOrigins; "*" admits any origin.
func NewChatSocketHandler(a assistant.AssistantUseCase, tokens *auth.Service, allowedOrigins []string, log logrus.FieldLogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		assistant: a,
		tokens:    tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

// originChecker admits requests without an Origin header (non-browser
// clients), same-host origins and the listed ones.
func originChecker(allowed []string) func(r *http.Request) bool {
	listed := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		listed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := listed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (h *ChatSocketHandler) Register(router gin.IRoutes) {
	router.GET("/ws", h.serve)
}

func (h *ChatSocketHandler) serve(c *gin.Context) {
	userID := resolveUserID(c, c.Query("user_id"), assistant.DefaultUserID)
	if token := c.Query("token"); token != "" && h.tokens != nil {
		claims, err := h.tokens.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		userID = claims.UserID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	log := h.log.WithFields(logrus.Fields{"user_id": userID, "request_id": c.GetString(requestIDKey)})
	log.Info("chat connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		_ = conn.Close()
		log.Info("chat disconnected")
	}()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go pingLoop(conn, done)
	h.readLoop(c.Request.Context(), conn, userID, log)
}

// pingLoop sends control frames only; WriteControl is safe alongside the
// data frames written by readLoop.
func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *ChatSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, userID string, log logrus.FieldLogger) {
	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("chat read failed")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		text := strings.TrimSpace(string(raw))
		reply := queryRequiredMessage
		if text != "" {
			reply = h.assistant.Handle(ctx, userID, text)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			log.WithError(err).Warn("chat write failed")
			return
		}
	}
}
