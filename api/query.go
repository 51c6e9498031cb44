package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/tripassist/internal/service/assistant"
	"github.com/Domenick1991/tripassist/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	welcomeMessage       = "Welcome to the Trip Assistant API!"
	queryRequiredMessage = "Query text is required."
)

type QueryHandler struct {
	assistant assistant.AssistantUseCase
}

type queryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

type queryResponse struct {
	Response string `json:"response"`
	UserID   string `json:"user_id"`
}

type historyResponse struct {
	UserID string         `json:"user_id"`
	Turns  []session.Turn `json:"turns"`
}

func NewQueryHandler(a assistant.AssistantUseCase) *QueryHandler {
	return &QueryHandler{assistant: a}
}

func (h *QueryHandler) Register(router gin.IRoutes) {
	router.GET("/", h.welcome)
	router.GET("/query", h.ask)
	router.POST("/query", h.query)
	router.GET("/history", h.history)
}

func (h *QueryHandler) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
}

func (h *QueryHandler) ask(c *gin.Context) {
	h.respond(c, c.Query("query"), c.Query("user_id"))
}

func (h *QueryHandler) query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, req.Query, req.UserID)
}

func (h *QueryHandler) respond(c *gin.Context, text, userID string) {
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": queryRequiredMessage})
		return
	}
	userID = resolveUserID(c, userID, assistant.DefaultUserID)
	reply := h.assistant.Handle(c.Request.Context(), userID, text)
	c.JSON(http.StatusOK, queryResponse{Response: reply, UserID: userID})
}

func (h *QueryHandler) history(c *gin.Context) {
	userID := resolveUserID(c, c.Query("user_id"), assistant.DefaultUserID)
	turns, err := h.assistant.Transcript(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if turns == nil {
		turns = []session.Turn{}
	}
	c.JSON(http.StatusOK, historyResponse{UserID: userID, Turns: turns})
}
