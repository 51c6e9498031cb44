package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/tripassist/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	service flights.FlightUseCase
}

type policyResponse struct {
	Type        string `json:"policy_type"`
	AirlineCode string `json:"airline_code"`
	Text        string `json:"text"`
	SourceURL   string `json:"source_url,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

func NewPolicyHandler(service flights.FlightUseCase) *PolicyHandler {
	return &PolicyHandler{service: service}
}

func (h *PolicyHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:type", h.lookup)
}

func (h *PolicyHandler) list(c *gin.Context) {
	policies, err := h.service.Policies(c.Request.Context(), strings.TrimSpace(c.Query("airline")))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]policyResponse, 0, len(policies))
	for _, p := range policies {
		item := policyResponse{
			Type:        p.Type,
			AirlineCode: p.AirlineCode,
			Text:        p.Text,
			SourceURL:   p.SourceURL,
		}
		if !p.LastUpdated.IsZero() {
			item.LastUpdated = p.LastUpdated.Format(time.RFC3339)
		}
		resp = append(resp, item)
	}
	c.JSON(http.StatusOK, resp)
}

// lookup applies the default airline fallback; 404 only when neither airline
// has a document of that type.
func (h *PolicyHandler) lookup(c *gin.Context) {
	policyType := strings.TrimSpace(c.Param("type"))
	lookup, err := h.service.Policy(c.Request.Context(), policyType, c.Query("airline"))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(lookup.Documents) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
		return
	}
	c.JSON(http.StatusOK, lookup)
}
