package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bridge/internal/model"
	"bridge/internal/service"
)

// PoeHandler receives conversational turns on the chat-platform
// webhook. The conversational contract is: always HTTP 200 with a text
// reply — never a transport-level error the caller would show raw.
type PoeHandler struct {
	bridge *service.Bridge
}

// NewPoeHandler creates a new webhook handler.
func NewPoeHandler(bridge *service.Bridge) *PoeHandler {
	return &PoeHandler{bridge: bridge}
}

// HandleTurn handles POST /poe
func (h *PoeHandler) HandleTurn(c *gin.Context) {
	var req model.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, model.TurnResponse{Text: service.MsgNeutralAck})
		return
	}

	// Settings/health probes are answered without touching any session.
	if req.Type == "settings" {
		c.JSON(http.StatusOK, model.TurnResponse{Text: "ok"})
		return
	}

	if req.ConversationID == "" || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusOK, model.TurnResponse{Text: service.MsgNeutralAck})
		return
	}

	reply := h.bridge.HandleTurn(c.Request.Context(), &req)
	c.JSON(http.StatusOK, model.TurnResponse{Text: reply})
}
