package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fastmakeup/final-ver/service"
)

type ChatHandler struct {
	remote *service.RemoteClient
}

func NewChatHandler(remote *service.RemoteClient) *ChatHandler {
	return &ChatHandler{remote: remote}
}

type chatRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask relays a question about the analyzed documents to the remote
// service and returns its answer.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	resp, err := h.remote.Chat(c.Request.Context(), req.Question)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "chat service unavailable: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":  resp.Answer,
		"sources": resp.Sources,
	})
}
