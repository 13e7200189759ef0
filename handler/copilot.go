package handler

import (
	"net/http"

	"github.com/XyloTech/GOVERN.AI/service"
	"github.com/gin-gonic/gin"
)

type CopilotHandler struct {
	copilot *service.CopilotService
}

func NewCopilotHandler(copilot *service.CopilotService) *CopilotHandler {
	return &CopilotHandler{copilot: copilot}
}

type copilotQueryRequest struct {
	Query   string                  `json:"query" binding:"required"`
	Filters *service.CopilotFilters `json:"filters"`
}

// Query answers a natural language question about the contract corpus.
func (h *CopilotHandler) Query(c *gin.Context) {
	var req copilotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	answer, err := h.copilot.ProcessQuery(c.Request.Context(), req.Query, req.Filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query"})
		return
	}

	c.JSON(http.StatusOK, answer)
}
