package handler

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/fastmakeup/final-ver/service"
)

type AnalysisHandler struct {
	orchestrator *service.Orchestrator
	store        *service.ProjectStore
}

func NewAnalysisHandler(orchestrator *service.Orchestrator, store *service.ProjectStore) *AnalysisHandler {
	return &AnalysisHandler{orchestrator: orchestrator, store: store}
}

type analyzeRequest struct {
	Path string `json:"path" binding:"required"`
}

// Analyze runs the local pipeline over a document folder and returns
// the snapshot right away. The remote phase continues in the
// background; clients follow it through the status endpoint.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	info, err := os.Stat(req.Path)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is not a readable folder"})
		return
	}

	snapshot, err := h.orchestrator.AnalyzeFolder(req.Path)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// Marshal through the store so a merge landing between the call
	// above and this line cannot produce a half-written snapshot.
	raw, ok := h.store.SnapshotJSON(snapshot.ID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project disappeared during analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":   []json.RawMessage{raw},
		"totalFiles": snapshot.FileCount,
	})
}

// List returns a summary of all cached projects.
func (h *AnalysisHandler) List(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", h.store.ListJSON())
}

// Get returns the current snapshot of one project.
func (h *AnalysisHandler) Get(c *gin.Context) {
	raw, ok := h.store.SnapshotJSON(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Status reports the background analysis state of one project.
func (h *AnalysisHandler) Status(c *gin.Context) {
	raw, ok := h.store.StatusJSON(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
