package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"instaforce.app/engine/common/id"
	"instaforce.app/engine/internal/http/dto"
	"instaforce.app/engine/internal/pipeline"
	"instaforce.app/engine/internal/service"
	"instaforce.app/engine/internal/store"
)

type RunHandler struct {
	service service.RunService
}

func NewRunHandler(service service.RunService) *RunHandler {
	return &RunHandler{service: service}
}

func (h *RunHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid run request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.service.Submit(ctx, req.Requirement)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyRequirement) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to submit run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit run"})
		return
	}

	c.JSON(http.StatusAccepted, dto.ToRunResponse(run, false))
}

func (h *RunHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	runID, err := id.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.service.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load run", "error", err, "run_id", runID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRunResponse(run, true))
}

func (h *RunHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = n
	}

	runs, err := h.service.ListRecent(ctx, int32(limit))
	if err != nil {
		slog.ErrorContext(ctx, "failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	resp := dto.ListRunsResponse{Runs: make([]dto.RunResponse, 0, len(runs))}
	for i := range runs {
		resp.Runs = append(resp.Runs, dto.ToRunResponse(&runs[i], false))
	}
	c.JSON(http.StatusOK, resp)
}
