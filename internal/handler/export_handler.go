package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/ultra_import/internal/service"
	"github.com/GTDGit/ultra_import/internal/utils"
)

// Exporter runs one catalog export.
type Exporter interface {
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
}

// ExportHandler triggers catalog exports over HTTP.
type ExportHandler struct {
	exporter Exporter
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exporter Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

type createExportRequest struct {
	All    bool   `json:"all"`
	Output string `json:"output"`
}

// CreateExport handles POST /v1/admin/exports. The body is optional.
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req createExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.exporter.Export(c.Request.Context(), service.ExportRequest{
		FullSync:   req.All,
		OutputPath: req.Output,
	})
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.Success(c, 200, res.String(), gin.H{
		"runId":      res.RunID,
		"path":       res.Path,
		"fullSync":   res.FullSync,
		"stats":      res.Stats,
		"startedAt":  res.StartedAt,
		"durationMs": res.Duration.Milliseconds(),
	})
}
