package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/compiler"
	"er_diagram/internal/models"
	"er_diagram/internal/responses"
	"er_diagram/internal/services"
)

const exportFilename = "er_diagram.sql"

type DiagramHandler struct {
	diagramService *services.DiagramService
}

func NewDiagramHandler(diagramService *services.DiagramService) *DiagramHandler {
	return &DiagramHandler{
		diagramService: diagramService,
	}
}

type SaveDiagramResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Filename     string `json:"filename"`
	SQLGenerated bool   `json:"sql_generated"`
	ID           string `json:"id"`
}

func (h *DiagramHandler) save(c *gin.Context) (*SaveDiagramResponse, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, apperrors.InvalidInput("failed to read request body: %v", err)
	}
	d, err := models.DecodeDiagram(body)
	if err != nil {
		return nil, err
	}
	res, err := h.diagramService.Save(c.Request.Context(), d)
	if err != nil {
		return nil, err
	}
	return &SaveDiagramResponse{
		Success:      true,
		Message:      "Diagram saved successfully",
		Filename:     res.Handle.DiagramLocation,
		SQLGenerated: true,
		ID:           res.Handle.ID,
	}, nil
}

// SaveDiagram handles POST /api/v1/diagrams
func (h *DiagramHandler) SaveDiagram(c *gin.Context) {
	resp, err := h.save(c)
	if err != nil {
		fail(c, err, "Failed to save diagram")
		return
	}
	responses.Success(c, http.StatusCreated, resp, resp.Message)
}

// GetLatest handles GET /api/v1/diagrams/latest
func (h *DiagramHandler) GetLatest(c *gin.Context) {
	d, err := h.diagramService.LoadLatest(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to load diagram")
		return
	}

	canonical, err := json.Marshal(d)
	if err != nil {
		fail(c, err, "Failed to encode diagram")
		return
	}
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(canonical))
	c.Header("ETag", etag)
	if match := c.GetHeader("If-None-Match"); match != "" && etagMatches(match, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	responses.Success(c, http.StatusOK, d, "Diagram retrieved successfully")
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// ExportSQL handles GET /api/v1/diagrams/export and GET /export_sql.php
func (h *DiagramHandler) ExportSQL(c *gin.Context) {
	sql, err := h.diagramService.Export(c.Request.Context())
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status == http.StatusNotFound {
			c.String(status, "No diagram found. Please create and save a diagram first.")
			return
		}
		c.String(status, "Error loading diagram data: %v", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+exportFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sql))
}

// VisualizeSchema handles GET /api/v1/diagrams/latest/mermaid
func (h *DiagramHandler) VisualizeSchema(c *gin.Context) {
	mermaid, err := h.diagramService.Visualize(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to visualize schema")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(mermaid))
}

// UpdatePosition handles POST /api/v1/diagrams/latest/positions
func (h *DiagramHandler) UpdatePosition(c *gin.Context) {
	var req services.UpdatePositionRequest
	if err := c.ShouldBind(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	d, err := h.diagramService.UpdatePosition(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to update position")
		return
	}
	responses.Success(c, http.StatusOK, d, "Position updated successfully")
}

// ApplySchema handles POST /api/v1/diagrams/apply?variant=save|export
func (h *DiagramHandler) ApplySchema(c *gin.Context) {
	variant, err := compiler.ParseVariant(c.DefaultQuery("variant", "save"))
	if err != nil {
		fail(c, err, "Invalid variant")
		return
	}
	res, err := h.diagramService.Apply(c.Request.Context(), variant)
	if err != nil {
		if errors.Is(err, services.ErrNoApplyTarget) {
			responses.Fail(c, http.StatusServiceUnavailable, err, "Schema apply is not configured")
			return
		}
		fail(c, err, "Failed to apply schema")
		return
	}
	responses.Success(c, http.StatusOK, res, "Schema applied successfully")
}

// LegacySaveDiagram handles POST /save_diagram.php with the flat response
// body the editor expects.
func (h *DiagramHandler) LegacySaveDiagram(c *gin.Context) {
	resp, err := h.save(c)
	if err != nil {
		legacyFail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LegacyUpdatePosition handles POST /connection_handler.php
func (h *DiagramHandler) LegacyUpdatePosition(c *gin.Context) {
	var req services.UpdatePositionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.diagramService.UpdatePosition(c.Request.Context(), req); err != nil {
		legacyFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func fail(c *gin.Context, err error, message string) {
	responses.Fail(c, apperrors.HTTPStatus(err), err, message)
}

func legacyFail(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}
