package controller

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/itish2003/lawgic/models"
	"github.com/itish2003/lawgic/services"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecks are the dependencies reported by GET /health. Store and Index
// may be nil.
type HealthChecks struct {
	Store      Pinger
	Index      services.VectorIndex
	LocalModel bool
	LLM        bool
}

// AnalysisController handles the LawGic HTTP API. It depends on the
// AnalysisService for everything except request decoding.
type AnalysisController struct {
	analysis *services.AnalysisService
	health   HealthChecks
}

func NewAnalysisController(analysis *services.AnalysisService, health HealthChecks) *AnalysisController {
	return &AnalysisController{analysis: analysis, health: health}
}

// Analyze is the handler for POST /api/analyze/.
func (c *AnalysisController) Analyze(ctx *gin.Context) {
	c.handleAnalysis(ctx, services.TaskAnalysis)
}

// Research is the handler for POST /api/research/.
func (c *AnalysisController) Research(ctx *gin.Context) {
	c.handleAnalysis(ctx, services.TaskResearch)
}

func (c *AnalysisController) handleAnalysis(ctx *gin.Context, task services.Task) {
	req, err := bindAnalysisRequest(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	req.Task = task
	ctx.JSON(http.StatusOK, c.analysis.Analyze(ctx.Request.Context(), req))
}

// Predict is the handler for POST /api/predict/. Nothing is stored.
func (c *AnalysisController) Predict(ctx *gin.Context) {
	var req models.PredictRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, models.PredictResponse{
		Input:      req.Text,
		Prediction: c.analysis.Predict(ctx.Request.Context(), req.Text),
	})
}

func (c *AnalysisController) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Welcome to LawGic AI Backend"})
}

// Health reports "ok" when the database answers and "degraded" otherwise.
// The server keeps answering requests either way.
func (c *AnalysisController) Health(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	resp := models.HealthResponse{
		Status:      "ok",
		Database:    "connected",
		LocalModel:  c.health.LocalModel,
		LLM:         c.health.LLM,
		VectorIndex: "disabled",
	}
	if c.health.Store == nil || c.health.Store.Ping(reqCtx) != nil {
		resp.Status = "degraded"
		resp.Database = "unavailable"
	}
	if c.health.Index != nil {
		resp.VectorIndex = "connected"
		if _, err := c.health.Index.Count(reqCtx); err != nil {
			resp.VectorIndex = "unavailable"
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

// bindAnalysisRequest reads the multipart form. Every field is optional.
// user_id is accepted as a form field or a query parameter.
func bindAnalysisRequest(ctx *gin.Context) (services.AnalysisRequest, error) {
	req := services.AnalysisRequest{
		Text:     ctx.PostForm("text"),
		Language: ctx.DefaultPostForm("language", "en"),
		File:     formUpload(ctx, "file"),
		Voice:    formUpload(ctx, "voice"),
	}

	raw := strings.TrimSpace(ctx.PostForm("user_id"))
	if raw == "" {
		raw = strings.TrimSpace(ctx.Query("user_id"))
	}
	if raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return req, err
		}
		uid := uint(id)
		req.UserID = &uid
	}
	return req, nil
}

func formUpload(ctx *gin.Context, field string) *services.Upload {
	fh, err := ctx.FormFile(field)
	if err != nil || fh == nil {
		return nil
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
