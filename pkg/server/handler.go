package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mikeboe/doc-analyst/pkg/extract"
	"github.com/mikeboe/doc-analyst/pkg/orchestrator"
	"github.com/mikeboe/doc-analyst/pkg/research"
)

// maxUploadSize bounds the size of an uploaded file.
const maxUploadSize = 64 << 20

// ResearchAgent ingests documents and answers queries about them.
type ResearchAgent interface {
	Ingest(ctx context.Context, data []byte, tag extract.TypeTag) (research.Result, error)
	HandleQuery(ctx context.Context, query string) (research.Result, error)
	Search(ctx context.Context, query string, k int) (research.Result, error)
}

// Router picks the agent responsible for a query.
type Router interface {
	RouteQuery(ctx context.Context, query string) orchestrator.Route
}

type Handler struct {
	Research ResearchAgent
	Data     DataAgent
	Router   Router
	Logger   *slog.Logger
}

func NewHandler(agent ResearchAgent, data DataAgent, router Router, logger *slog.Logger) *Handler {
	if data == nil {
		data = UnavailableDataAgent{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Research: agent, Data: data, Router: router, Logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.healthz)
	r.POST("/upload_file", h.uploadFile)
	r.POST("/analyze_query", h.analyzeQuery)

	mcpHandler := gin.WrapH(h.MCPHandler())
	r.GET("/mcp", mcpHandler)
	r.POST("/mcp", mcpHandler)
	r.DELETE("/mcp", mcpHandler)
}

type uploadResponse struct {
	research.Result
	FileName string `json:"file_name"`
}

type analyzeRequest struct {
	Query string `json:"query" binding:"required"`
}

func errorResult(msg string) research.Result {
	return research.Result{Type: "text", Message: msg}
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResult("No file uploaded."))
		return
	}
	if header.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResult("The file is too large."))
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResult(err.Error()))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResult(err.Error()))
		return
	}

	name := header.Filename
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	h.Logger.Info("File uploaded", "file", name, "bytes", len(data))

	var res research.Result
	if IsDataFile(ext) {
		res, err = h.Data.Ingest(c.Request.Context(), data, name)
	} else {
		res, err = h.Research.Ingest(c.Request.Context(), data, extract.TypeTag(ext))
	}
	if err != nil {
		h.Logger.Error("Failed to ingest document", "file", name, "error", err)
		c.JSON(http.StatusInternalServerError, errorResult(fmt.Sprintf("Error ingesting the document: %v", err)))
		return
	}

	c.JSON(http.StatusOK, uploadResponse{Result: res, FileName: name})
}

func (h *Handler) analyzeQuery(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResult(err.Error()))
		return
	}

	res, err := h.route(c.Request.Context(), req.Query)
	if err != nil {
		h.Logger.Error("Failed to analyze query", "query", req.Query, "error", err)
		c.JSON(http.StatusInternalServerError, errorResult(err.Error()))
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) route(ctx context.Context, query string) (research.Result, error) {
	switch h.Router.RouteQuery(ctx, query) {
	case orchestrator.RouteData:
		return h.Data.HandleQuery(ctx, query)
	default:
		return h.Research.HandleQuery(ctx, query)
	}
}
