package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"physique-coach/internal/domain"
	"physique-coach/internal/llm"
	"physique-coach/internal/photos"
	"physique-coach/internal/service"
)

const maxPhotoBytes = 16 << 20

// Runner es la parte del TrainerService que expone la API.
type Runner interface {
	Run(ctx context.Context, photos domain.PhotoSet) (domain.Report, error)
	Categories() []domain.Category
}

// RunHandler mantiene dependencias para los endpoints de corridas.
type RunHandler struct {
	logger       *zap.Logger
	runner       Runner
	limiter      service.RunRateLimiter
	maxDimension int
}

// NewRunHandler crea el handler. limiter puede ser nil (sin limite).
func NewRunHandler(logger *zap.Logger, runner Runner, limiter service.RunRateLimiter, maxDimension int) *RunHandler {
	return &RunHandler{
		logger:       logger,
		runner:       runner,
		limiter:      limiter,
		maxDimension: maxDimension,
	}
}

// ListCategories maneja GET /categories.
func (h *RunHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.runner.Categories()})
}

// CreateRun maneja POST /runs con las fotos front, side y back como multipart.
func (h *RunHandler) CreateRun(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.Request.Context(), c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many runs, try again later"})
		return
	}

	set := make(domain.PhotoSet, 3)
	for _, view := range []domain.View{domain.ViewFront, domain.ViewSide, domain.ViewBack} {
		fh, err := c.FormFile(string(view))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s photo is required", view)})
			return
		}
		raw, err := readPhoto(fh)
		if err != nil {
			h.logger.Warn("invalid photo upload", zap.String("view", string(view)), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s photo", view)})
			return
		}
		if err := photos.Validate(raw, h.maxDimension); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s photo: %v", view, err)})
			return
		}
		set[view] = raw
	}

	report, err := h.runner.Run(c.Request.Context(), set)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// El cliente se desconecto; no hay a quien responder.
			h.logger.Info("run canceled by client", zap.Error(err))
			c.Abort()
		case errors.Is(err, llm.ErrAgentUnavailable):
			h.logger.Error("run failed: agent unavailable", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "analysis agent unavailable"})
		case errors.Is(err, service.ErrMissingPhoto):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("run failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete run"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

func readPhoto(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxPhotoBytes {
		return nil, fmt.Errorf("photo too large: %d bytes", fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
}
