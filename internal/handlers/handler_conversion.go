package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	portssvc "github.com/SscSPs/fx_rates_app/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_app/internal/dto"
	"github.com/SscSPs/fx_rates_app/internal/metrics"
	"github.com/SscSPs/fx_rates_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// conversionHandler handles HTTP requests for currency conversion.
type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
	metrics           *metrics.Metrics
}

func newConversionHandler(cs portssvc.ConversionSvcFacade, m *metrics.Metrics) *conversionHandler {
	return &conversionHandler{
		conversionService: cs,
		metrics:           m,
	}
}

// registerConversionRoutes registers the conversion endpoint.
func registerConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade, m *metrics.Metrics, extraMiddleware ...gin.HandlerFunc) {
	h := newConversionHandler(conversionService, m)
	rg.GET("/convert", append(extraMiddleware, h.convert)...)
}

func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	var date *time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
			return
		}
		date = &parsed
	}

	logger = logger.With(slog.String("from", req.From), slog.String("to", req.To))
	conversion, err := h.conversionService.Convert(c.Request.Context(), req.From, req.To, req.Amount, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error converting", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrNoHistory) {
			logger.Warn("No rate available for conversion", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": "No rate available for the requested currency pair"})
		} else {
			logger.Error("Failed to convert", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert"})
		}
		return
	}

	h.metrics.ConversionsTotal.WithLabelValues(string(conversion.Strategy)).Inc()
	c.JSON(http.StatusOK, dto.ToConversionResponse(conversion))
}
