package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	portssvc "github.com/SscSPs/fx_rates_app/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_app/internal/dto"
	"github.com/SscSPs/fx_rates_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ratesHandler handles HTTP requests for cached rates, sync triggers and the
// audit trail.
type ratesHandler struct {
	latestRateService portssvc.LatestRateSvcFacade
	reconcilerService portssvc.ReconcilerSvcFacade
}

func newRatesHandler(lrs portssvc.LatestRateSvcFacade, rs portssvc.ReconcilerSvcFacade) *ratesHandler {
	return &ratesHandler{
		latestRateService: lrs,
		reconcilerService: rs,
	}
}

// registerRatesRoutes registers routes related to rates and ingestion.
func registerRatesRoutes(rg *gin.RouterGroup, latestRateService portssvc.LatestRateSvcFacade, reconcilerService portssvc.ReconcilerSvcFacade) {
	h := newRatesHandler(latestRateService, reconcilerService)

	rates := rg.Group("/rates")
	{
		rates.GET("/latest", h.getAllLatest)
		rates.GET("/latest/:currency", h.getLatest)
		rates.GET("/:currency/:date", h.getByDate)
		rates.POST("/sync", h.syncCurrent)
		rates.POST("/history", h.syncHistory)
	}
	rg.GET("/trail", h.listTrail)
}

func (h *ratesHandler) getAllLatest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var currencies []string
	if raw := c.Query("currencies"); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code != "" {
				currencies = append(currencies, code)
			}
		}
	}

	entries, err := h.latestRateService.GetAllLatest(c.Request.Context(), currencies)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoHistory) {
			logger.Warn("No history available for latest rates", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": "No rates available"})
			return
		}
		logger.Error("Failed to get latest rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve latest rates"})
		return
	}

	responses := make(map[string]dto.CacheEntryResponse, len(entries))
	for code := range entries {
		entry := entries[code]
		responses[code] = dto.ToCacheEntryResponse(&entry)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *ratesHandler) getLatest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currency := strings.ToUpper(c.Param("currency"))
	if len(currency) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code must be 3 letters"})
		return
	}

	entry, err := h.latestRateService.GetLatest(c.Request.Context(), currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrNoHistory) {
			logger.Warn("Latest rate not found", slog.String("currency", currency))
			c.JSON(http.StatusNotFound, gin.H{"error": "No rate available for " + currency})
			return
		}
		logger.Error("Failed to get latest rate", slog.String("currency", currency), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve latest rate"})
		return
	}
	c.JSON(http.StatusOK, dto.ToCacheEntryResponse(entry))
}

func (h *ratesHandler) getByDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currency := strings.ToUpper(c.Param("currency"))
	if len(currency) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code must be 3 letters"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	entry, err := h.latestRateService.GetByDate(c.Request.Context(), currency, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Rate not found for date", slog.String("currency", currency), slog.String("date", c.Param("date")))
			c.JSON(http.StatusNotFound, gin.H{"error": "No rate for " + currency + " on " + c.Param("date")})
			return
		}
		logger.Error("Failed to get rate by date", slog.String("currency", currency), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rate"})
		return
	}
	c.JSON(http.StatusOK, dto.ToCacheEntryResponse(entry))
}

func (h *ratesHandler) syncCurrent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to sync current rates")

	trailEntry, err := h.reconcilerService.SyncCurrent(c.Request.Context())
	if err != nil {
		h.writeSyncError(c, logger, err, trailEntry)
		return
	}
	c.JSON(http.StatusOK, dto.ToTrailEntryResponse(trailEntry))
}

func (h *ratesHandler) syncHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SyncHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SyncHistory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fromDate, _ := time.Parse("2006-01-02", req.FromDate)
	toDate, _ := time.Parse("2006-01-02", req.ToDate)
	if toDate.Before(fromDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toDate must not precede fromDate"})
		return
	}

	logger.Info("Received request to sync historical rates",
		slog.String("from_date", req.FromDate),
		slog.String("to_date", req.ToDate),
	)

	trailEntry, err := h.reconcilerService.SyncHistory(c.Request.Context(), fromDate, toDate)
	if err != nil {
		h.writeSyncError(c, logger, err, trailEntry)
		return
	}
	c.JSON(http.StatusOK, dto.ToTrailEntryResponse(trailEntry))
}

// writeSyncError maps reconciliation failures onto HTTP statuses. The trail
// entry, when one was emitted before the failure, is echoed for debugging.
func (h *ratesHandler) writeSyncError(c *gin.Context, logger *slog.Logger, err error, trailEntry *domain.TrailEntry) {
	body := gin.H{"error": "Failed to sync rates"}
	if trailEntry != nil {
		body["trail"] = dto.ToTrailEntryResponse(trailEntry)
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrDateResolution):
		logger.Warn("Sync rejected", slog.String("error", err.Error()))
		body["error"] = err.Error()
		c.JSON(http.StatusBadRequest, body)
	default:
		logger.Error("Sync failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, body)
	}
}

func (h *ratesHandler) listTrail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := h.reconcilerService.ListTrail(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list trail entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trail entries"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListTrailEntryResponse(entries))
}
