package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/domain/ecojourney"
)

const defaultLeaderboardSize = 10

// EcoJourneyHandler handles HTTP requests for sustainability progression
type EcoJourneyHandler struct {
	journeyService service.EcoJourneyService
	logger         *slog.Logger
}

// NewEcoJourneyHandler creates a new eco journey handler
func NewEcoJourneyHandler(logger *slog.Logger, journeyService service.EcoJourneyService) *EcoJourneyHandler {
	return &EcoJourneyHandler{
		journeyService: journeyService,
		logger:         logger,
	}
}

// Get returns the authenticated account's journey, creating it on first access
func (h *EcoJourneyHandler) Get(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	journey, err := h.journeyService.GetJourney(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to get eco journey", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, journey)
}

// UpdateGoals merges the provided goal fields into the journey
func (h *EcoJourneyHandler) UpdateGoals(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req UpdateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	journey, err := h.journeyService.UpdateGoals(c.Request.Context(), accountID, req.MonthlySpending, req.CarbonReduction, req.LocalSupport)
	if err != nil {
		h.logger.Error("Failed to update goals", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, journey)
}

// UpdatePreferences replaces the journey preferences
func (h *EcoJourneyHandler) UpdatePreferences(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	prefs := ecojourney.Preferences{
		Categories:    req.Categories,
		Notifications: req.Notifications,
		PublicProfile: req.PublicProfile,
	}

	journey, err := h.journeyService.UpdatePreferences(c.Request.Context(), accountID, prefs)
	if err != nil {
		h.logger.Error("Failed to update preferences", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, journey)
}

// Leaderboard returns public journeys ranked by the requested metric
func (h *EcoJourneyHandler) Leaderboard(c *gin.Context) {
	metric := ecojourney.LeaderboardMetric(c.DefaultQuery("metric", string(ecojourney.LeaderboardLevel)))
	switch metric {
	case ecojourney.LeaderboardLevel, ecojourney.LeaderboardCarbon, ecojourney.LeaderboardSpending, ecojourney.LeaderboardOrders:
	default:
		RespondBadRequest(c, "Invalid leaderboard metric")
		return
	}

	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			RespondBadRequest(c, "Limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	journeys, err := h.journeyService.Leaderboard(c.Request.Context(), metric, limit)
	if err != nil {
		h.logger.Error("Failed to get leaderboard", "metric", string(metric), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, journeys)
}

// Achievements reports percentage progress toward every achievement
func (h *EcoJourneyHandler) Achievements(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	progress, err := h.journeyService.AchievementProgress(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to get achievement progress", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, progress)
}
