package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finara/internal/daterange"
	apperrors "finara/internal/errors"
	"finara/internal/services"
)

// AnalyticsHandler serves the dashboard summary, chart and category views.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	now              func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// RangeQuery selects the analytics interval.
type RangeQuery struct {
	Preset string `form:"preset" binding:"omitempty,date_preset"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// CategoryBreakdownResponse is the category view payload.
type CategoryBreakdownResponse struct {
	Range      daterange.Range          `json:"preset"`
	Categories []services.CategoryTotal `json:"categories"`
}

// resolveRange reads preset/from/to from the query string. An explicit
// from/to pair without a preset selects the custom preset.
func resolveRange(c *gin.Context, now time.Time) (daterange.Range, error) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return daterange.Range{}, apperrors.WithMessage(apperrors.ErrInvalidDatePreset, err.Error())
	}

	preset := daterange.Preset(q.Preset)
	switch {
	case preset == "" && (q.From != "" || q.To != ""):
		preset = daterange.Custom
	case preset == "":
		preset = daterange.DefaultPreset
	}
	return daterange.Resolve(preset, q.From, q.To, now)
}

// GetSummary returns income, expense and balance totals with the change
// against the prior period of equal length.
// @Summary     Analytics summary
// @Description Totals for the selected range and percentage change against the prior period
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       preset query string false "30days, lastMonth, 3months, 6months, 1year, allTime or custom (default 30days)"
// @Param       from   query string false "Custom range start (YYYY-MM-DD or RFC3339)"
// @Param       to     query string false "Custom range end (YYYY-MM-DD or RFC3339)"
// @Success     200 {object} services.SummaryComparison
// @Failure     400 {object} ErrorResponse "Invalid preset or range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics [get]
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := resolveRange(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.analyticsService.GetSummary(userID, r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChart returns per-day income and expense totals.
// @Summary     Analytics chart
// @Description Daily income and expense series for the selected range
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       preset query string false "Range preset (default 30days)"
// @Param       from   query string false "Custom range start"
// @Param       to     query string false "Custom range end"
// @Success     200 {object} services.ChartResult
// @Failure     400 {object} ErrorResponse "Invalid preset or range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/chart [get]
func (h *AnalyticsHandler) GetChart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := resolveRange(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.analyticsService.GetChart(userID, r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategories returns expense totals per category.
// @Summary     Expense categories
// @Description Expense totals per category, largest first
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       preset query string false "Range preset (default 30days)"
// @Param       from   query string false "Custom range start"
// @Param       to     query string false "Custom range end"
// @Success     200 {object} CategoryBreakdownResponse
// @Failure     400 {object} ErrorResponse "Invalid preset or range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/categories [get]
func (h *AnalyticsHandler) GetCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := resolveRange(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.analyticsService.GetCategoryBreakdown(userID, r)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if categories == nil {
		categories = []services.CategoryTotal{}
	}

	c.JSON(http.StatusOK, CategoryBreakdownResponse{Range: r, Categories: categories})
}
