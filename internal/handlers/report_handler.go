package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finara/internal/errors"
	"finara/internal/models"
	"finara/internal/services"
)

// ReportHandler serves the report subscription and the report audit log.
type ReportHandler struct {
	reportService      services.ReportServicer
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	now                func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer, transactionService services.TransactionServicer, auditService services.AuditServicer) *ReportHandler {
	return &ReportHandler{
		reportService:      reportService,
		transactionService: transactionService,
		auditService:       auditService,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// UpdateReportSettingRequest is the payload for PUT /reports/settings.
type UpdateReportSettingRequest struct {
	IsEnabled *bool                  `json:"is_enabled" binding:"required"`
	Frequency models.ReportFrequency `json:"frequency" binding:"omitempty,report_frequency"`
}

// GetReports lists the user's report runs, newest first.
// @Summary     List reports
// @Description Paginated audit log of report emails sent, failed or skipped
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       pageNumber query int false "Page number (default 1)"
// @Param       pageSize   query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Report]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports [get]
func (h *ReportHandler) GetReports(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPageRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.GetUserReports(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReportTransactions lists the transactions a report over the selected
// range would aggregate.
// @Summary     Report transactions
// @Description Paginated transactions inside the selected analytics range
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       preset     query string false "Range preset (default 30days)"
// @Param       from       query string false "Custom range start"
// @Param       to         query string false "Custom range end"
// @Param       pageNumber query int    false "Page number (default 1)"
// @Param       pageSize   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/transactions [get]
func (h *ReportHandler) GetReportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPageRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := resolveRange(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, services.TransactionFilter{
		FromDate: &r.From,
		ToDate:   &r.To,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSetting returns the user's report subscription, creating the default
// monthly one on first access.
// @Summary     Get report settings
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.ReportSetting
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/settings [get]
func (h *ReportHandler) GetSetting(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	setting, err := h.reportService.GetSetting(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// UpdateSetting enables, disables or changes the frequency of the report
// subscription.
// @Summary     Update report settings
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateReportSettingRequest true "Subscription settings"
// @Success     200 {object} models.ReportSetting
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/settings [put]
func (h *ReportHandler) UpdateSetting(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateReportSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	setting, err := h.reportService.UpdateSetting(userID, *req.IsEnabled, req.Frequency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateReportSetting, "report_setting", setting.ID, c.ClientIP(),
		map[string]interface{}{"is_enabled": setting.IsEnabled, "frequency": setting.Frequency})

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}
