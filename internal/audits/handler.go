package audits

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"web4all-backend/internal/checker"
	"web4all-backend/internal/llm"
	"web4all-backend/internal/mailer"
	"web4all-backend/internal/report"
	"web4all-backend/internal/shared/server/middleware"
	"web4all-backend/internal/shared/server/respond"
	"web4all-backend/internal/usage"
)

// Handler wires HTTP handlers to the audits service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches audit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audits", h.startAudit)
	rg.GET("/audits", h.listAudits)
	rg.GET("/audits/:id", h.getAudit)
	rg.GET("/audits/:id/summary", h.getSummary)
	rg.GET("/audits/:id/export.csv", h.exportCSV)
	rg.GET("/audits/:id/chart.svg", h.getChart)
	rg.POST("/audits/:id/recommendations", h.recommend)
	rg.POST("/audits/:id/email", h.emailReport)
}

type startAuditRequest struct {
	URL string `json:"url"`
}

func (h *Handler) startAudit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req startAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "url is required", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	audit, err := h.Svc.Create(ctx, userID, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidURL):
			respond.Error(c, http.StatusBadRequest, "validation_error", "a valid http or https URL is required", []map[string]string{
				{"field": "url", "issue": "invalid"},
			})
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your monthly audit limit.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start audit", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"auditId": audit.ID,
		"status":  audit.Status,
	})
}

func (h *Handler) getAudit(c *gin.Context) {
	audit, ok := h.loadOwnedAudit(c)
	if !ok {
		return
	}

	resp := gin.H{
		"id":        audit.ID,
		"url":       audit.URL,
		"status":    audit.Status,
		"createdAt": audit.CreatedAt,
	}
	if audit.Report != nil {
		resp["report"] = audit.Report
		resp["rating"] = reportRating(audit)
	}
	if audit.Status == StatusFailed && audit.ErrorMessage != nil {
		resp["errorMessage"] = *audit.ErrorMessage
	}
	if audit.CompletedAt != nil {
		resp["completedAt"] = audit.CompletedAt
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listAudits(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	audits, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list audits", nil)
		return
	}

	resp := make([]gin.H, 0, len(audits))
	for _, a := range audits {
		item := gin.H{
			"auditId":   a.ID,
			"url":       a.URL,
			"status":    a.Status,
			"createdAt": a.CreatedAt,
		}
		if a.Report != nil {
			item["totalScore"] = a.Report.TotalScore
			item["rating"] = reportRating(a)
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) getSummary(c *gin.Context) {
	audit, ok := h.loadCompletedAudit(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.String(http.StatusOK, report.Markdown(*audit.Report))
}

func (h *Handler) exportCSV(c *gin.Context) {
	audit, ok := h.loadCompletedAudit(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.CSV(&buf, *audit.Report); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render export", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="accessibility_issues.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) getChart(c *gin.Context) {
	audit, ok := h.loadCompletedAudit(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(report.RadarSVG(*audit.Report)))
}

func (h *Handler) recommend(c *gin.Context) {
	audit, ok := h.loadCompletedAudit(c)
	if !ok {
		return
	}
	recommendations, err := h.Svc.Recommend(c.Request.Context(), audit.ID)
	if err != nil {
		if errors.Is(err, llm.ErrNotImplemented) {
			respond.Error(c, http.StatusNotImplemented, "llm_not_configured", "AI recommendations are not configured", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "llm_failed", "failed to generate recommendations", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"recommendations": recommendations})
}

type emailReportRequest struct {
	Email           string `json:"email"`
	Recommendations string `json:"recommendations"`
}

func (h *Handler) emailReport(c *gin.Context) {
	audit, ok := h.loadCompletedAudit(c)
	if !ok {
		return
	}

	var req emailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		return
	}

	if err := h.Svc.EmailReport(c.Request.Context(), audit.ID, req.Email, req.Recommendations); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			respond.Error(c, http.StatusNotImplemented, "mailer_not_configured", "Email delivery is not configured", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "email_failed", "failed to send report email", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"sent": true})
}

// loadOwnedAudit fetches the audit and enforces that the caller owns it.
func (h *Handler) loadOwnedAudit(c *gin.Context) (Audit, bool) {
	auditID := c.Param("id")
	if auditID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "audit id is required", nil)
		return Audit{}, false
	}

	audit, err := h.Svc.Get(c.Request.Context(), auditID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "audit not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch audit", nil)
		}
		return Audit{}, false
	}

	if audit.UserID != middleware.UserIDFromContext(c) {
		respond.Error(c, http.StatusNotFound, "not_found", "audit not found", nil)
		return Audit{}, false
	}
	return audit, true
}

// loadCompletedAudit additionally requires a finished report.
func (h *Handler) loadCompletedAudit(c *gin.Context) (Audit, bool) {
	audit, ok := h.loadOwnedAudit(c)
	if !ok {
		return Audit{}, false
	}
	if audit.Report == nil {
		respond.Error(c, http.StatusConflict, "not_ready", "audit has not finished yet", nil)
		return Audit{}, false
	}
	return audit, true
}

func reportRating(a Audit) string {
	if a.Report == nil {
		return ""
	}
	return checker.Rating(a.Report.TotalScore)
}
