package audits

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"web4all-backend/internal/checker"
)

func setupRouter(t *testing.T, svc *Service, userID string, guest bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", guest)
		c.Next()
	})
	api := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func seedCompletedAudit(t *testing.T, repo Repo, id, userID string) Audit {
	t.Helper()
	rep := checker.Report{
		URL:        "https://example.com",
		TotalScore: 94,
		Categories: map[checker.Category]checker.CategoryResult{
			checker.CategoryImages: {Score: 0.625, Issues: []string{"Image missing alt attribute: logo.png"}},
		},
		Issues: []string{"Image missing alt attribute: logo.png"},
	}
	audit := Audit{
		ID:        id,
		UserID:    userID,
		URL:       rep.URL,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), audit); err != nil {
		t.Fatalf("create audit: %v", err)
	}
	completedAt := time.Now().UTC()
	if err := repo.UpdateStatus(context.Background(), id, StatusCompleted, &rep, nil, &completedAt); err != nil {
		t.Fatalf("update audit: %v", err)
	}
	audit, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get audit: %v", err)
	}
	return audit
}

func TestStartAuditAccepted(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Fetcher: stubFetcher{body: []byte(cleanPage)}}
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audits", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id, _ := payload["auditId"].(string); id == "" {
		t.Fatalf("expected auditId in response")
	}
	if payload["status"] != StatusQueued {
		t.Fatalf("expected queued status, got %v", payload["status"])
	}
}

func TestStartAuditRejectsInvalidURL(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo(), Fetcher: stubFetcher{body: []byte(cleanPage)}}
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audits", strings.NewReader(`{"url":"ftp://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetAuditReturnsReport(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedCompletedAudit(t, repo, "audit-1", "user-1")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits/audit-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != StatusCompleted {
		t.Fatalf("expected completed, got %v", payload["status"])
	}
	if payload["rating"] != "Excellent" {
		t.Fatalf("expected Excellent rating, got %v", payload["rating"])
	}
	report, ok := payload["report"].(map[string]any)
	if !ok {
		t.Fatalf("expected report object, got %T", payload["report"])
	}
	if report["totalScore"] != float64(94) {
		t.Fatalf("expected totalScore 94, got %v", report["totalScore"])
	}
}

func TestGetAuditHidesOtherUsers(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedCompletedAudit(t, repo, "audit-1", "someone-else")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits/audit-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestListAuditsBlocksGuests(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	r := setupRouter(t, svc, "guest:abc", true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestListAuditsReturnsScores(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedCompletedAudit(t, repo, "audit-1", "user-1")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 audit, got %d", len(payload))
	}
	if payload[0]["totalScore"] != float64(94) {
		t.Fatalf("expected totalScore 94, got %v", payload[0]["totalScore"])
	}
}

func TestSummaryRendersMarkdown(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedCompletedAudit(t, repo, "audit-1", "user-1")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits/audit-1/summary", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "94") {
		t.Fatalf("expected score in summary: %s", body)
	}
	if !strings.Contains(resp.Header().Get("Content-Type"), "text/markdown") {
		t.Fatalf("unexpected content type %q", resp.Header().Get("Content-Type"))
	}
}

func TestExportCSV(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedCompletedAudit(t, repo, "audit-1", "user-1")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits/audit-1/export.csv", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.HasPrefix(body, "Category,Issue") {
		t.Fatalf("expected CSV header, got %q", body)
	}
	if !strings.Contains(body, "Image missing alt attribute: logo.png") {
		t.Fatalf("expected issue row: %s", body)
	}
}

func TestChartSVG(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedCompletedAudit(t, repo, "audit-1", "user-1")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits/audit-1/chart.svg", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "<svg") {
		t.Fatalf("expected svg output")
	}
	if resp.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected content type %q", resp.Header().Get("Content-Type"))
	}
}

func TestSummaryRequiresFinishedReport(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	queuedAudit(t, repo, "audit-1", "https://example.com")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits/audit-1/summary", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestRecommendWithoutLLMReturns501(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedCompletedAudit(t, repo, "audit-1", "user-1")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audits/audit-1/recommendations", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.Code)
	}
}

func TestEmailReportRequiresAddress(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Mailer: &recordingMailer{}}
	seedCompletedAudit(t, repo, "audit-1", "user-1")
	r := setupRouter(t, svc, "user-1", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audits/audit-1/email", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
