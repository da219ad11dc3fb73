package audits

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"web4all-backend/internal/checker"
	"web4all-backend/internal/fetch"
	"web4all-backend/internal/htmldoc"
	"web4all-backend/internal/llm"
	"web4all-backend/internal/mailer"
	"web4all-backend/internal/queue"
	"web4all-backend/internal/report"
	"web4all-backend/internal/shared/metrics"
	"web4all-backend/internal/shared/storage/object"
	"web4all-backend/internal/shared/telemetry"
	"web4all-backend/internal/usage"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// FetchFailureIssue is the single report issue recorded when the page could
// not be retrieved.
const FetchFailureIssue = "Failed to fetch URL"

// Service contains business logic for audits.
type Service struct {
	Repo    Repo
	Usage   *usage.Service
	Fetcher fetch.Fetcher
	Store   object.ObjectStore
	LLM     llm.Client
	Mailer  mailer.Mailer
	Queue   queue.Client
}

// Create enqueues a new audit and kicks off asynchronous completion. When a
// job queue is configured the audit is handed to the worker instead.
func (s *Service) Create(ctx context.Context, userID, rawURL string) (Audit, error) {
	if userID == "" {
		return Audit{}, errors.New("userID is required")
	}
	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return Audit{}, err
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Audit{}, err
		}
		if !ok {
			return Audit{}, usage.ErrLimitReached
		}
	}

	audit := Audit{
		ID:        uuid.NewString(),
		UserID:    userID,
		URL:       normalized,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, audit); err != nil {
		return Audit{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return Audit{}, err
		}
	}

	if s.Queue != nil {
		msg := queue.Message{
			AuditID:    audit.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			telemetry.Warn("audit.enqueue_failed", map[string]any{
				"audit_id": audit.ID,
				"error":    err.Error(),
			})
			go s.completeAsync(backgroundWithRequestID(ctx), audit.ID)
		}
		return audit, nil
	}

	go s.completeAsync(backgroundWithRequestID(ctx), audit.ID)

	return audit, nil
}

// Get returns an audit by ID.
func (s *Service) Get(ctx context.Context, auditID string) (Audit, error) {
	if auditID == "" {
		return Audit{}, errors.New("auditID is required")
	}
	return s.Repo.GetByID(ctx, auditID)
}

// List returns audits for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Audit, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// ProcessAudit runs the full check pipeline for a queued audit. It is called
// by the in-process goroutine path and by the queue worker.
func (s *Service) ProcessAudit(ctx context.Context, auditID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, auditID, StatusProcessing, nil, nil, nil); err != nil {
		return s.failAudit(ctx, auditID, "", "", fmt.Errorf("set processing failed: %w", err), startedAt, nil)
	}

	audit, err := s.Repo.GetByID(ctx, auditID)
	if err != nil {
		return s.failAudit(ctx, auditID, "", "", fmt.Errorf("audit lookup: %w", err), startedAt, nil)
	}
	metrics.IncAuditStarted()
	telemetry.Info("audit.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           audit.UserID,
		"audit_id":          audit.ID,
		"url":               audit.URL,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})
	if s.Fetcher == nil {
		return s.failAudit(ctx, auditID, audit.UserID, audit.URL, errors.New("missing fetcher dependency"), startedAt, nil)
	}

	body, err := s.Fetcher.Fetch(ctx, audit.URL)
	if err != nil {
		metrics.IncFetchFailure()
		telemetry.Warn("audit.fetch_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"audit_id":   audit.ID,
			"url":        audit.URL,
			"kind":       fetch.Classify(err),
			"error":      err.Error(),
		})
		failed := checker.FailedReport(audit.URL, FetchFailureIssue)
		return s.failAudit(ctx, auditID, audit.UserID, audit.URL, fmt.Errorf("fetch url: %w", err), startedAt, &failed)
	}

	if s.Store != nil {
		key := snapshotKey(audit.ID)
		if _, err := s.Store.Save(ctx, key, "text/html; charset=utf-8", bytes.NewReader(body)); err != nil {
			telemetry.Warn("audit.snapshot_failed", map[string]any{
				"audit_id": audit.ID,
				"error":    err.Error(),
			})
		} else if err := s.Repo.UpdateSnapshotKey(ctx, audit.ID, key); err != nil {
			telemetry.Warn("audit.snapshot_key_update_failed", map[string]any{
				"audit_id": audit.ID,
				"error":    err.Error(),
			})
		}
	}

	doc, err := htmldoc.Parse(bytes.NewReader(body))
	if err != nil {
		return s.failAudit(ctx, auditID, audit.UserID, audit.URL, fmt.Errorf("parse html: %w", err), startedAt, nil)
	}

	rep := checker.Run(doc, audit.URL)

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, auditID, StatusCompleted, &rep, nil, &completedAt); err != nil {
		return s.failAudit(ctx, auditID, audit.UserID, audit.URL, fmt.Errorf("set audit result failed: %w", err), startedAt, nil)
	}
	metrics.IncAuditCompleted()
	metrics.ObserveAuditDurationMs(durationMs(startedAt, completedAt))
	telemetry.Info("audit.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           audit.UserID,
		"audit_id":          audit.ID,
		"url":               audit.URL,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"total_score":       rep.TotalScore,
		"duration_ms":       durationMs(startedAt, completedAt),
	})
	return nil
}

func (s *Service) completeAsync(ctx context.Context, auditID string) {
	defer func() {
		if r := recover(); r != nil {
			_ = s.failAudit(ctx, auditID, "", "", fmt.Errorf("panic: %v", r), time.Now().UTC(), nil)
		}
	}()
	_ = s.ProcessAudit(ctx, auditID)
}

func (s *Service) failAudit(ctx context.Context, auditID, userID, auditURL string, err error, startedAt time.Time, failedReport *checker.Report) error {
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateStatus(context.Background(), auditID, StatusFailed, failedReport, &msg, &completedAt); updateErr != nil {
		telemetry.Error("audit.fail_update_failed", map[string]any{
			"audit_id": auditID,
			"error":    updateErr.Error(),
			"cause":    msg,
		})
	}
	metrics.IncAuditFailed()
	metrics.ObserveAuditDurationMs(durationMs(startedAt, completedAt))
	telemetry.Info("audit.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"audit_id":          auditID,
		"url":               auditURL,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error":             msg,
		"duration_ms":       durationMs(startedAt, completedAt),
	})
	return err
}

// Recommend builds an LLM prompt from the finished report and returns
// markdown recommendations.
func (s *Service) Recommend(ctx context.Context, auditID string) (string, error) {
	if s.LLM == nil {
		return "", llm.ErrNotImplemented
	}
	audit, err := s.Repo.GetByID(ctx, auditID)
	if err != nil {
		return "", err
	}
	if audit.Report == nil {
		return "", fmt.Errorf("audit %s has no report yet", auditID)
	}
	return s.LLM.Recommend(ctx, recommendInput(*audit.Report))
}

// EmailReport renders the HTML report email with the radar chart attached and
// sends it to the recipient.
func (s *Service) EmailReport(ctx context.Context, auditID, recipient, recommendations string) error {
	if s.Mailer == nil {
		return mailer.ErrNotConfigured
	}
	if strings.TrimSpace(recipient) == "" {
		return errors.New("recipient is required")
	}
	audit, err := s.Repo.GetByID(ctx, auditID)
	if err != nil {
		return err
	}
	if audit.Report == nil {
		return fmt.Errorf("audit %s has no report yet", auditID)
	}

	domain := domainOf(audit.URL)
	html, err := report.HTMLEmail(domain, *audit.Report, recommendations, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	chart := report.RadarSVG(*audit.Report)

	email := mailer.Email{
		To:       recipient,
		Subject:  fmt.Sprintf("Web Accessibility Report for %s", domain),
		HTMLBody: html,
		Attachments: []mailer.Attachment{
			{Filename: "accessibility_chart.svg", ContentType: "image/svg+xml", Data: []byte(chart)},
		},
	}
	if err := s.Mailer.Send(ctx, email); err != nil {
		return err
	}
	telemetry.Info("audit.email_sent", map[string]any{
		"audit_id": auditID,
		"domain":   domain,
	})
	return nil
}

func recommendInput(rep checker.Report) llm.RecommendInput {
	input := llm.RecommendInput{
		URL:        rep.URL,
		TotalScore: rep.TotalScore,
	}
	for _, cat := range checker.CategoryOrder() {
		res, ok := rep.Categories[cat]
		if !ok {
			continue
		}
		input.Categories = append(input.Categories, llm.CategoryIssues{
			Name:   string(cat),
			Score:  res.Score,
			Issues: res.Issues,
		})
	}
	return input
}

func snapshotKey(auditID string) string {
	return "audits/" + auditID + "/page.html"
}

// normalizeURL validates the target and defaults the scheme to https.
func normalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if parsed.Host == "" {
		return "", ErrInvalidURL
	}
	return parsed.String(), nil
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
