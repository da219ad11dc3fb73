package audits

import (
	"context"
	"time"

	"web4all-backend/internal/checker"
)

// Repo defines persistence operations for audits.
type Repo interface {
	Create(ctx context.Context, audit Audit) error
	GetByID(ctx context.Context, auditID string) (Audit, error)
	UpdateStatus(ctx context.Context, auditID, status string, report *checker.Report, errorMessage *string, completedAt *time.Time) error
	UpdateSnapshotKey(ctx context.Context, auditID, snapshotKey string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Audit, error)
}
