package audits

import (
	"context"
	"sort"
	"sync"
	"time"

	"web4all-backend/internal/checker"
)

// MemoryRepo stores audits in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Audit
	byUser map[string][]Audit
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Audit),
		byUser: make(map[string][]Audit),
	}
}

// Create stores the audit.
func (r *MemoryRepo) Create(ctx context.Context, audit Audit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[audit.ID] = audit
	r.byUser[audit.UserID] = append(r.byUser[audit.UserID], audit)
	return nil
}

// GetByID returns an audit by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, auditID string) (Audit, error) {
	if err := ctx.Err(); err != nil {
		return Audit{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return Audit{}, ErrNotFound
	}
	return audit, nil
}

// UpdateStatus updates status, report, and error fields for an existing audit.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, auditID, status string, report *checker.Report, errorMessage *string, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return ErrNotFound
	}
	audit.Status = status
	if report != nil {
		audit.Report = report
	}
	if errorMessage != nil {
		audit.ErrorMessage = errorMessage
	}
	if completedAt != nil {
		audit.CompletedAt = completedAt
	} else if (status == StatusCompleted || status == StatusFailed) && audit.CompletedAt == nil {
		now := time.Now().UTC()
		audit.CompletedAt = &now
	}
	audit.UpdatedAt = time.Now().UTC()
	r.byID[auditID] = audit
	r.replaceInUserSlice(audit)
	return nil
}

// UpdateSnapshotKey records where the fetched page was archived.
func (r *MemoryRepo) UpdateSnapshotKey(ctx context.Context, auditID, snapshotKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return ErrNotFound
	}
	audit.SnapshotKey = snapshotKey
	audit.UpdatedAt = time.Now().UTC()
	r.byID[auditID] = audit
	r.replaceInUserSlice(audit)
	return nil
}

// ListByUser returns audits for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Audit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userAudits := r.byUser[userID]
	r.mu.RUnlock()

	if len(userAudits) == 0 || offset >= len(userAudits) {
		return []Audit{}, nil
	}

	audits := make([]Audit, len(userAudits))
	copy(audits, userAudits)
	sort.Slice(audits, func(i, j int) bool {
		return audits[i].CreatedAt.After(audits[j].CreatedAt)
	})

	end := len(audits)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return audits[offset:end], nil
}

func (r *MemoryRepo) replaceInUserSlice(audit Audit) {
	userAudits := r.byUser[audit.UserID]
	for i := range userAudits {
		if userAudits[i].ID == audit.ID {
			userAudits[i] = audit
			break
		}
	}
	r.byUser[audit.UserID] = userAudits
}
