package audits

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"web4all-backend/internal/checker"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new audit.
func (r *PGRepo) Create(ctx context.Context, audit Audit) error {
	const query = `
INSERT INTO audits (id, user_id, url, status, report, error_message, snapshot_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	reportPayload, err := marshalReport(audit.Report)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		audit.ID,
		audit.UserID,
		audit.URL,
		audit.Status,
		reportPayload,
		nullableString(audit.ErrorMessage),
		emptyToNull(audit.SnapshotKey),
		audit.CreatedAt,
	)
	return err
}

// GetByID returns an audit by ID.
func (r *PGRepo) GetByID(ctx context.Context, auditID string) (Audit, error) {
	const query = `
SELECT id, user_id, url, status, report, error_message, snapshot_key, created_at, updated_at, completed_at
FROM audits
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, auditID)
	audit, err := scanAudit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Audit{}, ErrNotFound
		}
		return Audit{}, err
	}
	return audit, nil
}

// UpdateStatus updates status, report, and error fields for an existing audit.
func (r *PGRepo) UpdateStatus(ctx context.Context, auditID, status string, report *checker.Report, errorMessage *string, completedAt *time.Time) error {
	const query = `
UPDATE audits
SET status = $2,
    report = COALESCE($3, report),
    error_message = COALESCE($4, error_message),
    completed_at = COALESCE($5, completed_at),
    updated_at = now()
WHERE id = $1`
	reportPayload, err := marshalReport(report)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, auditID, status, reportPayload, nullableString(errorMessage), nullableTime(completedAt))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateSnapshotKey records where the fetched page was archived.
func (r *PGRepo) UpdateSnapshotKey(ctx context.Context, auditID, snapshotKey string) error {
	const query = `
UPDATE audits SET snapshot_key = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, auditID, snapshotKey)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListByUser returns audits for a user, newest first, with limit/offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Audit, error) {
	const query = `
SELECT id, user_id, url, status, report, error_message, snapshot_key, created_at, updated_at, completed_at
FROM audits
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := []Audit{}
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (Audit, error) {
	var a Audit
	var report sql.NullString
	var errorMessage sql.NullString
	var snapshotKey sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.URL,
		&a.Status,
		&report,
		&errorMessage,
		&snapshotKey,
		&a.CreatedAt,
		&a.UpdatedAt,
		&completedAt,
	); err != nil {
		return Audit{}, err
	}
	if report.Valid && report.String != "" {
		var parsed checker.Report
		if err := json.Unmarshal([]byte(report.String), &parsed); err != nil {
			return Audit{}, err
		}
		a.Report = &parsed
	}
	if errorMessage.Valid {
		a.ErrorMessage = &errorMessage.String
	}
	if snapshotKey.Valid {
		a.SnapshotKey = snapshotKey.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return a, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalReport(report *checker.Report) (any, error) {
	if report == nil {
		return nil, nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func emptyToNull(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
