package audits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateBindsNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	audit := Audit{
		ID:        "audit-1",
		UserID:    "user-1",
		URL:       "https://example.com",
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audits").
		WithArgs(
			audit.ID,
			audit.UserID,
			audit.URL,
			audit.Status,
			nil, // report
			nil, // error_message
			nil, // snapshot_key
			audit.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), audit); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDParsesReport(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	reportJSON := `{"url":"https://example.com","categories":{},"totalScore":72,"issues":["Low contrast text detected"]}`

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "url", "status", "report", "error_message",
		"snapshot_key", "created_at", "updated_at", "completed_at",
	}).AddRow("audit-1", "user-1", "https://example.com", StatusCompleted,
		reportJSON, nil, "audits/audit-1/page.html", now, now, now)

	mock.ExpectQuery("SELECT (.+) FROM audits").
		WithArgs("audit-1").
		WillReturnRows(rows)

	audit, err := repo.GetByID(context.Background(), "audit-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if audit.Report == nil || audit.Report.TotalScore != 72 {
		t.Fatalf("expected parsed report with score 72, got %+v", audit.Report)
	}
	if audit.SnapshotKey != "audits/audit-1/page.html" {
		t.Fatalf("unexpected snapshot key %q", audit.SnapshotKey)
	}
	if audit.CompletedAt == nil {
		t.Fatalf("expected completedAt to be set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM audits").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "url", "status", "report", "error_message",
			"snapshot_key", "created_at", "updated_at", "completed_at",
		}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateStatusRequiresRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE audits").
		WithArgs("missing", StatusFailed, nil, "boom", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	msg := "boom"
	err = repo.UpdateStatus(context.Background(), "missing", StatusFailed, nil, &msg, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
