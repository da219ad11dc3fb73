package audits

import (
	"time"

	"web4all-backend/internal/checker"
)

// Audit represents one accessibility audit job for a URL.
type Audit struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	URL          string          `json:"url"`
	Status       string          `json:"status"`
	Report       *checker.Report `json:"report,omitempty"`
	ErrorMessage *string         `json:"errorMessage,omitempty"`
	SnapshotKey  string          `json:"snapshotKey,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}
