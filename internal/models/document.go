package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "DRAFT"
	DocumentStatusUploaded DocumentStatus = "UPLOADED"
)

type Document struct {
	ID          uuid.UUID      `json:"id"`
	UserID      string         `json:"user_id"`
	Title       string         `json:"title"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	ObjectPath  string         `json:"object_path"`
	SizeBytes   int64          `json:"size_bytes"`
	Content     []byte         `json:"content,omitempty"`
	Status      DocumentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
