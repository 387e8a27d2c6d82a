package model

import "time"

// Document is the metadata row for a file held in the blob store.
// FilePath is the blob URL; the blob name is its last path segment.
type Document struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileType   string    `json:"file_type"`
	SizeBytes  int64     `json:"size_bytes"`
	PageCount  *int      `json:"page_count,omitempty"`
	UploadDate time.Time `json:"upload_date"`
	OfficeID   *int64    `json:"office_id,omitempty"`
	OfficeName string    `json:"office_name,omitempty"`
}
