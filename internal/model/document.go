package model

import "time"

// Document represents a stored file in the system.
// It carries JSON tags for the HTTP layer only; persistence mapping lives in
// the repository implementations.
type Document struct {
	ID               DocumentID      `json:"id"`
	OwnerID          UserID          `json:"owner_id"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"original_filename"`
	StoragePath      string          `json:"storage_path"`
	Size             int64           `json:"size"`
	ContentType      string          `json:"content_type"`
	Tags             []string        `json:"tags,omitempty"`
	Metadata         []MetadataEntry `json:"metadata,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MetadataEntry is a key/value annotation on a document. Keys may repeat.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
