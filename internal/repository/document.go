package repository

import (
	"context"
	"time"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents and their tag/metadata side tables.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record together with its tags and metadata.
	// Either everything is stored or nothing is.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, including tags and metadata.
	FindByID(ctx context.Context, id model.DocumentID) (*model.Document, error)

	// List returns a paginated list of documents and total rows count for the given filter.
	List(ctx context.Context, q ListQuery) (*PageResult[model.Document], error)

	// Rename changes the user-facing file name.
	Rename(ctx context.Context, id model.DocumentID, name string, at time.Time) error

	// ReplaceAnnotations swaps the document's tag and metadata sets.
	ReplaceAnnotations(ctx context.Context, id model.DocumentID, tags []string, metadata []model.MetadataEntry, at time.Time) error

	// Delete removes a document by ID together with its grants, tags, metadata and tokens.
	Delete(ctx context.Context, id model.DocumentID) error

	// IDsByTags returns the distinct documents carrying any of the tags.
	IDsByTags(ctx context.Context, tags []string) ([]model.DocumentID, error)

	// IDsByMetadata returns the distinct documents matching any of the filters.
	IDsByMetadata(ctx context.Context, filters []MetadataFilter) ([]model.DocumentID, error)

	// Search returns one page of documents matching q and the total match count.
	Search(ctx context.Context, q SearchQuery) (*PageResult[model.Document], error)
}

// ListQuery restricts List to one owner when OwnerID is set.
type ListQuery struct {
	OwnerID model.UserID
	PageQuery
}

// MetadataFilter matches entries whose key equals Key and whose value
// contains Value, case-insensitively.
type MetadataFilter struct {
	Key   string
	Value string
}

// SortField is a sortable document column.
type SortField string

const (
	SortByFilename  SortField = "filename"
	SortBySize      SortField = "size"
	SortByCreatedAt SortField = "created_at"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchQuery is the primary document filter. Empty fields are ignored.
// A nil IDs slice means no restriction; a non-nil one limits results to those documents.
type SearchQuery struct {
	Filename    string
	ContentType string
	OwnerID     model.UserID
	IDs         []model.DocumentID
	SortBy      SortField
	Order       SortOrder
	PageQuery
}
