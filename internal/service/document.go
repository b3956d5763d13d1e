package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

const maxFilenameLength = 255

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// UploadInput carries the content and annotations of a new document.
type UploadInput struct {
	Reader           io.Reader
	OriginalFilename string
	ContentType      string
	Size             int64
	Tags             []string
	Metadata         []model.MetadataEntry
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload uploads the content to object storage, saves the record with its tags and
	// metadata, and removes the object again if the record cannot be saved.
	// The stored filename is a UUID plus the original extension.
	Upload(ctx context.Context, owner model.Principal, in UploadInput) (*model.Document, error)

	// List returns a page of documents visible to p: all for admins, own otherwise.
	List(ctx context.Context, p model.Principal, limit, offset int) (*DocumentListResult, error)

	// Get returns a document p is authorized to access.
	Get(ctx context.Context, p model.Principal, id model.DocumentID) (*model.Document, error)

	// Lookup returns a document without an access check. Only token-mediated
	// downloads use it, after the token has been redeemed.
	Lookup(ctx context.Context, id model.DocumentID) (*model.Document, error)

	// Open streams the content of a document already resolved by Get or Lookup.
	Open(ctx context.Context, doc *model.Document) (io.ReadCloser, error)

	// Rename changes the user-facing name. Requires write.
	Rename(ctx context.Context, p model.Principal, id model.DocumentID, name string) (*model.Document, error)

	// UpdateAnnotations replaces the tag and metadata sets. Requires write.
	UpdateAnnotations(ctx context.Context, p model.Principal, id model.DocumentID, tags []string, metadata []model.MetadataEntry) (*model.Document, error)

	// Delete removes a document from both storage and repository. Requires delete.
	Delete(ctx context.Context, p model.Principal, id model.DocumentID) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store  storage.Storage
	repo   repository.DocumentRepository
	access *AccessResolver
	now    func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, access *AccessResolver) DocumentService {
	return &documentService{
		store:  store,
		repo:   repo,
		access: access,
		now:    time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, owner model.Principal, in UploadInput) (*model.Document, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if owner.UserID == "" {
		return nil, invalidInput("owner is required")
	}
	name, err := cleanFilename(in.OriginalFilename)
	if err != nil {
		return nil, err
	}
	metadata, err := cleanMetadata(in.Metadata)
	if err != nil {
		return nil, err
	}

	// Generate filename using UUID + extension
	ext := filepath.Ext(name)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("documents", genName))

	objInfo, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": name,
		},
	})
	if err != nil {
		return nil, storageFailure("upload to storage", err)
	}

	now := s.now().UTC()
	doc := &model.Document{
		ID:               model.NewDocumentID(),
		OwnerID:          owner.UserID,
		Filename:         genName,
		OriginalFilename: name,
		StoragePath:      objInfo.Key,
		Size:             objInfo.Size,
		ContentType:      objInfo.ContentType,
		Tags:             cleanTags(in.Tags),
		Metadata:         metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("%w: db save failed: %v; rollback delete failed: %v", ErrStorageFailure, err, delErr)
		}
		return nil, storageFailure("db save failed", err)
	}
	return stored, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, p model.Principal, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	q := repository.ListQuery{PageQuery: repository.PageQuery{Limit: limit, Offset: offset}}
	if !p.Elevated() {
		q.OwnerID = p.UserID
	}
	res, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, storageFailure("list documents", err)
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Lookup(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("find document", err)
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, p model.Principal, id model.DocumentID) (*model.Document, error) {
	doc, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.Authorize(ctx, p, doc) {
		return nil, ErrForbidden
	}
	return doc, nil
}

// authorized loads the document and applies the level check for a mutation.
func (s *documentService) authorized(ctx context.Context, p model.Principal, id model.DocumentID, level model.PermissionLevel) (*model.Document, error) {
	doc, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.AuthorizeLevel(ctx, p, doc, level) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) Open(ctx context.Context, doc *model.Document) (io.ReadCloser, error) {
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("read storage", err)
	}
	return rc, nil
}

func (s *documentService) Rename(ctx context.Context, p model.Principal, id model.DocumentID, name string) (*model.Document, error) {
	name, err := cleanFilename(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorized(ctx, p, id, model.PermissionWrite); err != nil {
		return nil, err
	}
	if err := s.repo.Rename(ctx, id, name, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("rename document", err)
	}
	return s.Lookup(ctx, id)
}

func (s *documentService) UpdateAnnotations(ctx context.Context, p model.Principal, id model.DocumentID, tags []string, metadata []model.MetadataEntry) (*model.Document, error) {
	metadata, err := cleanMetadata(metadata)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorized(ctx, p, id, model.PermissionWrite); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAnnotations(ctx, id, cleanTags(tags), metadata, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("update annotations", err)
	}
	return s.Lookup(ctx, id)
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, p model.Principal, id model.DocumentID) error {
	doc, err := s.authorized(ctx, p, id, model.PermissionDelete)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return storageFailure("delete storage", err)
	}
	// Grants, tokens, tags and metadata go with the row.
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageFailure("delete document", err)
	}
	return nil
}

func cleanFilename(name string) (string, error) {
	name = strings.TrimSpace(filepath.Base(filepath.ToSlash(name)))
	if name == "" || name == "." || name == "/" {
		return "", invalidInput("filename is required")
	}
	if utf8.RuneCountInString(name) > maxFilenameLength {
		return "", invalidInput("filename longer than %d characters", maxFilenameLength)
	}
	return name, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func cleanMetadata(entries []model.MetadataEntry) ([]model.MetadataEntry, error) {
	out := make([]model.MetadataEntry, 0, len(entries))
	for _, m := range entries {
		key := strings.TrimSpace(m.Key)
		if key == "" {
			return nil, invalidInput("metadata key is required")
		}
		out = append(out, model.MetadataEntry{Key: key, Value: strings.TrimSpace(m.Value)})
	}
	return out, nil
}
