// Package memory implements the repository interfaces in process memory.
// All repositories obtained from one Store share a single lock, so a document
// delete removes its grants, tokens, tags and metadata atomically.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
)

type grantKey struct {
	doc  model.DocumentID
	user model.UserID
}

// Store holds the shared state behind the in-memory repositories.
type Store struct {
	mu        sync.RWMutex
	documents map[model.DocumentID]*model.Document
	grants    map[grantKey]*model.PermissionGrant
	tokens    map[string]*model.DownloadToken
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		documents: make(map[model.DocumentID]*model.Document),
		grants:    make(map[grantKey]*model.PermissionGrant),
		tokens:    make(map[string]*model.DownloadToken),
	}
}

// Documents returns the document repository view of the store.
func (s *Store) Documents() *DocumentRepository { return &DocumentRepository{s: s} }

// Permissions returns the permission repository view of the store.
func (s *Store) Permissions() *PermissionRepository { return &PermissionRepository{s: s} }

// Tokens returns the token repository view of the store.
func (s *Store) Tokens() *TokenRepository { return &TokenRepository{s: s} }

func copyDocument(d *model.Document) model.Document {
	out := *d
	out.Tags = slices.Clone(d.Tags)
	out.Metadata = slices.Clone(d.Metadata)
	return out
}

// DocumentRepository is the in-memory repository.DocumentRepository.
type DocumentRepository struct {
	s *Store
}

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

func (r *DocumentRepository) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.documents[doc.ID]; ok {
		return nil, repository.ErrDuplicate
	}
	for _, d := range r.s.documents {
		if d.StoragePath == doc.StoragePath {
			return nil, repository.ErrDuplicate
		}
	}
	stored := copyDocument(doc)
	stored.Tags = dedupe(stored.Tags)
	r.s.documents[doc.ID] = &stored
	out := copyDocument(&stored)
	return &out, nil
}

func (r *DocumentRepository) FindByID(_ context.Context, id model.DocumentID) (*model.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.documents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyDocument(d)
	return &out, nil
}

func (r *DocumentRepository) List(ctx context.Context, q repository.ListQuery) (*repository.PageResult[model.Document], error) {
	return r.Search(ctx, repository.SearchQuery{
		OwnerID:   q.OwnerID,
		SortBy:    repository.SortByCreatedAt,
		Order:     repository.SortDesc,
		PageQuery: q.PageQuery,
	})
}

func (r *DocumentRepository) Rename(_ context.Context, id model.DocumentID, name string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.documents[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.OriginalFilename = name
	d.UpdatedAt = at
	return nil
}

func (r *DocumentRepository) ReplaceAnnotations(_ context.Context, id model.DocumentID, tags []string, metadata []model.MetadataEntry, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.documents[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Tags = dedupe(slices.Clone(tags))
	d.Metadata = slices.Clone(metadata)
	d.UpdatedAt = at
	return nil
}

func (r *DocumentRepository) Delete(_ context.Context, id model.DocumentID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.documents, id)
	for k := range r.s.grants {
		if k.doc == id {
			delete(r.s.grants, k)
		}
	}
	for secret, t := range r.s.tokens {
		if t.DocumentID == id {
			delete(r.s.tokens, secret)
		}
	}
	return nil
}

func (r *DocumentRepository) IDsByTags(_ context.Context, tags []string) ([]model.DocumentID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]model.DocumentID, 0)
	for id, d := range r.s.documents {
		for _, t := range d.Tags {
			if slices.Contains(tags, t) {
				ids = append(ids, id)
				break
			}
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *DocumentRepository) IDsByMetadata(_ context.Context, filters []repository.MetadataFilter) ([]model.DocumentID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]model.DocumentID, 0)
	for id, d := range r.s.documents {
		if matchesAnyMetadata(d.Metadata, filters) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func matchesAnyMetadata(entries []model.MetadataEntry, filters []repository.MetadataFilter) bool {
	for _, m := range entries {
		for _, f := range filters {
			if m.Key == f.Key && containsFold(m.Value, f.Value) {
				return true
			}
		}
	}
	return false
}

func (r *DocumentRepository) Search(_ context.Context, q repository.SearchQuery) (*repository.PageResult[model.Document], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]model.Document, 0)
	for _, d := range r.s.documents {
		if q.Filename != "" && !containsFold(d.OriginalFilename, q.Filename) {
			continue
		}
		if q.ContentType != "" && d.ContentType != q.ContentType {
			continue
		}
		if q.OwnerID != "" && d.OwnerID != q.OwnerID {
			continue
		}
		if q.IDs != nil && !slices.Contains(q.IDs, d.ID) {
			continue
		}
		matched = append(matched, copyDocument(d))
	}

	sort.Slice(matched, func(i, j int) bool {
		c := compareDocuments(&matched[i], &matched[j], q.SortBy)
		if q.Order == repository.SortAsc {
			return c < 0
		}
		return c > 0
	})

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return &repository.PageResult[model.Document]{
		Items: matched[start:end],
		Total: total,
	}, nil
}

func compareDocuments(a, b *model.Document, by repository.SortField) int {
	var c int
	switch by {
	case repository.SortByFilename:
		c = strings.Compare(a.OriginalFilename, b.OriginalFilename)
	case repository.SortBySize:
		c = compareInt64(a.Size, b.Size)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = strings.Compare(string(a.ID), string(b.ID))
	}
	return c
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// PermissionRepository is the in-memory repository.PermissionRepository.
type PermissionRepository struct {
	s *Store
}

var _ repository.PermissionRepository = (*PermissionRepository)(nil)

func (r *PermissionRepository) Create(_ context.Context, g *model.PermissionGrant) (*model.PermissionGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := grantKey{g.DocumentID, g.UserID}
	if _, ok := r.s.grants[k]; ok {
		return nil, repository.ErrDuplicate
	}
	stored := *g
	r.s.grants[k] = &stored
	out := stored
	return &out, nil
}

func (r *PermissionRepository) FindByDocument(_ context.Context, docID model.DocumentID) ([]model.PermissionGrant, error) {
	return r.collect(func(g *model.PermissionGrant) bool { return g.DocumentID == docID }), nil
}

func (r *PermissionRepository) FindByUser(_ context.Context, userID model.UserID) ([]model.PermissionGrant, error) {
	return r.collect(func(g *model.PermissionGrant) bool { return g.UserID == userID }), nil
}

func (r *PermissionRepository) collect(keep func(*model.PermissionGrant) bool) []model.PermissionGrant {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.PermissionGrant, 0)
	for _, g := range r.s.grants {
		if keep(g) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrantedAt.Equal(out[j].GrantedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].GrantedAt.Before(out[j].GrantedAt)
	})
	return out
}

func (r *PermissionRepository) FindByDocumentAndUser(_ context.Context, docID model.DocumentID, userID model.UserID) (*model.PermissionGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.grants[grantKey{docID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (r *PermissionRepository) UpdateLevel(_ context.Context, docID model.DocumentID, userID model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.grants[grantKey{docID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g.Level = level
	out := *g
	return &out, nil
}

func (r *PermissionRepository) Delete(_ context.Context, docID model.DocumentID, userID model.UserID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := grantKey{docID, userID}
	if _, ok := r.s.grants[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.grants, k)
	return nil
}

// TokenRepository is the in-memory repository.TokenRepository.
type TokenRepository struct {
	s *Store
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func (r *TokenRepository) Create(_ context.Context, t *model.DownloadToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[t.Token]; ok {
		return repository.ErrDuplicate
	}
	stored := *t
	r.s.tokens[t.Token] = &stored
	return nil
}

func (r *TokenRepository) FindBySecret(_ context.Context, secret string) (*model.DownloadToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[secret]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (r *TokenRepository) MarkUsed(_ context.Context, secret string, now time.Time) (*model.DownloadToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[secret]
	if !ok || !t.Redeemable(now) {
		return nil, repository.ErrNotFound
	}
	usedAt := now
	t.UsedAt = &usedAt
	out := *t
	return &out, nil
}

func (r *TokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for secret, t := range r.s.tokens {
		if t.Expired(now) {
			delete(r.s.tokens, secret)
			n++
		}
	}
	return n, nil
}
