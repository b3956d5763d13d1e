package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/model"
	"docvault/internal/repository"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedDocument(t *testing.T, s *Store, name string, size int64, at time.Time, tags ...string) model.Document {
	t.Helper()
	doc := &model.Document{
		ID:               model.NewDocumentID(),
		OwnerID:          "owner-1",
		Filename:         name,
		OriginalFilename: name,
		StoragePath:      "documents/" + name,
		Size:             size,
		ContentType:      "text/plain",
		Tags:             tags,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
	out, err := s.Documents().Create(context.Background(), doc)
	require.NoError(t, err)
	return *out
}

func TestDocumentRepository_CreateAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := seedDocument(t, s, "a.txt", 1, t0, "x", "x", "y")

	got, err := s.Documents().FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got.Tags)

	// returned values are copies
	got.Tags[0] = "mutated"
	again, _ := s.Documents().FindByID(ctx, doc.ID)
	assert.Equal(t, "x", again.Tags[0])

	_, err = s.Documents().Create(ctx, &doc)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.Documents().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentRepository_DeleteCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := seedDocument(t, s, "a.txt", 1, t0)
	other := seedDocument(t, s, "b.txt", 1, t0)

	_, err := s.Permissions().Create(ctx, &model.PermissionGrant{ID: "g1", DocumentID: doc.ID, UserID: "u1", Level: model.PermissionRead})
	require.NoError(t, err)
	_, err = s.Permissions().Create(ctx, &model.PermissionGrant{ID: "g2", DocumentID: other.ID, UserID: "u1", Level: model.PermissionRead})
	require.NoError(t, err)
	require.NoError(t, s.Tokens().Create(ctx, &model.DownloadToken{Token: "s1", DocumentID: doc.ID, ExpiresAt: t0.Add(time.Hour)}))
	require.NoError(t, s.Tokens().Create(ctx, &model.DownloadToken{Token: "s2", DocumentID: other.ID, ExpiresAt: t0.Add(time.Hour)}))

	require.NoError(t, s.Documents().Delete(ctx, doc.ID))

	grants, _ := s.Permissions().FindByUser(ctx, "u1")
	require.Len(t, grants, 1)
	assert.Equal(t, other.ID, grants[0].DocumentID)

	_, err = s.Tokens().FindBySecret(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Tokens().FindBySecret(ctx, "s2")
	assert.NoError(t, err)

	// deleting again is not an error
	assert.NoError(t, s.Documents().Delete(ctx, doc.ID))
}

func TestDocumentRepository_Search(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seedDocument(t, s, "Report-2024.pdf", 300, t0)
	b := seedDocument(t, s, "report-draft.txt", 100, t0.Add(time.Minute))
	seedDocument(t, s, "notes.txt", 200, t0.Add(2*time.Minute))

	res, err := s.Documents().Search(ctx, repository.SearchQuery{
		Filename:  "REPORT",
		SortBy:    repository.SortBySize,
		Order:     repository.SortAsc,
		PageQuery: repository.PageQuery{Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, b.ID, res.Items[0].ID)
	assert.Equal(t, a.ID, res.Items[1].ID)

	res, err = s.Documents().Search(ctx, repository.SearchQuery{
		IDs:       []model.DocumentID{},
		PageQuery: repository.PageQuery{Limit: 10},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Items)

	res, err = s.Documents().List(ctx, repository.ListQuery{PageQuery: repository.PageQuery{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, a.ID, res.Items[0].ID)

	res, err = s.Documents().List(ctx, repository.ListQuery{PageQuery: repository.PageQuery{Offset: -3}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Items, 3)
}

func TestDocumentRepository_IDsByTagsAndMetadata(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seedDocument(t, s, "a.txt", 1, t0, "finance")
	b := seedDocument(t, s, "b.txt", 1, t0, "legal")
	seedDocument(t, s, "c.txt", 1, t0, "misc")

	require.NoError(t, s.Documents().ReplaceAnnotations(ctx, b.ID, []string{"legal"},
		[]model.MetadataEntry{{Key: "project", Value: "Apollo-X"}}, t0.Add(time.Hour)))

	ids, err := s.Documents().IDsByTags(ctx, []string{"finance", "legal"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.DocumentID{a.ID, b.ID}, ids)

	ids, err = s.Documents().IDsByMetadata(ctx, []repository.MetadataFilter{{Key: "project", Value: "apollo"}})
	require.NoError(t, err)
	assert.Equal(t, []model.DocumentID{b.ID}, ids)

	ids, err = s.Documents().IDsByMetadata(ctx, []repository.MetadataFilter{{Key: "client", Value: "apollo"}})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPermissionRepository(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Permissions()

	g := &model.PermissionGrant{ID: "g1", DocumentID: "d1", UserID: "u1", Level: model.PermissionRead, GrantedAt: t0}
	_, err := repo.Create(ctx, g)
	require.NoError(t, err)
	_, err = repo.Create(ctx, g)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	updated, err := repo.UpdateLevel(ctx, "d1", "u1", model.PermissionWrite)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionWrite, updated.Level)

	_, err = repo.UpdateLevel(ctx, "d1", "u2", model.PermissionWrite)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "d1", "u1"))
	assert.ErrorIs(t, repo.Delete(ctx, "d1", "u1"), repository.ErrNotFound)
}

func TestTokenRepository_MarkUsedOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Tokens()
	require.NoError(t, repo.Create(ctx, &model.DownloadToken{Token: "secret", DocumentID: "d1", ExpiresAt: t0.Add(time.Hour)}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.MarkUsed(ctx, "secret", t0); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	tok, err := repo.FindBySecret(ctx, "secret")
	require.NoError(t, err)
	require.NotNil(t, tok.UsedAt)
	assert.Equal(t, t0, *tok.UsedAt)
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Tokens()
	for i, exp := range []time.Time{t0.Add(-time.Hour), t0.Add(-time.Second), t0, t0.Add(time.Hour)} {
		require.NoError(t, repo.Create(ctx, &model.DownloadToken{Token: string(rune('a' + i)), ExpiresAt: exp}))
	}

	n, err := repo.DeleteExpired(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.FindBySecret(ctx, "c")
	assert.NoError(t, err)
}
