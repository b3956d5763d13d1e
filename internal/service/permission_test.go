package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository/memory"
	repoMocks "docvault/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPermissionFixture(t *testing.T) (PermissionService, *memory.Store, model.DocumentID) {
	t.Helper()
	store := memory.New()
	doc, err := store.Documents().Create(context.Background(), &model.Document{
		ID:          model.NewDocumentID(),
		OwnerID:     owner.UserID,
		StoragePath: "documents/p.pdf",
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	grants := store.Permissions()
	return NewPermissionService(store.Documents(), grants, NewAccessResolver(grants)), store, doc.ID
}

func TestPermissionService_Grant(t *testing.T) {
	ctx := context.Background()

	t.Run("owner grants, duplicate conflicts", func(t *testing.T) {
		svc, _, docID := newPermissionFixture(t)

		g, err := svc.Grant(ctx, owner, docID, stranger.UserID, model.PermissionRead)
		require.NoError(t, err)
		assert.Equal(t, owner.UserID, g.GrantedBy)
		assert.Equal(t, model.PermissionRead, g.Level)

		_, err = svc.Grant(ctx, owner, docID, stranger.UserID, model.PermissionAdmin)
		assert.ErrorIs(t, err, ErrConflict)

		grants, err := svc.ListForDocument(ctx, owner, docID)
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Equal(t, model.PermissionRead, grants[0].Level)
	})

	t.Run("admin grant holder may grant", func(t *testing.T) {
		svc, _, docID := newPermissionFixture(t)
		_, err := svc.Grant(ctx, owner, docID, stranger.UserID, model.PermissionAdmin)
		require.NoError(t, err)

		_, err = svc.Grant(ctx, stranger, docID, "user-3", model.PermissionWrite)
		assert.NoError(t, err)
	})

	t.Run("non-admin grant holder may not grant", func(t *testing.T) {
		svc, _, docID := newPermissionFixture(t)
		_, err := svc.Grant(ctx, owner, docID, stranger.UserID, model.PermissionWrite)
		require.NoError(t, err)

		_, err = svc.Grant(ctx, stranger, docID, "user-3", model.PermissionRead)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("elevated role may grant", func(t *testing.T) {
		svc, _, docID := newPermissionFixture(t)
		_, err := svc.Grant(ctx, admin, docID, stranger.UserID, model.PermissionDelete)
		assert.NoError(t, err)
	})

	t.Run("owner cannot be a grantee", func(t *testing.T) {
		svc, _, docID := newPermissionFixture(t)
		_, err := svc.Grant(ctx, admin, docID, owner.UserID, model.PermissionRead)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown level", func(t *testing.T) {
		svc, _, docID := newPermissionFixture(t)
		_, err := svc.Grant(ctx, owner, docID, stranger.UserID, "owner")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing document", func(t *testing.T) {
		svc, _, _ := newPermissionFixture(t)
		_, err := svc.Grant(ctx, owner, model.NewDocumentID(), stranger.UserID, model.PermissionRead)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPermissionService_UpdateAndRevoke(t *testing.T) {
	ctx := context.Background()
	svc, store, docID := newPermissionFixture(t)

	_, err := svc.Grant(ctx, owner, docID, stranger.UserID, model.PermissionRead)
	require.NoError(t, err)

	g, err := svc.UpdateLevel(ctx, owner, docID, stranger.UserID, model.PermissionWrite)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionWrite, g.Level)

	_, err = svc.UpdateLevel(ctx, owner, docID, "user-3", model.PermissionWrite)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := svc.ListForUser(ctx, stranger.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, docID, mine[0].DocumentID)

	require.NoError(t, svc.Revoke(ctx, owner, docID, stranger.UserID))
	assert.ErrorIs(t, svc.Revoke(ctx, owner, docID, stranger.UserID), ErrNotFound)

	_, err = store.Permissions().FindByDocumentAndUser(ctx, docID, stranger.UserID)
	assert.Error(t, err)
}

func TestPermissionService_StorageFailure(t *testing.T) {
	ctx := context.Background()
	doc := &model.Document{ID: "d1", OwnerID: owner.UserID}

	mDocs := new(repoMocks.MockDocumentRepository)
	mDocs.On("FindByID", ctx, doc.ID).Return(doc, nil)
	mPerm := new(repoMocks.MockPermissionRepository)
	mPerm.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))

	svc := NewPermissionService(mDocs, mPerm, NewAccessResolver(mPerm))
	_, err := svc.Grant(ctx, owner, doc.ID, stranger.UserID, model.PermissionRead)
	assert.ErrorIs(t, err, ErrStorageFailure)
}
