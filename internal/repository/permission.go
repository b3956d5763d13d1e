package repository

import (
	"context"

	"docvault/internal/model"
)

// PermissionRepository stores permission grants keyed by (document, user).
type PermissionRepository interface {
	// Create inserts a grant. Returns ErrDuplicate if the pair already has one.
	Create(ctx context.Context, g *model.PermissionGrant) (*model.PermissionGrant, error)

	FindByDocument(ctx context.Context, docID model.DocumentID) ([]model.PermissionGrant, error)
	FindByUser(ctx context.Context, userID model.UserID) ([]model.PermissionGrant, error)

	// FindByDocumentAndUser returns ErrNotFound when the pair has no grant.
	FindByDocumentAndUser(ctx context.Context, docID model.DocumentID, userID model.UserID) (*model.PermissionGrant, error)

	UpdateLevel(ctx context.Context, docID model.DocumentID, userID model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error)
	Delete(ctx context.Context, docID model.DocumentID, userID model.UserID) error
}
