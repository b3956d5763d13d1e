package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// PermissionService manages explicit grants on documents. Every call except
// ListForUser requires the actor to pass AuthorizeLevel(admin) on the document.
type PermissionService interface {
	// Grant gives grantee the level on the document. A second grant for the
	// same pair fails with ErrConflict and leaves the first untouched.
	Grant(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error)

	UpdateLevel(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error)
	Revoke(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID) error
	ListForDocument(ctx context.Context, actor model.Principal, docID model.DocumentID) ([]model.PermissionGrant, error)

	// ListForUser returns the grants the user has received.
	ListForUser(ctx context.Context, userID model.UserID) ([]model.PermissionGrant, error)
}

type permissionService struct {
	docs   repository.DocumentRepository
	grants repository.PermissionRepository
	access *AccessResolver
	now    func() time.Time
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(docs repository.DocumentRepository, grants repository.PermissionRepository, access *AccessResolver) PermissionService {
	return &permissionService{
		docs:   docs,
		grants: grants,
		access: access,
		now:    time.Now,
	}
}

// manageable loads the document and checks the actor may manage its grants.
func (s *permissionService) manageable(ctx context.Context, actor model.Principal, docID model.DocumentID) (*model.Document, error) {
	if docID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("find document", err)
	}
	if !s.access.AuthorizeLevel(ctx, actor, doc, model.PermissionAdmin) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *permissionService) Grant(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error) {
	if grantee == "" {
		return nil, invalidInput("user_id is required")
	}
	if _, err := model.ParsePermissionLevel(string(level)); err != nil {
		return nil, invalidInput("%v", err)
	}
	doc, err := s.manageable(ctx, actor, docID)
	if err != nil {
		return nil, err
	}
	if grantee == doc.OwnerID {
		return nil, invalidInput("owner already has full access")
	}

	g, err := s.grants.Create(ctx, &model.PermissionGrant{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		UserID:     grantee,
		Level:      level,
		GrantedBy:  actor.UserID,
		GrantedAt:  s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, storageFailure("create grant", err)
	}
	return g, nil
}

func (s *permissionService) UpdateLevel(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error) {
	if _, err := model.ParsePermissionLevel(string(level)); err != nil {
		return nil, invalidInput("%v", err)
	}
	if _, err := s.manageable(ctx, actor, docID); err != nil {
		return nil, err
	}
	g, err := s.grants.UpdateLevel(ctx, docID, grantee, level)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("update grant", err)
	}
	return g, nil
}

func (s *permissionService) Revoke(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID) error {
	if _, err := s.manageable(ctx, actor, docID); err != nil {
		return err
	}
	if err := s.grants.Delete(ctx, docID, grantee); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storageFailure("delete grant", err)
	}
	return nil
}

func (s *permissionService) ListForDocument(ctx context.Context, actor model.Principal, docID model.DocumentID) ([]model.PermissionGrant, error) {
	if _, err := s.manageable(ctx, actor, docID); err != nil {
		return nil, err
	}
	grants, err := s.grants.FindByDocument(ctx, docID)
	if err != nil {
		return nil, storageFailure("list grants", err)
	}
	return grants, nil
}

func (s *permissionService) ListForUser(ctx context.Context, userID model.UserID) ([]model.PermissionGrant, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	grants, err := s.grants.FindByUser(ctx, userID)
	if err != nil {
		return nil, storageFailure("list grants", err)
	}
	return grants, nil
}
