package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// AccessResolver decides document-level authorization from role, ownership
// and permission grants. It has no side effects and is safe for concurrent use.
type AccessResolver struct {
	grants repository.PermissionRepository
}

// NewAccessResolver constructs an AccessResolver reading from grants.
func NewAccessResolver(grants repository.PermissionRepository) *AccessResolver {
	return &AccessResolver{grants: grants}
}

// Authorize reports whether p may act on doc. The first matching rule wins:
// elevated role, ownership, then any grant for (doc, p) regardless of level.
// A failed grant lookup denies.
func (a *AccessResolver) Authorize(ctx context.Context, p model.Principal, doc *model.Document) bool {
	if p.Elevated() {
		return true
	}
	if p.UserID != "" && p.UserID == doc.OwnerID {
		return true
	}
	_, ok := a.grant(ctx, p, doc)
	return ok
}

// AuthorizeLevel is the stricter check used before mutations. Elevated
// callers and the owner pass; anyone else needs a grant of exactly the
// required level or an admin grant.
func (a *AccessResolver) AuthorizeLevel(ctx context.Context, p model.Principal, doc *model.Document, level model.PermissionLevel) bool {
	if p.Elevated() {
		return true
	}
	if p.UserID != "" && p.UserID == doc.OwnerID {
		return true
	}
	g, ok := a.grant(ctx, p, doc)
	if !ok {
		return false
	}
	return g.Level == level || g.Level == model.PermissionAdmin
}

func (a *AccessResolver) grant(ctx context.Context, p model.Principal, doc *model.Document) (*model.PermissionGrant, bool) {
	if p.UserID == "" {
		return nil, false
	}
	g, err := a.grants.FindByDocumentAndUser(ctx, doc.ID, p.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			zerolog.Ctx(ctx).Error().
				Err(err).
				Str("document_id", doc.ID.String()).
				Str("user_id", p.UserID.String()).
				Msg("permission lookup failed; denying access")
		}
		return nil, false
	}
	return g, true
}
