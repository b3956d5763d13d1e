package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const permissionColumns = `id, document_id, user_id, permission, granted_by, granted_at`

// PermissionPostgres is a PostgreSQL implementation of repository.PermissionRepository.
type PermissionPostgres struct {
	db *sql.DB
}

// NewPermissionPostgres creates a new PermissionPostgres repository.
func NewPermissionPostgres(db *sql.DB) *PermissionPostgres {
	return &PermissionPostgres{db: db}
}

var _ repository.PermissionRepository = (*PermissionPostgres)(nil)

func scanGrant(row rowScanner, g *model.PermissionGrant) error {
	return row.Scan(&g.ID, &g.DocumentID, &g.UserID, &g.Level, &g.GrantedBy, &g.GrantedAt)
}

// Create inserts a grant; the (document_id, user_id) unique constraint turns a
// second grant for the same pair into repository.ErrDuplicate.
func (r *PermissionPostgres) Create(ctx context.Context, g *model.PermissionGrant) (*model.PermissionGrant, error) {
	const q = `
		INSERT INTO document_permissions (id, document_id, user_id, permission, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + permissionColumns

	var out model.PermissionGrant
	row := r.db.QueryRowContext(ctx, q, g.ID, g.DocumentID, g.UserID, g.Level, g.GrantedBy, g.GrantedAt)
	if err := scanGrant(row, &out); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &out, nil
}

// FindByDocument lists every grant on a document, oldest first.
func (r *PermissionPostgres) FindByDocument(ctx context.Context, docID model.DocumentID) ([]model.PermissionGrant, error) {
	const q = `SELECT ` + permissionColumns + ` FROM document_permissions WHERE document_id = $1 ORDER BY granted_at, id`
	return r.queryGrants(ctx, q, docID)
}

// FindByUser lists every grant held by a user, newest first.
func (r *PermissionPostgres) FindByUser(ctx context.Context, userID model.UserID) ([]model.PermissionGrant, error) {
	const q = `SELECT ` + permissionColumns + ` FROM document_permissions WHERE user_id = $1 ORDER BY granted_at DESC, id`
	return r.queryGrants(ctx, q, userID)
}

func (r *PermissionPostgres) queryGrants(ctx context.Context, q string, arg any) ([]model.PermissionGrant, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := make([]model.PermissionGrant, 0)
	for rows.Next() {
		var g model.PermissionGrant
		if err := scanGrant(rows, &g); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grants, nil
}

// FindByDocumentAndUser returns the single grant for the pair.
func (r *PermissionPostgres) FindByDocumentAndUser(ctx context.Context, docID model.DocumentID, userID model.UserID) (*model.PermissionGrant, error) {
	const q = `SELECT ` + permissionColumns + ` FROM document_permissions WHERE document_id = $1 AND user_id = $2`
	var g model.PermissionGrant
	if err := scanGrant(r.db.QueryRowContext(ctx, q, docID, userID), &g); err != nil {
		return nil, mapNoRows(err)
	}
	return &g, nil
}

// UpdateLevel changes the permission level of an existing grant.
func (r *PermissionPostgres) UpdateLevel(ctx context.Context, docID model.DocumentID, userID model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error) {
	const q = `
		UPDATE document_permissions SET permission = $3
		WHERE document_id = $1 AND user_id = $2
		RETURNING ` + permissionColumns
	var g model.PermissionGrant
	if err := scanGrant(r.db.QueryRowContext(ctx, q, docID, userID, level), &g); err != nil {
		return nil, mapNoRows(err)
	}
	return &g, nil
}

// Delete removes the grant for the pair.
func (r *PermissionPostgres) Delete(ctx context.Context, docID model.DocumentID, userID model.UserID) error {
	const q = `DELETE FROM document_permissions WHERE document_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, docID, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
