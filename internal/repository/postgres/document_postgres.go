package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"docvault/internal/database"
	"docvault/internal/model"
	"docvault/internal/repository"
)

const documentColumns = `id, owner_id, filename, original_filename, storage_path, size, content_type, created_at, updated_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func scanDocument(row rowScanner, d *model.Document) error {
	return row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Filename,
		&d.OriginalFilename,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
}

// Create inserts a new document row with its tags and metadata in one transaction.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, owner_id, filename, original_filename, storage_path, size, content_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + documentColumns

	var out model.Document
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, q,
			doc.ID,
			doc.OwnerID,
			doc.Filename,
			doc.OriginalFilename,
			doc.StoragePath,
			doc.Size,
			doc.ContentType,
			doc.CreatedAt,
			doc.UpdatedAt,
		)
		if err := scanDocument(row, &out); err != nil {
			return err
		}
		return insertAnnotations(ctx, tx, out.ID, doc.Tags, doc.Metadata)
	})
	if err != nil {
		return nil, err
	}
	out.Tags = doc.Tags
	out.Metadata = doc.Metadata
	return &out, nil
}

func insertAnnotations(ctx context.Context, q queryer, id model.DocumentID, tags []string, metadata []model.MetadataEntry) error {
	const qTag = `INSERT INTO document_tags (document_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	const qMeta = `INSERT INTO document_metadata (document_id, key, value) VALUES ($1, $2, $3)`

	for _, tag := range tags {
		if _, err := q.ExecContext(ctx, qTag, id, tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	for _, m := range metadata {
		if _, err := q.ExecContext(ctx, qMeta, id, m.Key, m.Value); err != nil {
			return fmt.Errorf("insert metadata: %w", err)
		}
	}
	return nil
}

// FindByID fetches a single document by its ID along with its tags and metadata.
func (r *DocumentPostgres) FindByID(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var d model.Document
	if err := scanDocument(r.db.QueryRowContext(ctx, q, id), &d); err != nil {
		return nil, mapNoRows(err)
	}

	tags, err := r.tags(ctx, id)
	if err != nil {
		return nil, err
	}
	metadata, err := r.metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Tags = tags
	d.Metadata = metadata
	return &d, nil
}

func (r *DocumentPostgres) tags(ctx context.Context, id model.DocumentID) ([]string, error) {
	const q = `SELECT tag FROM document_tags WHERE document_id = $1 ORDER BY tag`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *DocumentPostgres) metadata(ctx context.Context, id model.DocumentID) ([]model.MetadataEntry, error) {
	const q = `SELECT key, value FROM document_metadata WHERE document_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.MetadataEntry, 0)
	for rows.Next() {
		var m model.MetadataEntry
		if err := rows.Scan(&m.Key, &m.Value); err != nil {
			return nil, err
		}
		entries = append(entries, m)
	}
	return entries, rows.Err()
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.Document], error) {
	return r.Search(ctx, repository.SearchQuery{
		OwnerID:   lq.OwnerID,
		SortBy:    repository.SortByCreatedAt,
		Order:     repository.SortDesc,
		PageQuery: lq.PageQuery,
	})
}

// Rename updates the user-facing file name.
func (r *DocumentPostgres) Rename(ctx context.Context, id model.DocumentID, name string, at time.Time) error {
	const q = `UPDATE documents SET original_filename = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, name, at)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ReplaceAnnotations replaces the tag and metadata sets and touches updated_at.
func (r *DocumentPostgres) ReplaceAnnotations(ctx context.Context, id model.DocumentID, tags []string, metadata []model.MetadataEntry, at time.Time) error {
	const (
		qTouch      = `UPDATE documents SET updated_at = $2 WHERE id = $1`
		qClearTags  = `DELETE FROM document_tags WHERE document_id = $1`
		qClearMetas = `DELETE FROM document_metadata WHERE document_id = $1`
	)
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, qTouch, id, at)
		if err != nil {
			return err
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, qClearTags, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, qClearMetas, id); err != nil {
			return err
		}
		return insertAnnotations(ctx, tx, id, tags, metadata)
	})
}

// Delete removes a document by ID. Grants, tokens, tags and metadata are removed
// by ON DELETE CASCADE in the same statement. A missing row is not an error.
func (r *DocumentPostgres) Delete(ctx context.Context, id model.DocumentID) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// IDsByTags returns the distinct documents carrying any of the given tags.
func (r *DocumentPostgres) IDsByTags(ctx context.Context, tags []string) ([]model.DocumentID, error) {
	if len(tags) == 0 {
		return []model.DocumentID{}, nil
	}
	var p params
	vs := make([]any, len(tags))
	for i, t := range tags {
		vs[i] = t
	}
	q := `SELECT DISTINCT document_id FROM document_tags WHERE tag IN (` + p.list(vs) + `)`
	return r.queryIDs(ctx, q, p...)
}

// IDsByMetadata returns the distinct documents having an entry whose key equals
// a filter key and whose value contains the filter value.
func (r *DocumentPostgres) IDsByMetadata(ctx context.Context, filters []repository.MetadataFilter) ([]model.DocumentID, error) {
	if len(filters) == 0 {
		return []model.DocumentID{}, nil
	}
	var p params
	clauses := make([]string, len(filters))
	for i, f := range filters {
		clauses[i] = fmt.Sprintf("(key = %s AND value ILIKE %s)", p.add(f.Key), p.add(containsPattern(f.Value)))
	}
	q := `SELECT DISTINCT document_id FROM document_metadata WHERE ` + strings.Join(clauses, " OR ")
	return r.queryIDs(ctx, q, p...)
}

func (r *DocumentPostgres) queryIDs(ctx context.Context, q string, args ...any) ([]model.DocumentID, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]model.DocumentID, 0)
	for rows.Next() {
		var id model.DocumentID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var sortColumns = map[repository.SortField]string{
	repository.SortByFilename:  "original_filename",
	repository.SortBySize:      "size",
	repository.SortByCreatedAt: "created_at",
}

// Search counts and fetches one page of documents matching the primary filter.
func (r *DocumentPostgres) Search(ctx context.Context, sq repository.SearchQuery) (*repository.PageResult[model.Document], error) {
	var p params
	var where []string
	if sq.Filename != "" {
		where = append(where, "original_filename ILIKE "+p.add(containsPattern(sq.Filename)))
	}
	if sq.ContentType != "" {
		where = append(where, "content_type = "+p.add(sq.ContentType))
	}
	if sq.OwnerID != "" {
		where = append(where, "owner_id = "+p.add(sq.OwnerID))
	}
	if sq.IDs != nil {
		if len(sq.IDs) == 0 {
			return &repository.PageResult[model.Document]{Items: []model.Document{}}, nil
		}
		vs := make([]any, len(sq.IDs))
		for i, id := range sq.IDs {
			vs[i] = id
		}
		where = append(where, "id IN ("+p.list(vs)+")")
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+whereSQL, p...).Scan(&total); err != nil {
		return nil, err
	}
	if total == 0 {
		return &repository.PageResult[model.Document]{Items: []model.Document{}}, nil
	}

	col, ok := sortColumns[sq.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if sq.Order == repository.SortAsc {
		dir = "ASC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
	page := ""
	if sq.Limit > 0 {
		page = " LIMIT " + p.add(sq.Limit)
	}
	page += " OFFSET " + p.add(max(sq.Offset, 0))

	rows, err := r.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents`+whereSQL+order+page, p...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}
