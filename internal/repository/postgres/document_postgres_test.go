package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/model"
	"docvault/internal/repository"
)

var documentRowColumns = []string{"id", "owner_id", "filename", "original_filename", "storage_path", "size", "content_type", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDocumentPostgres_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	doc := &model.Document{
		ID:               "doc-1",
		OwnerID:          "owner-1",
		Filename:         "uuid.pdf",
		OriginalFilename: "report.pdf",
		StoragePath:      "documents/uuid.pdf",
		Size:             123,
		ContentType:      "application/pdf",
		Tags:             []string{"finance"},
		Metadata:         []model.MetadataEntry{{Key: "dept", Value: "ops"}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO documents").
			WithArgs("doc-1", "owner-1", "uuid.pdf", "report.pdf", "documents/uuid.pdf", int64(123), "application/pdf", now, now).
			WillReturnRows(sqlmock.NewRows(documentRowColumns).
				AddRow("doc-1", "owner-1", "uuid.pdf", "report.pdf", "documents/uuid.pdf", 123, "application/pdf", now, now))
		mock.ExpectExec("INSERT INTO document_tags").
			WithArgs("doc-1", "finance").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO document_metadata").
			WithArgs("doc-1", "dept", "ops").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		out, err := repo.Create(ctx, doc)

		require.NoError(t, err)
		assert.Equal(t, model.DocumentID("doc-1"), out.ID)
		assert.Equal(t, model.UserID("owner-1"), out.OwnerID)
		assert.Equal(t, []string{"finance"}, out.Tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("annotation failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO documents").
			WillReturnRows(sqlmock.NewRows(documentRowColumns).
				AddRow("doc-1", "owner-1", "uuid.pdf", "report.pdf", "documents/uuid.pdf", 123, "application/pdf", now, now))
		mock.ExpectExec("INSERT INTO document_tags").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		out, err := repo.Create(ctx, doc)

		assert.Nil(t, out)
		assert.ErrorContains(t, err, "insert tag: disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows(documentRowColumns).
				AddRow("doc-1", "owner-1", "f.txt", "notes.txt", "documents/f.txt", 100, "text/plain", time.Now(), time.Now()))
		mock.ExpectQuery("SELECT tag FROM document_tags").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"tag"}).AddRow("a").AddRow("b"))
		mock.ExpectQuery("SELECT key, value FROM document_metadata").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).AddRow("dept", "ops"))

		doc, err := repo.FindByID(ctx, "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "notes.txt", doc.OriginalFilename)
		assert.Equal(t, []string{"a", "b"}, doc.Tags)
		assert.Equal(t, []model.MetadataEntry{{Key: "dept", Value: "ops"}}, doc.Metadata)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("all filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE original_filename ILIKE \$1 AND content_type = \$2 AND owner_id = \$3 AND id IN \(\$4, \$5\)`).
			WithArgs(`%50\%\_off%`, "application/pdf", "owner-1", "a", "c").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(`SELECT (.+) FROM documents WHERE (.+) ORDER BY size ASC, id ASC LIMIT \$6 OFFSET \$7`).
			WithArgs(`%50\%\_off%`, "application/pdf", "owner-1", "a", "c", 20, 0).
			WillReturnRows(sqlmock.NewRows(documentRowColumns).
				AddRow("a", "owner-1", "a.pdf", "50%_off a.pdf", "documents/a.pdf", 1, "application/pdf", time.Now(), time.Now()).
				AddRow("c", "owner-1", "c.pdf", "50%_off c.pdf", "documents/c.pdf", 2, "application/pdf", time.Now(), time.Now()))

		res, err := repo.Search(ctx, repository.SearchQuery{
			Filename:    "50%_off",
			ContentType: "application/pdf",
			OwnerID:     "owner-1",
			IDs:         []model.DocumentID{"a", "c"},
			SortBy:      repository.SortBySize,
			Order:       repository.SortAsc,
			PageQuery:   repository.PageQuery{Limit: 20, Offset: 0},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero total skips fetch", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE original_filename ILIKE \$1`).
			WithArgs("%report%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		res, err := repo.Search(ctx, repository.SearchQuery{Filename: "report", PageQuery: repository.PageQuery{Limit: 20}})

		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty id restriction never touches storage", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		res, err := repo.Search(ctx, repository.SearchQuery{IDs: []model.DocumentID{}})

		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("db down"))

		res, err := repo.Search(ctx, repository.SearchQuery{ContentType: "text/plain"})

		assert.Nil(t, res)
		assert.EqualError(t, err, "db down")
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE owner_id = \$1`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE owner_id = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("owner-1", 10, 0).
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow("doc-1", "owner-1", "f.txt", "f.txt", "documents/f.txt", 100, "text/plain", time.Now(), time.Now()))

	res, err := repo.List(ctx, repository.ListQuery{OwnerID: "owner-1", PageQuery: repository.PageQuery{Limit: 10}})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ListWithoutLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE owner_id = \$1`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT (.+) FROM documents WHERE owner_id = \$1 ORDER BY created_at DESC, id DESC OFFSET \$2$`).
		WithArgs("owner-1", 0).
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow("doc-1", "owner-1", "a.txt", "a.txt", "documents/a.txt", 1, "text/plain", time.Now(), time.Now()).
			AddRow("doc-2", "owner-1", "b.txt", "b.txt", "documents/b.txt", 2, "text/plain", time.Now(), time.Now()))

	res, err := repo.List(ctx, repository.ListQuery{OwnerID: "owner-1", PageQuery: repository.PageQuery{Offset: -3}})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_IDLookups(t *testing.T) {
	ctx := context.Background()

	t.Run("by tags", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectQuery(`SELECT DISTINCT document_id FROM document_tags WHERE tag IN \(\$1, \$2\)`).
			WithArgs("x", "z").
			WillReturnRows(sqlmock.NewRows([]string{"document_id"}).AddRow("a").AddRow("c"))

		ids, err := repo.IDsByTags(ctx, []string{"x", "z"})

		require.NoError(t, err)
		assert.Equal(t, []model.DocumentID{"a", "c"}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by metadata", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectQuery(`SELECT DISTINCT document_id FROM document_metadata WHERE \(key = \$1 AND value ILIKE \$2\) OR \(key = \$3 AND value ILIKE \$4\)`).
			WithArgs("dept", "%ops%", "year", "%2024%").
			WillReturnRows(sqlmock.NewRows([]string{"document_id"}).AddRow("b"))

		ids, err := repo.IDsByMetadata(ctx, []repository.MetadataFilter{{Key: "dept", Value: "ops"}, {Key: "year", Value: "2024"}})

		require.NoError(t, err)
		assert.Equal(t, []model.DocumentID{"b"}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		ids, err := repo.IDsByTags(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_Rename(t *testing.T) {
	ctx := context.Background()
	at := time.Now().UTC()

	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectExec("UPDATE documents SET original_filename").
			WithArgs("doc-1", "new.txt", at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Rename(ctx, "doc-1", "new.txt", at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDocumentPostgres(db)

		mock.ExpectExec("UPDATE documents SET original_filename").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Rename(ctx, "doc-1", "new.txt", at), repository.ErrNotFound)
	})
}

func TestDocumentPostgres_ReplaceAnnotations(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents SET updated_at").WithArgs("doc-1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM document_tags").WithArgs("doc-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM document_metadata").WithArgs("doc-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO document_tags").WithArgs("doc-1", "new").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceAnnotations(ctx, "doc-1", []string{"new"}, nil, at)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(ctx, "test-id")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
