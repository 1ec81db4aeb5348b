package document_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"swiftvisa/backend/features/document"
)

func TestPostgresRepo_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	t.Run("Insert Assigns ID", func(t *testing.T) {
		doc := &document.Document{
			Name:       "visa_policy.txt",
			Path:       "data/corpus/visa_policy.txt",
			Status:     document.StatusIndexed,
			ChunkCount: 12,
		}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO policy_documents")).
			WithArgs(doc.Name, doc.Path, doc.Status, doc.ChunkCount).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("doc-1"))

		err := repo.Upsert(context.Background(), doc)
		assert.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
	})

	t.Run("Conflict On Path Updates In Place", func(t *testing.T) {
		doc := &document.Document{
			Name:   "visa_policy.txt",
			Path:   "data/corpus/visa_policy.txt",
			Status: document.StatusSkipped,
		}

		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (path) DO UPDATE")).
			WithArgs(doc.Name, doc.Path, doc.Status, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("doc-1"))

		err := repo.Upsert(context.Background(), doc)
		assert.NoError(t, err)
	})
}

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "name", "path", "status", "chunk_count", "created_at", "updated_at"}).
			AddRow("doc-1", "visa_policy.txt", "data/corpus/visa_policy.txt", "indexed", 12, now, now)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, path, status, chunk_count, created_at, updated_at FROM policy_documents WHERE id = $1")).
			WithArgs("doc-1").
			WillReturnRows(rows)

		doc, err := repo.Get(context.Background(), "doc-1")
		assert.NoError(t, err)
		assert.Equal(t, "visa_policy.txt", doc.Name)
		assert.Equal(t, 12, doc.ChunkCount)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, path, status, chunk_count, created_at, updated_at FROM policy_documents WHERE id = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "path", "status", "chunk_count", "created_at", "updated_at"}).
		AddRow("doc-1", "a_policy.txt", "data/corpus/a_policy.txt", "indexed", 5, now, now).
		AddRow("doc-2", "b_policy.txt", "data/corpus/b_policy.txt", "skipped", 0, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC")).WillReturnRows(rows)

	docs, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "a_policy.txt", docs[0].Name)
	assert.Equal(t, document.StatusSkipped, docs[1].Status)
}

func TestPostgresRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM policy_documents")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}
