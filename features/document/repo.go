package document

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Upsert(ctx context.Context, doc *Document) error {
	query := `INSERT INTO policy_documents (name, path, status, chunk_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO UPDATE SET status = $3, chunk_count = $4, updated_at = NOW()
		RETURNING id`
	return r.db.QueryRowContext(ctx, query, doc.Name, doc.Path, doc.Status, doc.ChunkCount).Scan(&doc.ID)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Document, error) {
	doc := &Document{}
	query := `SELECT id, name, path, status, chunk_count, created_at, updated_at FROM policy_documents WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc.ID, &doc.Name, &doc.Path, &doc.Status, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT id, name, path, status, chunk_count, created_at, updated_at FROM policy_documents ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Name, &d.Path, &d.Status, &d.ChunkCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policy_documents`).Scan(&count)
	return count, err
}
