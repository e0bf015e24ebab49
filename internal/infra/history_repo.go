package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/Vovarama1992/pdf_tools/internal/ports"
)

type historyRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) ports.HistoryRepo {
	return &historyRepo{db: db}
}

func (r *historyRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pdf_operations (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			inputs      TEXT[] NOT NULL DEFAULT '{}',
			outputs     TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *historyRepo) Create(ctx context.Context, op ports.Operation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pdf_operations (id, kind, inputs, outputs, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, op.ID, op.Kind, pq.Array(op.Inputs), pq.Array(op.Outputs), op.CreatedAt)
	return err
}

func (r *historyRepo) ListRecent(ctx context.Context, limit int) ([]ports.Operation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, inputs, outputs, created_at
		FROM pdf_operations
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []ports.Operation
	for rows.Next() {
		var op ports.Operation
		if err := rows.Scan(
			&op.ID,
			&op.Kind,
			pq.Array(&op.Inputs),
			pq.Array(&op.Outputs),
			&op.CreatedAt,
		); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func (r *historyRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM pdf_operations WHERE created_at < $1
	`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
