package ports

import (
	"context"
	"time"
)

// DTO для истории операций
type Operation struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Inputs    []string  `json:"inputs"`
	Outputs   []string  `json:"outputs"`
	CreatedAt time.Time `json:"created_at"`
}

// Репозиторий Postgres
type HistoryRepo interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, op Operation) error
	ListRecent(ctx context.Context, limit int) ([]Operation, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
