package ports

import (
	"context"
	"time"
)

type HistoryService interface {
	Record(ctx context.Context, kind string, inputs, outputs []string) (string, error)
	ListRecent(ctx context.Context, limit int) ([]Operation, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}
