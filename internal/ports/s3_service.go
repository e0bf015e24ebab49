package ports

import (
	"context"
	"io"
	"time"
)

type S3Service interface {
	ObjectKey(operation, filename string) string
	SavePDF(ctx context.Context, operation string, file io.Reader, size int64, filename string) (string, error)
	// Sweep удаляет объекты старше retention, возвращает сколько удалено
	Sweep(ctx context.Context, retention time.Duration) (int, error)
}
