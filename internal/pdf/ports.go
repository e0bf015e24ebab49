package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrTooFewFiles    = errors.New("at least 2 PDF files are required to merge")
	ErrUnknownQuality = errors.New("unknown compression quality")
)

// Input — загруженный пользователем файл.
type Input struct {
	Name string
	Data []byte
}

// Output — один сгенерированный PDF.
type Output struct {
	FileName string
	Data     []byte
	Pages    int
}

// Document — открытый PDF. Живёт в рамках одной операции.
type Document interface {
	Name() string
	PageCount() int
}

type PDFEngine interface {
	Load(ctx context.Context, name string, data []byte) (Document, error)
	Merge(ctx context.Context, docs []Document, w io.Writer) error
	Extract(ctx context.Context, doc Document, pageNumbers []int, w io.Writer) error
	Compress(ctx context.Context, doc Document, scale float64, w io.Writer) error
}

// EngineError — ошибка библиотеки: битый PDF, сбой чтения/записи.
type EngineError struct {
	Op   string
	Name string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("pdf %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pdf %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
