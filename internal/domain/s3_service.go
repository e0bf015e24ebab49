package domain

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/Vovarama1992/pdf_tools/internal/error_notificator"
	"github.com/Vovarama1992/pdf_tools/internal/ports"
	"github.com/google/uuid"
)

const pdfContentType = "application/pdf"

// Operations — префиксы верхнего уровня, под которыми сервис пишет в бакет.
// Sweep трогает только их, чужие объекты в бакете не удаляются.
var Operations = []string{"merge", "split", "compress"}

func knownOperation(op string) bool {
	for _, o := range Operations {
		if o == op {
			return true
		}
	}
	return false
}

type s3Service struct {
	client   ports.S3Client
	notifier error_notificator.Notificator
	now      func() time.Time
}

func NewS3Service(client ports.S3Client, n error_notificator.Notificator) ports.S3Service {
	return &s3Service{client: client, notifier: n, now: time.Now}
}

// ObjectKey — путь в бакете: <operation>/<date>/<uuid>-<filename>
func (s *s3Service) ObjectKey(operation, filename string) string {
	date := s.now().Format("2006-01-02")
	clean := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if clean == "." || clean == ".." || clean == "/" {
		clean = "document.pdf"
	}
	return fmt.Sprintf("%s/%s/%s-%s", operation, date, uuid.NewString(), clean)
}

func (s *s3Service) SavePDF(
	ctx context.Context,
	operation string,
	file io.Reader,
	size int64,
	filename string,
) (string, error) {

	if operation == "" {
		return "", fmt.Errorf("operation required")
	}
	if !knownOperation(operation) {
		return "", fmt.Errorf("unknown operation %q", operation)
	}

	key := s.ObjectKey(operation, filename)

	url, err := s.client.PutObject(ctx, key, file, size, pdfContentType)
	if err != nil {
		if nErr := s.notifier.Notify(ctx, err, fmt.Sprintf("Ошибка загрузки в S3: key=%s", key)); nErr != nil {
			log.Printf("[s3] notify failed: %v", nErr)
		}
		return "", err
	}
	return url, nil
}

func (s *s3Service) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}

	before := s.now().Add(-retention)
	removed := 0
	for _, op := range Operations {
		keys, err := s.client.ListOlderThan(ctx, op+"/", before)
		if err != nil {
			return removed, err
		}

		for _, key := range keys {
			if err := s.client.RemoveObject(ctx, key); err != nil {
				log.Printf("[s3-sweep] %v", err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}
