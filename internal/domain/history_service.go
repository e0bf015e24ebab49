package domain

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Vovarama1992/pdf_tools/internal/error_notificator"
	"github.com/Vovarama1992/pdf_tools/internal/ports"
	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type historyService struct {
	repo     ports.HistoryRepo
	notifier error_notificator.Notificator
	now      func() time.Time
}

func NewHistoryService(repo ports.HistoryRepo, n error_notificator.Notificator) ports.HistoryService {
	return &historyService{
		repo:     repo,
		notifier: n,
		now:      time.Now,
	}
}

func (s *historyService) Record(ctx context.Context, kind string, inputs, outputs []string) (string, error) {
	op := ports.Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Inputs:    inputs,
		Outputs:   outputs,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, op); err != nil {
		if nErr := s.notifier.Notify(ctx, err,
			fmt.Sprintf("Ошибка записи истории: kind=%s outputs=%d", kind, len(outputs))); nErr != nil {
			log.Printf("[history] notify failed: %v", nErr)
		}
		return "", err
	}
	return op.ID, nil
}

func (s *historyService) ListRecent(ctx context.Context, limit int) ([]ports.Operation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *historyService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.repo.DeleteOlderThan(ctx, s.now().Add(-retention))
}
