package error_notificator

import (
	"context"

	"go.uber.org/zap"
)

type Service struct {
	infra Notificator // может быть nil — тогда только лог
	log   *zap.SugaredLogger
}

func NewService(infra Notificator, log *zap.SugaredLogger) *Service {
	return &Service{infra: infra, log: log}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	s.log.Errorw("operation failed", "error", err, "details", details)

	if s.infra == nil {
		return nil
	}
	return s.infra.Notify(ctx, err, details)
}
