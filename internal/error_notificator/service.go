package error_notificator

import (
	"context"

	"github.com/Vovarama1992/voice_translator/internal/session"
	"go.uber.org/zap"
)

// Service — session.Reporter: пишет в лог и шлёт админу то,
// что не является обычной ошибкой пользователя.
type Service struct {
	infra Notificator
	log   *zap.Logger
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{infra: infra, log: log}
}

func (s *Service) Report(ctx context.Context, sessionID string, f *session.Failure) {
	if f == nil || !notable(f.Kind) {
		return
	}
	if err := s.infra.Notify(ctx, sessionID, f.Err, string(f.Kind)); err != nil {
		s.log.Warn("[error_notificator] notify failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

// тишина и пустой ввод — не инциденты
func notable(k session.FailureKind) bool {
	switch k {
	case session.KindInputEmpty, session.KindNoSpeechUnderstood:
		return false
	default:
		return true
	}
}
