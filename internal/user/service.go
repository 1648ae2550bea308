package user

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"simple-chat/internal/apperr"
	"simple-chat/internal/metrics"
)

const maxNicknameLen = 64

type Service struct {
	store   *Store
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

func NewService(store *Store, m *metrics.Metrics, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Identify returns the user id for a session. When id does not resolve a
// new user is created and created is true. Either way the user's access
// time is refreshed.
func (s *Service) Identify(ctx context.Context, id int) (userID int, created bool, err error) {
	if !s.store.IsValid(id) {
		id = s.store.Create(time.Time{}, "")
		created = true
		s.metrics.UsersCreated.Inc()
		s.logger.Debugw("created session user", "user_id", id)
	}

	if err := s.store.SetLastAccessed(id, time.Time{}); err != nil {
		return 0, false, err
	}

	return id, created, nil
}

// IsValid lets the session middleware reject stale user ids.
func (s *Service) IsValid(id int) bool {
	return s.store.IsValid(id)
}

func (s *Service) Me(ctx context.Context, id int) (*User, error) {
	u, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Rename(ctx context.Context, id int, nickname string) (*User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperr.Invalid("nickname must not be empty")
	}
	if len(nickname) > maxNicknameLen {
		return nil, apperr.Invalid("nickname is too long")
	}

	if err := s.store.SetNickname(id, nickname); err != nil {
		return nil, err
	}
	s.logger.Infow("nickname changed", "user_id", id, "nickname", nickname)

	return s.Me(ctx, id)
}
