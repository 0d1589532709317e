// Package chat relays messages to the backend chatbot.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/user"
)

type Backend interface {
	Chat(ctx context.Context, userID, message string) (*remote.ChatReply, error)
}

// Responder is told when the user answered; *notification.Poller satisfies it.
type Responder interface {
	Responded(ctx context.Context)
}

type Service struct {
	backend   Backend
	session   user.SessionReader
	responder Responder
	logger    *zap.SugaredLogger
}

func NewService(b Backend, session user.SessionReader, responder Responder, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{backend: b, session: session, responder: responder, logger: logger}
}

// Send posts message and returns the bot's reply. A successful exchange marks
// the surfaced notification as responded.
func (s *Service) Send(ctx context.Context, message string) (string, error) {
	userID, err := user.Require(s.session)
	if err != nil {
		return "", err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", remote.ErrValidation)
	}
	reply, err := s.backend.Chat(ctx, userID, message)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	if s.responder != nil {
		s.responder.Responded(ctx)
	}
	s.logger.Debugw("chat exchange", "user_id", userID, "chars", len(message))
	return reply.Response, nil
}
