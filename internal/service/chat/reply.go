package chat

import (
	"context"
	"errors"

	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/model/chat"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
)

var errNoReplyTier = errors.New("no reply tier configured")

// reply asks the backend first, then the local model, then the canned replies.
func (s *Service) reply(ctx context.Context, history []chat.Message, text string) (api.ChatResponse, error) {
	req := api.ChatRequest{UserID: s.userID(), UserMessage: text}
	lastErr := errNoReplyTier

	if s.backend != nil {
		resp, err := s.backend.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		s.log.WithError(err).Warn("backend chat failed, falling back")
		lastErr = err
	}

	if s.generator != nil {
		generated, err := s.generator.GenerateReply(ctx, s.profileDiagnosis(), history, text)
		if err == nil {
			return api.ChatResponse{Reply: generated, Sources: []string{}}, nil
		}
		s.log.WithError(err).Warn("local model failed, falling back")
		lastErr = err
	}

	if s.mock != nil {
		resp, err := s.mock.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return api.ChatResponse{}, lastErr
}

func (s *Service) profileDiagnosis() *diagnosis.Result {
	if s.profile == nil {
		return nil
	}
	return s.profile.Diagnosis()
}
