package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/config"
	"github.com/caremeal/caremeal/app/internal/model/chat"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
)

const historyLimit = 10

// Service answers chat messages with a local model when the backend is unreachable.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	log   *logrus.Entry
}

// NewService creates the chat model from configuration and compiles the chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel)
}

// NewServiceWithModel compiles the chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chain: runnable,
		log:   logrus.WithField("component", "ai"),
	}, nil
}

// GenerateReply runs the doctor chain for one user message.
func (s *Service) GenerateReply(ctx context.Context, profile *diagnosis.Result, history []chat.Message, userMessage string) (string, error) {
	input := buildChainInput(profile, history, userMessage)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	s.log.WithField("length", len(response.Content)).Info("generated fallback reply")
	return response.Content, nil
}

func buildChainInput(profile *diagnosis.Result, history []chat.Message, userMessage string) map[string]any {
	return map[string]any{
		"system":  BuildSystemPrompt(profile),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}
}

// buildHistoryMessages keeps the last turns and drops the canned greeting.
func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		if msg.ID == chat.GreetingID {
			continue
		}
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderAI:
			history = append(history, schema.AssistantMessage(msg.DisplayText(), nil))
		}
	}

	return history
}
