package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/analysis/nutrition"
	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/model/chat"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/remote"
	"github.com/caremeal/caremeal/app/internal/service/events"
	"github.com/caremeal/caremeal/app/internal/storage"
)

var (
	ErrEmptyMessage      = errors.New("message is empty")
	ErrBusy              = errors.New("a reply is already pending")
	ErrMessageNotFound   = errors.New("message not found")
	ErrGreetingProtected = errors.New("the greeting cannot be deleted")
	ErrNotAnAIMessage    = errors.New("only doctor replies can be saved as meals")
	ErrEmptyImage        = errors.New("image is empty")
)

const (
	connectionFailedText = "⚠️ 서버 연결에 실패했습니다. 잠시 후 다시 시도해주세요."
	analysisFailedText   = "⚠️ 이미지 분석에 실패했습니다. 다시 시도해주세요."
	imageUploadedText    = "📸 식단 사진을 업로드했습니다."
)

// Backend is the remote doctor.
type Backend interface {
	Chat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error)
	AnalyzeFood(ctx context.Context, userID, filename string, image io.Reader) (api.ChatResponse, error)
}

// Replier answers without the backend; the canned mock satisfies it.
type Replier interface {
	Chat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error)
}

// Generator is the optional local model tier.
type Generator interface {
	GenerateReply(ctx context.Context, profile *diagnosis.Result, history []chat.Message, userMessage string) (string, error)
}

// Profile exposes who is chatting.
type Profile interface {
	UserID() string
	Diagnosis() *diagnosis.Result
}

// Dependencies wires the chat service. Generator, Images and Events are optional.
type Dependencies struct {
	Store     storage.Store
	Backend   Backend
	Generator Generator
	Mock      Replier
	Images    remote.ImageStore
	Profile   Profile
	Events    events.Publisher
}

// Service owns the single conversation with the doctor.
type Service struct {
	mu       sync.Mutex
	messages []chat.Message
	pending  bool

	store     storage.Store
	backend   Backend
	generator Generator
	mock      Replier
	images    remote.ImageStore
	profile   Profile
	events    events.Publisher
	now       func() time.Time
	log       *logrus.Entry
}

// NewService restores the transcript from the store.
func NewService(ctx context.Context, deps Dependencies) (*Service, error) {
	if deps.Events == nil {
		deps.Events = events.Discard{}
	}
	s := &Service{
		store:     deps.Store,
		backend:   deps.Backend,
		generator: deps.Generator,
		mock:      deps.Mock,
		images:    deps.Images,
		profile:   deps.Profile,
		events:    deps.Events,
		now:       time.Now,
		log:       logrus.WithField("component", "chat"),
	}

	var saved []chat.Message
	ok, err := storage.LoadJSON(ctx, s.store, storage.KeyChatHistory, &saved)
	if err != nil {
		return nil, fmt.Errorf("restore chat history: %w", err)
	}
	if ok && len(saved) > 0 {
		s.messages = saved
	} else {
		s.messages = []chat.Message{chat.Greeting(s.now())}
	}
	return s, nil
}

// Messages returns the transcript in order.
func (s *Service) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.messages)
}

// Pending reports whether a reply is being fetched.
func (s *Service) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Send appends the user's message and waits for the doctor's reply.
func (s *Service) Send(ctx context.Context, text string) (chat.Message, chat.Message, error) {
	userMsg, err := s.Begin(ctx, text)
	if err != nil {
		return chat.Message{}, chat.Message{}, err
	}
	reply, err := s.Complete(ctx, userMsg)
	return userMsg, reply, err
}

// Begin records the user's message and marks a reply as pending.
func (s *Service) Begin(ctx context.Context, text string) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyMessage
	}
	msg := chat.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    chat.SenderUser,
		Timestamp: s.now(),
	}
	if err := s.startPending(ctx, msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// Complete fetches the reply for a message recorded by Begin. Failures of
// every reply tier are reported in the transcript, not as an error. The reply
// outlives a cancelled caller so the pending message is always answered.
func (s *Service) Complete(ctx context.Context, userMsg chat.Message) (chat.Message, error) {
	ctx = context.WithoutCancel(ctx)
	history := s.historyBefore(userMsg.ID)

	reply := chat.Message{
		ID:        uuid.NewString(),
		Sender:    chat.SenderAI,
		Timestamp: s.now(),
	}

	resp, err := s.reply(ctx, history, userMsg.Text)
	if err != nil {
		s.log.WithError(err).Warn("every reply tier failed")
		reply.Text = connectionFailedText
	} else {
		reply.Text = resp.Reply
		reply.Sources = resp.Sources
	}
	reply.Timestamp = s.now()

	return reply, s.finishPending(ctx, reply)
}

// UploadImage posts a meal photo and appends the analysis. The photo is kept
// inline unless an image store is configured.
func (s *Service) UploadImage(ctx context.Context, filename, contentType string, data []byte) (chat.Message, chat.Message, error) {
	if len(data) == 0 {
		return chat.Message{}, chat.Message{}, ErrEmptyImage
	}

	if err := s.reserve(); err != nil {
		return chat.Message{}, chat.Message{}, err
	}
	ctx = context.WithoutCancel(ctx)

	image := remote.EncodeDataURL(contentType, data)
	if s.images != nil {
		if hosted, err := s.images.Upload(ctx, image, s.userID()); err != nil {
			s.log.WithError(err).Warn("image upload failed, keeping inline copy")
		} else {
			image = hosted
		}
	}

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		Text:      imageUploadedText,
		Sender:    chat.SenderUser,
		Timestamp: s.now(),
		Image:     image,
	}
	s.record(ctx, userMsg)

	reply := chat.Message{
		ID:     uuid.NewString(),
		Sender: chat.SenderAI,
	}
	resp, err := s.analyze(ctx, filename, data)
	if err != nil {
		s.log.WithError(err).Warn("food analysis failed")
		reply.Text = analysisFailedText
	} else {
		reply.Text = resp.Reply
		reply.Sources = resp.Sources
		reply.IsAnalysis = true
	}
	reply.Timestamp = s.now()

	return userMsg, reply, s.finishPending(ctx, reply)
}

func (s *Service) analyze(ctx context.Context, filename string, data []byte) (api.ChatResponse, error) {
	if s.backend == nil {
		return api.ChatResponse{}, errNoReplyTier
	}
	return s.backend.AnalyzeFood(ctx, s.userID(), filename, bytes.NewReader(data))
}

// Delete removes one message. The greeting stays.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == chat.GreetingID {
		return ErrGreetingProtected
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrMessageNotFound
	}
	s.messages = append(s.messages[:idx:idx], s.messages[idx+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.events.Publish(events.ChatDeleted, map[string]string{"id": id})
	return nil
}

// ClearAll wipes the transcript back to the greeting.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.messages = []chat.Message{chat.Greeting(s.now())}
	err := s.persistLocked(ctx)
	snapshot := cloneMessages(s.messages)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.events.Publish(events.ChatCleared, snapshot)
	return nil
}

// Reset drops in-memory state after logout; the store is cleared by the session.
func (s *Service) Reset(context.Context) {
	s.mu.Lock()
	s.messages = []chat.Message{chat.Greeting(s.now())}
	s.pending = false
	s.mu.Unlock()
}

// ExtractMeal reads the nutrition facts out of a doctor reply. Analysis
// replies borrow the photo from the user message they answer.
func (s *Service) ExtractMeal(_ context.Context, id string) (nutrition.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nutrition.Result{}, ErrMessageNotFound
	}
	msg := s.messages[idx]
	if msg.Sender != chat.SenderAI {
		return nutrition.Result{}, ErrNotAnAIMessage
	}

	result := nutrition.Extract(msg.Text)
	result.Item.Image = msg.Image
	if result.Item.Image == "" && msg.IsAnalysis {
		for i := idx - 1; i >= 0; i-- {
			if prev := s.messages[i]; prev.Sender == chat.SenderUser {
				result.Item.Image = prev.Image
				break
			}
		}
	}
	return result, nil
}

func (s *Service) startPending(ctx context.Context, msg chat.Message) error {
	if err := s.reserve(); err != nil {
		return err
	}
	s.record(ctx, msg)
	return nil
}

// reserve claims the single pending slot.
func (s *Service) reserve() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return ErrBusy
	}
	s.pending = true
	return nil
}

// record appends the message that holds the pending slot.
func (s *Service) record(ctx context.Context, msg chat.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).Error("failed to persist chat history")
	}
	s.events.Publish(events.ChatMessage, msg)
	s.events.Publish(events.ChatPending, map[string]bool{"pending": true})
}

func (s *Service) finishPending(ctx context.Context, reply chat.Message) error {
	s.mu.Lock()
	s.pending = false
	s.messages = append(s.messages, reply)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.events.Publish(events.ChatMessage, reply)
	s.events.Publish(events.ChatPending, map[string]bool{"pending": false})
	if err != nil {
		return fmt.Errorf("persist chat history: %w", err)
	}
	return nil
}

func (s *Service) historyBefore(id string) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		idx = len(s.messages)
	}
	return cloneMessages(s.messages[:idx])
}

func (s *Service) indexLocked(id string) int {
	for i, m := range s.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persistLocked(ctx context.Context) error {
	return storage.SaveJSON(ctx, s.store, storage.KeyChatHistory, s.messages)
}

func (s *Service) userID() string {
	if s.profile == nil {
		return ""
	}
	return s.profile.UserID()
}

func cloneMessages(in []chat.Message) []chat.Message {
	out := make([]chat.Message, len(in))
	copy(out, in)
	for i := range out {
		if in[i].Sources != nil {
			out[i].Sources = append([]string{}, in[i].Sources...)
		}
	}
	return out
}
