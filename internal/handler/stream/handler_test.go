package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/caremeal/caremeal/app/internal/api"
	chatservice "github.com/caremeal/caremeal/app/internal/service/chat"
	"github.com/caremeal/caremeal/app/internal/storage"
)

type stubBackend struct{}

func (stubBackend) Chat(_ context.Context, req api.ChatRequest) (api.ChatResponse, error) {
	return api.ChatResponse{Reply: "답변: " + req.UserMessage}, nil
}

func (stubBackend) AnalyzeFood(context.Context, string, string, io.Reader) (api.ChatResponse, error) {
	return api.ChatResponse{}, nil
}

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	chatSvc, err := chatservice.NewService(context.Background(), chatservice.Dependencies{
		Store:   storage.NewMemoryStore(),
		Backend: stubBackend{},
	})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}

	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	return r
}

func readFrames(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var frames []StreamResponse
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame StreamResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestStreamDeliversReply(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chat/stream?message=%EC%95%88%EB%85%95", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	frames := readFrames(t, resp.Body.String())
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	if frames[0].Event != "start" || frames[0].Message.Text != "안녕" {
		t.Fatalf("unexpected start frame %+v", frames[0])
	}
	if frames[2].Event != "message" || frames[2].Message.Text != "답변: 안녕" {
		t.Fatalf("unexpected message frame %+v", frames[2])
	}
	if !frames[3].Finished {
		t.Fatalf("expected finished end frame")
	}
}

func TestStreamRequiresMessage(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chat/stream", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
