package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/caremeal/caremeal/app/internal/api"
	sessionService "github.com/caremeal/caremeal/app/internal/service/session"
	surveyService "github.com/caremeal/caremeal/app/internal/service/survey"
	"github.com/caremeal/caremeal/app/internal/storage"
)

type stubBackend struct {
	loginResp api.LoginResponse
	loginErr  error
}

func (s *stubBackend) Login(context.Context, api.LoginRequest) (api.LoginResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubBackend) SignUp(context.Context, api.SignUpRequest) (api.StatusResponse, error) {
	return api.StatusResponse{Status: "success"}, nil
}

func setupRouter(t *testing.T, backend *stubBackend) (*chi.Mux, *sessionService.Service) {
	t.Helper()
	sessions, err := sessionService.NewService(context.Background(), storage.NewMemoryStore(), backend, nil)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	r := chi.NewRouter()
	New(sessions, surveyService.NewService(sessions)).RegisterRoutes(r)
	return r, sessions
}

func post(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestLoginSuccess(t *testing.T) {
	r, sessions := setupRouter(t, &stubBackend{loginResp: api.LoginResponse{
		Status: "success",
		Data:   json.RawMessage(`{"name":"김환자","age":52}`),
	}})

	resp := post(r, "/login", map[string]string{"userId": "kim", "password": "pw"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var state sessionService.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !state.LoggedIn || state.UserID != "kim" {
		t.Fatalf("unexpected state %+v", state)
	}
	if sessions.UserID() != "kim" {
		t.Fatalf("expected session user kim, got %s", sessions.UserID())
	}
}

func TestLoginRejected(t *testing.T) {
	r, _ := setupRouter(t, &stubBackend{loginResp: api.LoginResponse{Status: "fail", Message: "비밀번호가 틀렸습니다."}})

	resp := post(r, "/login", map[string]string{"userId": "kim", "password": "bad"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestLoginBackendDown(t *testing.T) {
	r, _ := setupRouter(t, &stubBackend{loginErr: errors.New("connection refused")})

	resp := post(r, "/login", map[string]string{"userId": "kim", "password": "pw"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestLoginRequiresFields(t *testing.T) {
	r, _ := setupRouter(t, &stubBackend{})

	resp := post(r, "/login", map[string]string{"userId": "kim"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTestLoginThenLogout(t *testing.T) {
	r, sessions := setupRouter(t, &stubBackend{})

	if resp := post(r, "/test-login", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !sessions.State().LoggedIn || sessions.Diagnosis() == nil {
		t.Fatal("expected demo profile after test login")
	}

	if resp := post(r, "/logout", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if sessions.State().LoggedIn {
		t.Fatal("expected logged out state")
	}
}

func TestSignupValidation(t *testing.T) {
	r, _ := setupRouter(t, &stubBackend{})

	resp := post(r, "/signup", sessionService.Credentials{Name: "홍길동", UserID: "hong", Password: "a", ConfirmPassword: "b"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on mismatch, got %d", resp.Code)
	}

	resp = post(r, "/signup", sessionService.Credentials{UserID: "hong"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on incomplete form, got %d", resp.Code)
	}
}

func TestSignupStartsSurvey(t *testing.T) {
	r, _ := setupRouter(t, &stubBackend{})

	resp := post(r, "/signup", sessionService.Credentials{Name: "홍길동", UserID: "hong", Password: "pw", ConfirmPassword: "pw"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var wizard surveyService.Wizard
	if err := json.NewDecoder(resp.Body).Decode(&wizard); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !wizard.Signup || wizard.Step != 1 || wizard.Form.Name != "홍길동" {
		t.Fatalf("unexpected wizard %+v", wizard)
	}
}
