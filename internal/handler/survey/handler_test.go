package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	sessionService "github.com/caremeal/caremeal/app/internal/service/session"
	surveyService "github.com/caremeal/caremeal/app/internal/service/survey"
	"github.com/caremeal/caremeal/app/internal/storage"
)

type stubBackend struct{}

func (stubBackend) Login(context.Context, api.LoginRequest) (api.LoginResponse, error) {
	return api.LoginResponse{}, nil
}

func (stubBackend) SignUp(context.Context, api.SignUpRequest) (api.StatusResponse, error) {
	return api.StatusResponse{Status: "success"}, nil
}

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	sessions, err := sessionService.NewService(context.Background(), storage.NewMemoryStore(), stubBackend{}, nil)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	r := chi.NewRouter()
	New(surveyService.NewService(sessions)).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeWizard(t *testing.T, resp *httptest.ResponseRecorder) surveyService.Wizard {
	t.Helper()
	var w surveyService.Wizard
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	return w
}

func TestGuestSurveyFlow(t *testing.T) {
	r := setupRouter(t)

	resp := do(r, http.MethodPost, "/surveys", map[string]string{"name": "홍길동"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	w := decodeWizard(t, resp)
	base := "/surveys/" + w.ID

	resp = do(r, http.MethodPost, base+"/next", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before basics, got %d", resp.Code)
	}
	var verr struct {
		Error string `json:"error"`
		Step  int    `json:"step"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&verr)
	if verr.Step != 1 || verr.Error != "모든 기본 정보를 입력해주세요." {
		t.Fatalf("unexpected validation body %+v", verr)
	}

	form := w.Form
	form.Age = "45"
	form.Height = "170"
	form.Weight = "80"
	form.ConsentHealth = true
	form.ConsentAI = true
	resp = do(r, http.MethodPut, base+"/form", form)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if w = decodeWizard(t, resp); w.BMI != 27.7 {
		t.Fatalf("expected BMI 27.7, got %v", w.BMI)
	}

	do(r, http.MethodPost, base+"/next", nil)
	resp = do(r, http.MethodPost, base+"/conditions", map[string]string{"condition": diagnosis.ConditionGeneral})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	for i := 0; i < 5; i++ {
		resp = do(r, http.MethodPost, base+"/next", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("next %d: expected 200, got %d", i, resp.Code)
		}
	}

	w = decodeWizard(t, resp)
	if !w.Completed || w.Result == nil {
		t.Fatalf("expected completed survey, got %+v", w)
	}
	if w.Result.HabitScore != 92 {
		t.Fatalf("expected habit score 92, got %d", w.Result.HabitScore)
	}

	if resp := do(r, http.MethodPost, base+"/next", nil); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 after completion, got %d", resp.Code)
	}
}

func TestUnknownConditionAndSurvey(t *testing.T) {
	r := setupRouter(t)

	w := decodeWizard(t, do(r, http.MethodPost, "/surveys", nil))

	resp := do(r, http.MethodPost, "/surveys/"+w.ID+"/conditions", map[string]string{"condition": "감기"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	if resp := do(r, http.MethodGet, "/surveys/missing", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDiscardSurvey(t *testing.T) {
	r := setupRouter(t)

	w := decodeWizard(t, do(r, http.MethodPost, "/surveys", nil))

	if resp := do(r, http.MethodDelete, "/surveys/"+w.ID, nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := do(r, http.MethodGet, "/surveys/"+w.ID, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after discard, got %d", resp.Code)
	}
}

func TestOptions(t *testing.T) {
	r := setupRouter(t)
	if resp := do(r, http.MethodGet, "/surveys/options", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
