package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/storage"
)

type fakeBackend struct {
	loginResp api.LoginResponse
	loginErr  error
	signupErr error
	signups   []api.SignUpRequest
}

func (f *fakeBackend) Login(_ context.Context, _ api.LoginRequest) (api.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) SignUp(_ context.Context, req api.SignUpRequest) (api.StatusResponse, error) {
	f.signups = append(f.signups, req)
	if f.signupErr != nil {
		return api.StatusResponse{}, f.signupErr
	}
	return api.StatusResponse{Status: "success"}, nil
}

func newService(t *testing.T, backend *fakeBackend) (*Service, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc, err := NewService(context.Background(), store, backend, nil)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	return svc, store
}

func TestLoginMapsServerProfileWithDefaults(t *testing.T) {
	backend := &fakeBackend{loginResp: api.LoginResponse{
		Status: "success",
		Data:   json.RawMessage(`{"name":"박환자","age":61,"bmi":24.1}`),
	}}
	svc, store := newService(t, backend)

	profile, err := svc.Login(context.Background(), "park", "pw")
	if err != nil {
		t.Fatalf("Login err: %v", err)
	}

	if profile.Name != "박환자" || profile.Age != "61" || profile.Gender != "미정" {
		t.Fatalf("unexpected identity: %+v", profile)
	}
	if profile.Height != "0" || profile.Weight != "0" || profile.WeightStatus != "보통" || profile.HabitScore != 50 {
		t.Fatalf("unexpected defaults: %+v", profile)
	}
	if len(profile.Conditions) != 1 || profile.Conditions[0] != "일반" {
		t.Fatalf("unexpected conditions: %v", profile.Conditions)
	}
	if profile.BMI != 24.1 || profile.UserID != "park" {
		t.Fatalf("unexpected bmi/user: %+v", profile)
	}

	if flag, _, _ := store.Get(context.Background(), storage.KeyLoggedIn); flag != "true" {
		t.Fatalf("expected login flag persisted, got %q", flag)
	}
	if svc.UserID() != "park" || !svc.State().LoggedIn {
		t.Fatalf("unexpected state: %+v", svc.State())
	}
}

func TestLoginRejected(t *testing.T) {
	backend := &fakeBackend{loginResp: api.LoginResponse{Status: "fail", Message: "비밀번호가 틀렸습니다."}}
	svc, _ := newService(t, backend)

	_, err := svc.Login(context.Background(), "park", "bad")
	var rejected *LoginRejectedError
	if !errors.As(err, &rejected) || rejected.Message != "비밀번호가 틀렸습니다." {
		t.Fatalf("expected LoginRejectedError, got %v", err)
	}
	if svc.State().LoggedIn {
		t.Fatal("should not be logged in")
	}
}

func TestLoginTransportFailure(t *testing.T) {
	svc, _ := newService(t, &fakeBackend{loginErr: errors.New("connection refused")})

	if _, err := svc.Login(context.Background(), "park", "pw"); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
}

func TestValidateSignup(t *testing.T) {
	ok := Credentials{Name: "홍길동", UserID: "hong", Password: "pw", ConfirmPassword: "pw"}
	if err := ValidateSignup(ok); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	missing := ok
	missing.Name = ""
	if err := ValidateSignup(missing); !errors.Is(err, ErrSignupIncomplete) {
		t.Fatalf("expected ErrSignupIncomplete, got %v", err)
	}

	mismatch := ok
	mismatch.ConfirmPassword = "other"
	if err := ValidateSignup(mismatch); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestCompleteSignupBuildsRequest(t *testing.T) {
	backend := &fakeBackend{}
	svc, _ := newService(t, backend)

	result := &diagnosis.Result{Name: "홍길동", Age: "52세", Conditions: []string{"당뇨병", "고혈압"}}
	creds := Credentials{Name: "홍길동", UserID: "hong", Password: "pw", ConfirmPassword: "pw"}

	profile, err := svc.CompleteSignup(context.Background(), creds, result)
	if err != nil {
		t.Fatalf("CompleteSignup err: %v", err)
	}
	if profile.UserID != "hong" {
		t.Fatalf("expected userId on result, got %q", profile.UserID)
	}

	if len(backend.signups) != 1 {
		t.Fatalf("expected one signup call, got %d", len(backend.signups))
	}
	req := backend.signups[0]
	if req.Age != 52 || req.DiabetesType != "당뇨병, 고혈압" || req.Name != "홍길동" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !svc.State().LoggedIn {
		t.Fatal("expected logged in after signup")
	}
}

func TestCompleteSignupWithoutConditions(t *testing.T) {
	backend := &fakeBackend{}
	svc, _ := newService(t, backend)

	creds := Credentials{Name: "홍길동", UserID: "hong", Password: "pw", ConfirmPassword: "pw"}
	if _, err := svc.CompleteSignup(context.Background(), creds, &diagnosis.Result{Age: "40"}); err != nil {
		t.Fatalf("CompleteSignup err: %v", err)
	}
	if req := backend.signups[0]; req.DiabetesType != "일반" || req.Age != 40 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestCompleteSignupFailureStaysLoggedOut(t *testing.T) {
	svc, _ := newService(t, &fakeBackend{signupErr: errors.New("boom")})

	creds := Credentials{Name: "홍길동", UserID: "hong", Password: "pw", ConfirmPassword: "pw"}
	if _, err := svc.CompleteSignup(context.Background(), creds, &diagnosis.Result{}); !errors.Is(err, ErrSignupFailed) {
		t.Fatalf("expected ErrSignupFailed, got %v", err)
	}
	if svc.State().LoggedIn {
		t.Fatal("should stay logged out")
	}
}

func TestTestLoginAndRestore(t *testing.T) {
	svc, store := newService(t, &fakeBackend{})
	if _, err := svc.TestLogin(context.Background()); err != nil {
		t.Fatalf("TestLogin err: %v", err)
	}

	restored, err := NewService(context.Background(), store, &fakeBackend{}, nil)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	state := restored.State()
	if !state.LoggedIn || state.UserID != TestUserID || state.Diagnosis.HabitScore != 88 {
		t.Fatalf("unexpected restored state: %+v", state)
	}
	if len(state.SelectedConditions) != 1 || state.SelectedConditions[0] != diagnosis.ConditionDiabetes {
		t.Fatalf("unexpected conditions: %v", state.SelectedConditions)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	svc, store := newService(t, &fakeBackend{})
	ctx := context.Background()
	_, _ = svc.TestLogin(ctx)
	_ = store.Set(ctx, storage.KeyChatHistory, "[]")

	var hookCalled bool
	svc.OnLogout(func(context.Context) { hookCalled = true })

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if !hookCalled {
		t.Fatal("expected logout hook to run")
	}
	if _, ok, _ := store.Get(ctx, storage.KeyChatHistory); ok {
		t.Fatal("expected chat history to be cleared")
	}
	if svc.UserID() != GuestUserID || svc.State().LoggedIn {
		t.Fatalf("unexpected state after logout: %+v", svc.State())
	}
}

func TestApplyDiagnosisKeepsUserID(t *testing.T) {
	svc, _ := newService(t, &fakeBackend{})
	ctx := context.Background()
	_, _ = svc.TestLogin(ctx)

	profile, err := svc.ApplyDiagnosis(ctx, &diagnosis.Result{Name: "김테스트", Conditions: []string{"고혈압"}})
	if err != nil {
		t.Fatalf("ApplyDiagnosis err: %v", err)
	}
	if profile.UserID != TestUserID {
		t.Fatalf("expected user id to be kept, got %q", profile.UserID)
	}
	if got := svc.SelectedConditions(); len(got) != 1 || got[0] != "고혈압" {
		t.Fatalf("unexpected conditions: %v", got)
	}
}

func TestParseAgeReadsLeadingDigits(t *testing.T) {
	cases := map[string]int{
		"45세":  45,
		" 61 ": 61,
		"70대":  70,
		"세":    0,
		"":     0,
		"abc":  0,
	}
	for in, want := range cases {
		if got := parseAge(in); got != want {
			t.Fatalf("parseAge(%q) = %d, want %d", in, got, want)
		}
	}
}
