package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/service/events"
	"github.com/caremeal/caremeal/app/internal/storage"
)

// GuestUserID is used for backend calls before anyone has logged in.
const GuestUserID = "guest"

var (
	ErrLoginFailed       = errors.New("로그인에 실패했습니다. 아이디와 비밀번호를 확인해주세요.")
	ErrSignupFailed      = errors.New("회원가입 중 오류가 발생했습니다.")
	ErrSignupIncomplete  = errors.New("모든 항목을 입력해주세요.")
	ErrPasswordMismatch  = errors.New("비밀번호가 일치하지 않습니다")
	ErrDiagnosisRequired = errors.New("diagnosis result is required")
)

// LoginRejectedError is returned when the backend answers a login with a
// status other than "success".
type LoginRejectedError struct {
	Message string
}

func (e *LoginRejectedError) Error() string {
	if e.Message == "" {
		return ErrLoginFailed.Error()
	}
	return e.Message
}

// Backend is the part of the API client the session needs.
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error)
	SignUp(ctx context.Context, req api.SignUpRequest) (api.StatusResponse, error)
}

// Credentials are collected by the sign-up form.
type Credentials struct {
	Name            string `json:"name"`
	UserID          string `json:"userId"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// State is what the shell needs to decide which screen to show.
type State struct {
	LoggedIn           bool              `json:"loggedIn"`
	Diagnosis          *diagnosis.Result `json:"diagnosis"`
	SelectedConditions []string          `json:"selectedConditions"`
	UserID             string            `json:"userId"`
}

// Service owns the login flag and the patient profile.
type Service struct {
	mu         sync.RWMutex
	store      storage.Store
	backend    Backend
	events     events.Publisher
	loggedIn   bool
	profile    *diagnosis.Result
	conditions []string
	onLogout   []func(context.Context)
	log        *logrus.Entry
}

// NewService restores the session from the store.
func NewService(ctx context.Context, store storage.Store, backend Backend, publisher events.Publisher) (*Service, error) {
	if publisher == nil {
		publisher = events.Discard{}
	}
	s := &Service{
		store:      store,
		backend:    backend,
		events:     publisher,
		conditions: []string{},
		log:        logrus.WithField("component", "session"),
	}

	flag, _, err := store.Get(ctx, storage.KeyLoggedIn)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	s.loggedIn = flag == "true"

	var profile diagnosis.Result
	if ok, err := storage.LoadJSON(ctx, store, storage.KeyDiagnosis, &profile); err != nil {
		return nil, fmt.Errorf("restore diagnosis: %w", err)
	} else if ok {
		s.profile = &profile
	}

	var conditions []string
	if ok, err := storage.LoadJSON(ctx, store, storage.KeySelectedConditions, &conditions); err != nil {
		return nil, fmt.Errorf("restore conditions: %w", err)
	} else if ok && conditions != nil {
		s.conditions = conditions
	}

	return s, nil
}

// OnLogout registers a hook that resets another screen's state.
func (s *Service) OnLogout(fn func(context.Context)) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

// State returns a snapshot of the session.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		LoggedIn:           s.loggedIn,
		Diagnosis:          cloneResult(s.profile),
		SelectedConditions: append([]string{}, s.conditions...),
		UserID:             s.userIDLocked(),
	}
}

// Diagnosis returns a copy of the current profile, or nil.
func (s *Service) Diagnosis() *diagnosis.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResult(s.profile)
}

// SelectedConditions returns the conditions chosen in the survey.
func (s *Service) SelectedConditions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.conditions...)
}

// UserID is the id sent to the backend, "guest" until a profile carries one.
func (s *Service) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userIDLocked()
}

func (s *Service) userIDLocked() string {
	if s.profile != nil && s.profile.UserID != "" {
		return s.profile.UserID
	}
	return GuestUserID
}

// Login checks the credentials with the backend and adopts the stored profile.
func (s *Service) Login(ctx context.Context, userID, password string) (*diagnosis.Result, error) {
	resp, err := s.backend.Login(ctx, api.LoginRequest{UserID: userID, Password: password})
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("login request failed")
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	if resp.Status != "success" || len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, &LoginRejectedError{Message: resp.Message}
	}

	profile, err := profileFromLogin(resp.Data, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	if err := s.adopt(ctx, profile); err != nil {
		return nil, err
	}
	return cloneResult(profile), nil
}

// ValidateSignup checks the sign-up form before the survey starts.
func ValidateSignup(c Credentials) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.UserID) == "" || c.Password == "" {
		return ErrSignupIncomplete
	}
	if c.Password != c.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// CompleteSignup registers the account with the finished survey and logs in.
func (s *Service) CompleteSignup(ctx context.Context, creds Credentials, result *diagnosis.Result) (*diagnosis.Result, error) {
	if result == nil {
		return nil, ErrDiagnosisRequired
	}
	if err := ValidateSignup(creds); err != nil {
		return nil, err
	}

	profile := cloneResult(result)
	profile.UserID = creds.UserID

	diabetesType := "일반"
	if len(profile.Conditions) > 0 {
		diabetesType = strings.Join(profile.Conditions, ", ")
	}

	req := api.SignUpRequest{
		UserID:       creds.UserID,
		Password:     creds.Password,
		Name:         creds.Name,
		Age:          parseAge(profile.Age),
		DiabetesType: diabetesType,
		Details:      profile,
	}
	if _, err := s.backend.SignUp(ctx, req); err != nil {
		s.log.WithError(err).WithField("user_id", creds.UserID).Warn("signup failed")
		return nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}

	if err := s.adopt(ctx, profile); err != nil {
		return nil, err
	}
	return cloneResult(profile), nil
}

// ApplyDiagnosis replaces the profile after a retaken survey, keeping the
// current account id.
func (s *Service) ApplyDiagnosis(ctx context.Context, result *diagnosis.Result) (*diagnosis.Result, error) {
	if result == nil {
		return nil, ErrDiagnosisRequired
	}

	profile := cloneResult(result)
	if current := s.Diagnosis(); current != nil && current.UserID != "" {
		profile.UserID = current.UserID
	}

	if err := s.adopt(ctx, profile); err != nil {
		return nil, err
	}
	return cloneResult(profile), nil
}

// TestLogin signs in with the built-in diabetic demo profile.
func (s *Service) TestLogin(ctx context.Context) (*diagnosis.Result, error) {
	profile := TestProfile()
	if err := s.adopt(ctx, profile); err != nil {
		return nil, err
	}
	return cloneResult(profile), nil
}

// Logout forgets the session and wipes every persisted key.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.loggedIn = false
	s.profile = nil
	s.conditions = []string{}
	hooks := append([]func(context.Context){}, s.onLogout...)
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	for _, hook := range hooks {
		hook(ctx)
	}

	s.events.Publish(events.SessionChanged, s.State())
	s.log.Info("logged out")
	return nil
}

// adopt makes profile the logged-in patient and persists the three session keys.
func (s *Service) adopt(ctx context.Context, profile *diagnosis.Result) error {
	conditions := append([]string{}, profile.Conditions...)

	if err := s.store.Set(ctx, storage.KeyLoggedIn, "true"); err != nil {
		return fmt.Errorf("persist login flag: %w", err)
	}
	if err := storage.SaveJSON(ctx, s.store, storage.KeyDiagnosis, profile); err != nil {
		return fmt.Errorf("persist diagnosis: %w", err)
	}
	if err := storage.SaveJSON(ctx, s.store, storage.KeySelectedConditions, conditions); err != nil {
		return fmt.Errorf("persist conditions: %w", err)
	}

	s.mu.Lock()
	s.loggedIn = true
	s.profile = cloneResult(profile)
	s.conditions = conditions
	s.mu.Unlock()

	s.events.Publish(events.SessionChanged, s.State())
	s.log.WithField("user_id", profile.UserID).Info("logged in")
	return nil
}

// profileFromLogin maps the stored server profile, filling the gaps the
// backend leaves empty.
func profileFromLogin(data json.RawMessage, userID string) (*diagnosis.Result, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode login data: %w", err)
	}

	profile := &diagnosis.Result{
		Name:          stringOr(raw["name"], ""),
		Gender:        stringOr(raw["gender"], "미정"),
		Age:           stringOr(raw["age"], ""),
		Height:        stringOr(raw["height"], "0"),
		Weight:        stringOr(raw["weight"], "0"),
		Conditions:    stringsOr(raw["conditions"], []string{"일반"}),
		Interests:     []string{},
		WeightStatus:  stringOr(raw["weightStatus"], "보통"),
		HabitScore:    50,
		Prescriptions: []string{},
		UserID:        userID,
	}
	if bmi, ok := raw["bmi"].(float64); ok {
		profile.BMI = bmi
	}
	if score, ok := raw["habitScore"].(float64); ok && score != 0 {
		profile.HabitScore = int(score)
	}
	return profile, nil
}

// stringOr renders scalars the way the form stores them; empty, zero and
// missing values fall back to def.
func stringOr(v any, def string) string {
	switch val := v.(type) {
	case string:
		if val != "" {
			return val
		}
	case float64:
		if val != 0 {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
	case bool:
		return strconv.FormatBool(val)
	}
	return def
}

func stringsOr(v any, def []string) []string {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return def
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// parseAge reads the leading digits, so "45세" is 45.
func parseAge(age string) int {
	age = strings.TrimSpace(age)
	end := strings.IndexFunc(age, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(age)
	}
	n, err := strconv.Atoi(age[:end])
	if err != nil {
		return 0
	}
	return n
}

func cloneResult(r *diagnosis.Result) *diagnosis.Result {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		cp := *r
		return &cp
	}
	var out diagnosis.Result
	if err := json.Unmarshal(data, &out); err != nil {
		cp := *r
		return &cp
	}
	return &out
}
