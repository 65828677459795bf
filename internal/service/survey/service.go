package survey

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/service/session"
)

var (
	ErrWizardNotFound   = errors.New("survey not found")
	ErrWizardCompleted  = errors.New("survey already completed")
	ErrWizardBusy       = errors.New("survey is being submitted")
	ErrUnknownCondition = errors.New("unknown condition")
)

// Profiles is the part of the session service that receives finished surveys.
type Profiles interface {
	CompleteSignup(ctx context.Context, creds session.Credentials, result *diagnosis.Result) (*diagnosis.Result, error)
	ApplyDiagnosis(ctx context.Context, result *diagnosis.Result) (*diagnosis.Result, error)
	State() session.State
}

// Service keeps in-progress questionnaires in memory.
type Service struct {
	mu       sync.RWMutex
	wizards  map[string]*Wizard
	profiles Profiles
	now      func() time.Time
	log      *logrus.Entry
}

// NewService creates an empty survey registry.
func NewService(profiles Profiles) *Service {
	return &Service{
		wizards:  make(map[string]*Wizard),
		profiles: profiles,
		now:      time.Now,
		log:      logrus.WithField("component", "survey"),
	}
}

// Start opens a new wizard. Credentials are validated up front so the
// signup form can report mistakes before the questionnaire begins.
func (s *Service) Start(_ context.Context, name string, creds *session.Credentials) (Wizard, error) {
	if creds != nil {
		if err := session.ValidateSignup(*creds); err != nil {
			return Wizard{}, err
		}
		c := *creds
		creds = &c
	}

	w := newWizard(uuid.NewString(), creds, s.now())
	if creds == nil {
		w.Form.Name = name
	}
	w.refreshDerived()

	s.mu.Lock()
	s.wizards[w.ID] = w
	s.mu.Unlock()

	return w.snapshot(), nil
}

// Get returns the wizard by id.
func (s *Service) Get(_ context.Context, id string) (Wizard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wizards[id]
	if !ok {
		return Wizard{}, ErrWizardNotFound
	}
	return w.snapshot(), nil
}

// UpdateForm replaces the questionnaire answers.
func (s *Service) UpdateForm(_ context.Context, id string, form diagnosis.Form) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		if form.Interests == nil {
			form.Interests = []string{}
		}
		w.Form = form
		w.refreshDerived()
		return nil
	})
}

// ToggleCondition selects or deselects a condition.
func (s *Service) ToggleCondition(_ context.Context, id, condition string) (Wizard, error) {
	if !knownCondition(condition) {
		return Wizard{}, ErrUnknownCondition
	}
	return s.mutate(id, func(w *Wizard) error {
		w.toggle(condition)
		return nil
	})
}

// Next advances one page. On the last page it produces the result and, for
// signup wizards, registers the account.
func (s *Service) Next(ctx context.Context, id string) (Wizard, error) {
	s.mu.Lock()
	w, ok := s.wizards[id]
	if !ok {
		s.mu.Unlock()
		return Wizard{}, ErrWizardNotFound
	}
	if w.Completed {
		s.mu.Unlock()
		return Wizard{}, ErrWizardCompleted
	}
	if w.finishing {
		s.mu.Unlock()
		return Wizard{}, ErrWizardBusy
	}

	done, err := w.advance()
	w.UpdatedAt = s.now()
	if err != nil || !done {
		snap := w.snapshot()
		s.mu.Unlock()
		return snap, err
	}

	result := w.buildResult()
	creds := w.credentials
	w.finishing = true
	s.mu.Unlock()

	// 注册请求可能较慢，不持有锁。
	final, err := s.finish(ctx, creds, result)
	if err != nil {
		s.log.WithError(err).WithField("survey", id).Warn("survey completion failed")
		snap, _ := s.mutate(id, func(w *Wizard) error {
			w.finishing = false
			return nil
		})
		return snap, err
	}

	return s.mutate(id, func(w *Wizard) error {
		w.finishing = false
		w.Completed = true
		w.Result = final
		return nil
	})
}

func (s *Service) finish(ctx context.Context, creds *session.Credentials, result *diagnosis.Result) (*diagnosis.Result, error) {
	switch {
	case s.profiles == nil:
		return result, nil
	case creds != nil:
		return s.profiles.CompleteSignup(ctx, *creds, result)
	case s.profiles.State().LoggedIn:
		return s.profiles.ApplyDiagnosis(ctx, result)
	default:
		return result, nil
	}
}

// Back moves one page back.
func (s *Service) Back(_ context.Context, id string) (Wizard, error) {
	return s.mutate(id, func(w *Wizard) error {
		if w.Completed {
			return ErrWizardCompleted
		}
		if w.finishing {
			return ErrWizardBusy
		}
		w.retreat()
		return nil
	})
}

// Discard drops a wizard.
func (s *Service) Discard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wizards[id]; !ok {
		return ErrWizardNotFound
	}
	delete(s.wizards, id)
	return nil
}

// Reset forgets every wizard.
func (s *Service) Reset(context.Context) {
	s.mu.Lock()
	s.wizards = make(map[string]*Wizard)
	s.mu.Unlock()
}

func (s *Service) mutate(id string, fn func(w *Wizard) error) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wizards[id]
	if !ok {
		return Wizard{}, ErrWizardNotFound
	}
	if err := fn(w); err != nil {
		return Wizard{}, err
	}
	w.UpdatedAt = s.now()
	return w.snapshot(), nil
}

func knownCondition(condition string) bool {
	for _, c := range diagnosis.ConditionOptions() {
		if c == condition {
			return true
		}
	}
	return false
}
