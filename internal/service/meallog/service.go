package meallog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/analysis/nutrition"
	"github.com/caremeal/caremeal/app/internal/api"
	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/model/meal"
	"github.com/caremeal/caremeal/app/internal/remote"
	"github.com/caremeal/caremeal/app/internal/service/events"
	"github.com/caremeal/caremeal/app/internal/storage"
)

// DateLayout is the calendar key format of every record.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrSlotOccupied    = errors.New("meal slot already recorded")
	ErrAnalyzerMissing = errors.New("food analysis is not available")
	ErrEmptyImage      = errors.New("image is empty")
)

// SlotOccupiedError carries the meal that a save from chat would replace.
type SlotOccupiedError struct {
	Date     string    `json:"date"`
	Slot     meal.Slot `json:"slot"`
	Existing meal.Item `json:"existing"`
}

func (e *SlotOccupiedError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Date, e.Slot, ErrSlotOccupied)
}

func (e *SlotOccupiedError) Is(target error) bool {
	return target == ErrSlotOccupied
}

// Analyzer reads nutrition facts from a meal photo.
type Analyzer interface {
	AnalyzeFood(ctx context.Context, userID, filename string, image io.Reader) (api.ChatResponse, error)
}

// Profile exposes who owns the log.
type Profile interface {
	UserID() string
	Diagnosis() *diagnosis.Result
}

// Dependencies wires the meal log. Remote, Analyzer and Events are optional.
type Dependencies struct {
	Store    storage.Store
	Remote   remote.MealStore
	Analyzer Analyzer
	Profile  Profile
	Events   events.Publisher
}

// Service keeps the per-day meal plans and blood sugar readings.
type Service struct {
	mu    sync.RWMutex
	meals map[string]meal.DailyPlan
	sugar map[string]meal.BloodSugarEntry

	store    storage.Store
	remote   remote.MealStore
	analyzer Analyzer
	profile  Profile
	events   events.Publisher
	now      func() time.Time
	log      *logrus.Entry
}

// NewService restores both logs from the store.
func NewService(ctx context.Context, deps Dependencies) (*Service, error) {
	if deps.Events == nil {
		deps.Events = events.Discard{}
	}
	s := &Service{
		meals:    make(map[string]meal.DailyPlan),
		sugar:    make(map[string]meal.BloodSugarEntry),
		store:    deps.Store,
		remote:   deps.Remote,
		analyzer: deps.Analyzer,
		profile:  deps.Profile,
		events:   deps.Events,
		now:      time.Now,
		log:      logrus.WithField("component", "meallog"),
	}
	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) restore(ctx context.Context) error {
	meals := make(map[string]meal.DailyPlan)
	if _, err := storage.LoadJSON(ctx, s.store, storage.KeyMealPlan, &meals); err != nil {
		return fmt.Errorf("restore meal plans: %w", err)
	}
	sugar := make(map[string]meal.BloodSugarEntry)
	if _, err := storage.LoadJSON(ctx, s.store, storage.KeyBloodSugarHistory, &sugar); err != nil {
		return fmt.Errorf("restore blood sugar: %w", err)
	}

	s.mu.Lock()
	s.meals = meals
	s.sugar = sugar
	s.mu.Unlock()
	return nil
}

// Today returns the local calendar date.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

// NormalizeDate validates date, defaulting to today when empty.
func (s *Service) NormalizeDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}

// DayView is everything the record screen shows for one date.
type DayView struct {
	Date          string                              `json:"date"`
	Meals         meal.DailyPlan                      `json:"meals"`
	BloodSugar    meal.BloodSugarEntry                `json:"bloodSugar"`
	TotalCalories float64                             `json:"totalCalories"`
	SugarStatus   map[meal.SugarSlot]meal.SugarStatus `json:"sugarStatus"`
}

// Day returns the records of date.
func (s *Service) Day(_ context.Context, date string) (DayView, error) {
	date, err := s.NormalizeDate(date)
	if err != nil {
		return DayView{}, err
	}

	s.mu.RLock()
	plan := copyPlan(s.meals[date])
	entry := copyEntry(s.sugar[date])
	s.mu.RUnlock()

	return newDayView(date, plan, entry), nil
}

func newDayView(date string, plan meal.DailyPlan, entry meal.BloodSugarEntry) DayView {
	statuses := make(map[meal.SugarSlot]meal.SugarStatus)
	for _, slot := range meal.SugarSlots() {
		if v := entry.Get(slot); v != nil && *v != 0 {
			statuses[slot] = meal.StatusOf(slot, *v)
		}
	}
	return DayView{
		Date:          date,
		Meals:         plan,
		BloodSugar:    entry,
		TotalCalories: plan.Calories(),
		SugarStatus:   statuses,
	}
}

// MealForm is the loosely typed meal editor; numbers may arrive as strings.
type MealForm struct {
	Menu     string `json:"menu"`
	Calories any    `json:"calories"`
	Carbs    any    `json:"carbs"`
	Protein  any    `json:"protein"`
	Fat      any    `json:"fat"`
	Image    string `json:"image,omitempty"`
}

// Item coerces the form; non-numeric values become 0.
func (f MealForm) Item() meal.Item {
	return meal.Item{
		Menu: f.Menu,
		Nutrition: meal.NutritionInfo{
			Calories: nutrition.Number(f.Calories),
			Carbs:    nutrition.Number(f.Carbs),
			Protein:  nutrition.Number(f.Protein),
			Fat:      nutrition.Number(f.Fat),
		},
		Image: f.Image,
	}
}

// UpdateMeal writes one slot, replacing whatever was there.
func (s *Service) UpdateMeal(ctx context.Context, date string, slot meal.Slot, item meal.Item) (DayView, error) {
	return s.writeMeal(ctx, date, slot, &item)
}

// RemoveMeal clears one slot.
func (s *Service) RemoveMeal(ctx context.Context, date string, slot meal.Slot) (DayView, error) {
	return s.writeMeal(ctx, date, slot, nil)
}

func (s *Service) writeMeal(ctx context.Context, date string, slot meal.Slot, item *meal.Item) (DayView, error) {
	date, err := s.NormalizeDate(date)
	if err != nil {
		return DayView{}, err
	}

	s.mu.Lock()
	plan := copyPlan(s.meals[date])
	plan.Set(slot, item)
	view, err := s.commitMealLocked(ctx, date, plan)
	s.mu.Unlock()
	if err != nil {
		return DayView{}, err
	}

	s.push(ctx, date, view.Meals)
	return view, nil
}

// SaveFromChat records a meal parsed from a chat reply. The server copy of
// the day is merged first so slots filled on another device are not lost.
// An occupied slot is only replaced when overwrite is set.
func (s *Service) SaveFromChat(ctx context.Context, date string, slot meal.Slot, item meal.Item, overwrite bool) (DayView, error) {
	date, err := s.NormalizeDate(date)
	if err != nil {
		return DayView{}, err
	}

	remotePlan := s.fetch(ctx, date)

	s.mu.Lock()
	plan := copyPlan(s.meals[date])
	if remotePlan != nil {
		plan.MergeMissing(*remotePlan)
	}
	if existing := plan.Get(slot); existing != nil && !overwrite {
		s.mu.Unlock()
		return DayView{}, &SlotOccupiedError{Date: date, Slot: slot, Existing: *existing}
	}
	plan.Set(slot, &item)
	view, err := s.commitMealLocked(ctx, date, plan)
	s.mu.Unlock()
	if err != nil {
		return DayView{}, err
	}

	s.push(ctx, date, view.Meals)
	return view, nil
}

// commitMealLocked persists the whole log; the previous day is restored when
// the write fails.
func (s *Service) commitMealLocked(ctx context.Context, date string, plan meal.DailyPlan) (DayView, error) {
	previous, had := s.meals[date]
	if plan.IsEmpty() {
		delete(s.meals, date)
	} else {
		s.meals[date] = plan
	}
	if err := storage.SaveJSON(ctx, s.store, storage.KeyMealPlan, s.meals); err != nil {
		if had {
			s.meals[date] = previous
		} else {
			delete(s.meals, date)
		}
		return DayView{}, fmt.Errorf("persist meal plan: %w", err)
	}

	view := newDayView(date, copyPlan(plan), copyEntry(s.sugar[date]))
	s.events.Publish(events.MealUpdated, view)
	return view, nil
}

// UpdateBloodSugar stores one reading; nil clears it.
func (s *Service) UpdateBloodSugar(ctx context.Context, date string, slot meal.SugarSlot, value *float64) (DayView, error) {
	date, err := s.NormalizeDate(date)
	if err != nil {
		return DayView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry := copyEntry(s.sugar[date])
	entry.Set(slot, value)
	return s.commitSugarLocked(ctx, date, entry)
}

// ReplaceBloodSugar overwrites every reading of date.
func (s *Service) ReplaceBloodSugar(ctx context.Context, date string, entry meal.BloodSugarEntry) (DayView, error) {
	date, err := s.NormalizeDate(date)
	if err != nil {
		return DayView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitSugarLocked(ctx, date, copyEntry(entry))
}

func (s *Service) commitSugarLocked(ctx context.Context, date string, entry meal.BloodSugarEntry) (DayView, error) {
	previous, had := s.sugar[date]
	s.sugar[date] = entry
	if err := storage.SaveJSON(ctx, s.store, storage.KeyBloodSugarHistory, s.sugar); err != nil {
		if had {
			s.sugar[date] = previous
		} else {
			delete(s.sugar, date)
		}
		return DayView{}, fmt.Errorf("persist blood sugar: %w", err)
	}

	view := newDayView(date, copyPlan(s.meals[date]), copyEntry(entry))
	s.events.Publish(events.BloodSugarUpdated, view)
	return view, nil
}

// Analysis is the meal editor prefill produced from a photo.
type Analysis struct {
	Item   meal.Item `json:"item"`
	Parsed bool      `json:"parsed"`
	Reply  string    `json:"reply"`
}

// AnalyzeImage sends a photo to the analyzer. Replies without the
// structured block only prefill the menu with a summary.
func (s *Service) AnalyzeImage(ctx context.Context, filename string, data []byte) (Analysis, error) {
	if s.analyzer == nil {
		return Analysis{}, ErrAnalyzerMissing
	}
	if len(data) == 0 {
		return Analysis{}, ErrEmptyImage
	}

	resp, err := s.analyzer.AnalyzeFood(ctx, s.userID(), filename, bytes.NewReader(data))
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze food: %w", err)
	}

	if item, ok := nutrition.ParseBlock(resp.Reply); ok {
		return Analysis{Item: item, Parsed: true, Reply: resp.Reply}, nil
	}
	return Analysis{
		Item:  meal.Item{Menu: nutrition.Summary(resp.Reply)},
		Reply: resp.Reply,
	}, nil
}

// Reset forgets both logs after logout.
func (s *Service) Reset(context.Context) {
	s.mu.Lock()
	s.meals = make(map[string]meal.DailyPlan)
	s.sugar = make(map[string]meal.BloodSugarEntry)
	s.mu.Unlock()
}

func (s *Service) fetch(ctx context.Context, date string) *meal.DailyPlan {
	if s.remote == nil {
		return nil
	}
	plan, err := s.remote.FetchMealPlan(ctx, s.userID(), date)
	if err != nil {
		s.log.WithError(err).WithField("date", date).Warn("remote meal fetch failed, using local plan")
		return nil
	}
	return plan
}

func (s *Service) push(ctx context.Context, date string, plan meal.DailyPlan) {
	if s.remote == nil {
		return
	}
	if err := s.remote.PushMealPlan(ctx, s.userID(), date, plan); err != nil {
		s.log.WithError(err).WithField("date", date).Warn("remote meal push failed")
	}
}

func (s *Service) userID() string {
	if s.profile == nil {
		return ""
	}
	return s.profile.UserID()
}

func copyPlan(p meal.DailyPlan) meal.DailyPlan {
	var out meal.DailyPlan
	out.MergeMissing(p)
	return out
}

func copyEntry(e meal.BloodSugarEntry) meal.BloodSugarEntry {
	var out meal.BloodSugarEntry
	for _, slot := range meal.SugarSlots() {
		out.Set(slot, e.Get(slot))
	}
	return out
}
