package recommend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/model/recipe"
)

var ErrUnknownPreference = errors.New("unknown diet preference")

const defaultGuideTab = "당뇨"

// Profile exposes the survey outcome the screens personalise on.
type Profile interface {
	SelectedConditions() []string
	Diagnosis() *diagnosis.Result
}

// Service builds the recommendation screens from the static tables.
type Service struct {
	store   recipe.Store
	profile Profile
}

// NewService wires the tables to the current patient.
func NewService(store recipe.Store, profile Profile) *Service {
	return &Service{store: store, profile: profile}
}

// CustomDiet is the recipe carousel filtered by condition and preference.
type CustomDiet struct {
	Title            string              `json:"title"`
	PrimaryCondition string              `json:"primaryCondition"`
	Preference       string              `json:"preference"`
	Preferences      []recipe.Preference `json:"preferences"`
	Recipes          []recipe.Recipe     `json:"recipes"`
}

// Recipes returns the dishes for the first selected condition. An empty
// preference selects the default chip.
func (s *Service) Recipes(preference string) (CustomDiet, error) {
	if preference == "" {
		preference = recipe.DefaultPreference
	}
	if !knownPreference(preference) {
		return CustomDiet{}, ErrUnknownPreference
	}

	primary := recipe.GeneralCondition
	if conditions := s.conditions(); len(conditions) > 0 {
		primary = conditions[0]
	}

	return CustomDiet{
		Title:            fmt.Sprintf("%s 맞춤 식단", strings.Replace(primary, "병", "", 1)),
		PrimaryCondition: primary,
		Preference:       preference,
		Preferences:      recipe.Preferences(),
		Recipes:          s.store.Filter(primary, preference),
	}, nil
}

// GuideTab is one disease tab; Mine marks the patient's own conditions.
type GuideTab struct {
	Name string `json:"name"`
	Mine bool   `json:"mine"`
}

// GuideView is the disease diet screen.
type GuideView struct {
	ActiveTab string       `json:"activeTab"`
	Tabs      []GuideTab   `json:"tabs"`
	Guide     recipe.Guide `json:"guide"`
	Mine      bool         `json:"mine"`
	Advice    string       `json:"advice"`
}

// Guides returns the guide for tab, or for the first selected condition when
// tab is empty. Unknown tabs show the first guide.
func (s *Service) Guides(tab string) GuideView {
	conditions := s.conditions()
	guides := s.store.Guides()

	if tab == "" {
		tab = defaultGuideTab
		if len(conditions) > 0 {
			tab = conditions[0]
		}
	}

	view := GuideView{ActiveTab: tab, Tabs: make([]GuideTab, 0, len(guides))}
	for _, g := range guides {
		view.Tabs = append(view.Tabs, GuideTab{Name: g.Name, Mine: containsCondition(conditions, g.Name)})
	}

	if len(guides) > 0 {
		view.Guide = guides[0]
		for _, g := range guides {
			if g.Name == tab || g.Name == guideName(tab) {
				view.Guide = g
				break
			}
		}
	}
	view.Mine = containsCondition(conditions, view.Guide.Name)
	view.Advice = fmt.Sprintf("%s 관리의 핵심은 균형 잡힌 영양 섭취입니다. 진단 결과를 바탕으로 제안된 권장/주의 식품을 확인하시고, 김닥터와 상담을 통해 상세 레시피를 만들어보세요.", tab)
	return view
}

// HealthyView is the general wellness list.
type HealthyView struct {
	Meals        []recipe.HealthyMeal `json:"meals"`
	Personalised bool                 `json:"personalised"`
	Note         string               `json:"note"`
}

// Healthy returns the wellness list with a note about the patient's BMI.
func (s *Service) Healthy() HealthyView {
	view := HealthyView{
		Meals: s.store.HealthyMeals(),
		Note:  "'영양진단'을 완료하시면 환자분의 체형과 식습관에 딱 맞는 식단을 추천해드릴 수 있습니다.",
	}
	if s.profile == nil {
		return view
	}
	if d := s.profile.Diagnosis(); d != nil {
		view.Personalised = true
		view.Note = fmt.Sprintf("BMI %s와 %s 상태를 고려하여, 포만감이 높으면서도 칼로리 부담이 적은 식단을 우선 배치했습니다.",
			strconv.FormatFloat(d.BMI, 'f', -1, 64), d.WeightStatus)
	}
	return view
}

func (s *Service) conditions() []string {
	if s.profile == nil {
		return nil
	}
	return s.profile.SelectedConditions()
}

// guideName maps a survey condition ("당뇨병") to its guide tab ("당뇨").
func guideName(condition string) string {
	return strings.TrimSuffix(condition, "병")
}

func containsCondition(conditions []string, guide string) bool {
	for _, c := range conditions {
		if c == guide || guideName(c) == guide {
			return true
		}
	}
	return false
}

func knownPreference(name string) bool {
	for _, p := range recipe.Preferences() {
		if p.Name == name {
			return true
		}
	}
	return false
}
