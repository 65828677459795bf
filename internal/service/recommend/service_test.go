package recommend

import (
	"errors"
	"strings"
	"testing"

	"github.com/caremeal/caremeal/app/internal/model/diagnosis"
	"github.com/caremeal/caremeal/app/internal/model/recipe"
)

type fakeProfile struct {
	conditions []string
	result     *diagnosis.Result
}

func (f fakeProfile) SelectedConditions() []string { return f.conditions }
func (f fakeProfile) Diagnosis() *diagnosis.Result { return f.result }

func TestRecipesDefaultToGeneralHealth(t *testing.T) {
	svc := NewService(recipe.NewSeededStore(), fakeProfile{})

	view, err := svc.Recipes("")
	if err != nil {
		t.Fatalf("Recipes err: %v", err)
	}
	if view.PrimaryCondition != "일반건강" || view.Preference != "고단백" {
		t.Fatalf("unexpected defaults %+v", view)
	}
	if len(view.Recipes) != 1 || view.Recipes[0].ID != 55 {
		t.Fatalf("unexpected recipes %+v", view.Recipes)
	}
	if len(view.Preferences) != 5 {
		t.Fatalf("expected 5 preferences, got %d", len(view.Preferences))
	}
}

func TestRecipesUseFirstCondition(t *testing.T) {
	svc := NewService(recipe.NewSeededStore(), fakeProfile{conditions: []string{"당뇨병", "고혈압"}})

	view, err := svc.Recipes("해산물")
	if err != nil {
		t.Fatalf("Recipes err: %v", err)
	}
	if view.Title != "당뇨 맞춤 식단" {
		t.Fatalf("unexpected title %q", view.Title)
	}
	for _, r := range view.Recipes {
		if r.Condition != "당뇨병" || r.DietType != "해산물" {
			t.Fatalf("unexpected recipe %+v", r)
		}
	}
	if len(view.Recipes) == 0 {
		t.Fatalf("expected at least one recipe")
	}
}

func TestRecipesRejectUnknownPreference(t *testing.T) {
	svc := NewService(recipe.NewSeededStore(), nil)
	if _, err := svc.Recipes("디저트"); !errors.Is(err, ErrUnknownPreference) {
		t.Fatalf("expected ErrUnknownPreference, got %v", err)
	}
}

func TestGuidesFollowCondition(t *testing.T) {
	svc := NewService(recipe.NewSeededStore(), fakeProfile{conditions: []string{"고혈압"}})

	view := svc.Guides("")
	if view.ActiveTab != "고혈압" || view.Guide.Name != "고혈압" || !view.Mine {
		t.Fatalf("unexpected view %+v", view)
	}

	view = svc.Guides("비만")
	if view.Guide.Name != "비만" || view.Mine {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestGuidesMatchDiseaseSuffix(t *testing.T) {
	svc := NewService(recipe.NewSeededStore(), fakeProfile{conditions: []string{"당뇨병"}})

	view := svc.Guides("")
	if view.Guide.Name != "당뇨" || !view.Mine {
		t.Fatalf("expected diabetes guide, got %+v", view)
	}
	if !view.Tabs[0].Mine || view.Tabs[1].Mine {
		t.Fatalf("unexpected tab flags %+v", view.Tabs)
	}
}

func TestGuidesFallBackToFirst(t *testing.T) {
	svc := NewService(recipe.NewSeededStore(), fakeProfile{conditions: []string{"일반건강"}})

	view := svc.Guides("")
	if view.ActiveTab != "일반건강" || view.Guide.Name != "당뇨" {
		t.Fatalf("unexpected fallback %+v", view)
	}
}

func TestHealthyNote(t *testing.T) {
	svc := NewService(recipe.NewSeededStore(), fakeProfile{})
	view := svc.Healthy()
	if view.Personalised || len(view.Meals) != 4 {
		t.Fatalf("unexpected generic view %+v", view)
	}

	svc = NewService(recipe.NewSeededStore(), fakeProfile{result: &diagnosis.Result{BMI: 27.7, WeightStatus: "비만"}})
	view = svc.Healthy()
	if !view.Personalised || !strings.Contains(view.Note, "BMI 27.7와 비만") {
		t.Fatalf("unexpected note %q", view.Note)
	}
}
