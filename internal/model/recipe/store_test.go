package recipe

import "testing"

func TestSeedCoversEveryConditionAndPreference(t *testing.T) {
	store := NewSeededStore()
	conditions := []string{"당뇨병", "고혈압", "고지혈증", "비만", "신부전", GeneralCondition}

	for _, condition := range conditions {
		for _, pref := range Preferences() {
			got := store.Filter(condition, pref.Name)
			if len(got) != 1 {
				t.Fatalf("expected one recipe for %s/%s, got %d", condition, pref.Name, len(got))
			}
		}
	}
}

func TestFilterUnknownCondition(t *testing.T) {
	store := NewSeededStore()
	if got := store.Filter("감기", DefaultPreference); len(got) != 0 {
		t.Fatalf("expected no recipes, got %d", len(got))
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := NewSeededStore()
	items := store.List()
	items[0].Title = "changed"

	if store.List()[0].Title == "changed" {
		t.Fatal("List should not expose internal slice")
	}
}
