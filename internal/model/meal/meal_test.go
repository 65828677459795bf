package meal

import "testing"

func ptr(v float64) *float64 { return &v }

func TestMergeMissingKeepsLocalSlots(t *testing.T) {
	local := DailyPlan{Lunch: &Item{Menu: "비빔밥"}}
	remote := DailyPlan{
		Breakfast: &Item{Menu: "오트밀"},
		Lunch:     &Item{Menu: "김밥"},
	}

	local.MergeMissing(remote)

	if local.Breakfast == nil || local.Breakfast.Menu != "오트밀" {
		t.Fatalf("expected breakfast from remote, got %+v", local.Breakfast)
	}
	if local.Lunch.Menu != "비빔밥" {
		t.Fatalf("local lunch should win, got %s", local.Lunch.Menu)
	}
	if local.Dinner != nil {
		t.Fatal("dinner should stay empty")
	}
}

func TestParseSlot(t *testing.T) {
	if _, err := ParseSlot("lunch"); err != nil {
		t.Fatalf("ParseSlot err: %v", err)
	}
	if _, err := ParseSlot("brunch"); err == nil {
		t.Fatal("expected error for unknown slot")
	}
	if _, err := ParseSugarSlot("postDinner"); err != nil {
		t.Fatalf("ParseSugarSlot err: %v", err)
	}
}

func TestBloodSugarAverageAndLatest(t *testing.T) {
	var entry BloodSugarEntry
	if entry.Average() != 0 {
		t.Fatal("empty entry should average 0")
	}
	if _, _, ok := entry.Latest(); ok {
		t.Fatal("empty entry has no latest reading")
	}

	entry.Set(PostLunch, ptr(150))
	entry.Set(Fasting, ptr(90))

	if got := entry.Average(); got != 120 {
		t.Fatalf("expected 120, got %v", got)
	}
	slot, v, ok := entry.Latest()
	if !ok || slot != Fasting || v != 90 {
		t.Fatalf("unexpected latest: %s %v %v", slot, v, ok)
	}

	entry.Set(Fasting, nil)
	if entry.Fasting != nil {
		t.Fatal("nil should clear the reading")
	}
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		slot  SugarSlot
		value float64
		want  SugarStatus
	}{
		{Fasting, 99, SugarNormal},
		{Fasting, 100, SugarCaution},
		{Fasting, 126, SugarHigh},
		{PostLunch, 139, SugarNormal},
		{PostLunch, 140, SugarCaution},
		{PostDinner, 200, SugarHigh},
	}

	for _, tc := range cases {
		if got := StatusOf(tc.slot, tc.value); got != tc.want {
			t.Fatalf("StatusOf(%s, %v) = %s, want %s", tc.slot, tc.value, got, tc.want)
		}
	}
}
