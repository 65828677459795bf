package meallog

import (
	"context"
	"testing"
	"time"

	"github.com/caremeal/caremeal/app/internal/model/meal"
)

func TestWeekCentredOnDate(t *testing.T) {
	svc := newService(t, Dependencies{})
	_, _ = svc.UpdateMeal(context.Background(), "2025-03-11", meal.Lunch, meal.Item{Menu: "a"})

	days, err := svc.Week("2025-03-12")
	if err != nil {
		t.Fatalf("Week err: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Date != "2025-03-09" || days[6].Date != "2025-03-15" {
		t.Fatalf("unexpected range %s..%s", days[0].Date, days[6].Date)
	}
	// 2025-03-09 is a Sunday.
	if days[0].Label != "일" || days[3].Label != "수" {
		t.Fatalf("unexpected labels %s/%s", days[0].Label, days[3].Label)
	}
	if !days[3].IsToday {
		t.Fatalf("expected the centre day to be today")
	}
	if !days[2].Logged || days[4].Logged {
		t.Fatalf("unexpected logged flags %+v", days)
	}
}

func TestMonthGridPadding(t *testing.T) {
	svc := newService(t, Dependencies{})

	// March 2025 starts on a Saturday.
	days := svc.Month(2025, time.March)
	if len(days) != 6+31 {
		t.Fatalf("expected 37 cells, got %d", len(days))
	}
	for i := 0; i < 6; i++ {
		if days[i] != nil {
			t.Fatalf("expected blank cell at %d", i)
		}
	}
	if days[6].Day != 1 || days[6].Date != "2025-03-01" {
		t.Fatalf("unexpected first day %+v", days[6])
	}
	if !days[6+11].IsToday {
		t.Fatalf("expected 2025-03-12 to be today")
	}
}
