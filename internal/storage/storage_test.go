package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "caremeal.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(ctx, KeyLoggedIn); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := s.Set(ctx, KeyLoggedIn, "true"); err != nil {
				t.Fatalf("Set err: %v", err)
			}
			if err := s.Set(ctx, KeyLoggedIn, "false"); err != nil {
				t.Fatalf("Set overwrite err: %v", err)
			}

			value, ok, err := s.Get(ctx, KeyLoggedIn)
			if err != nil || !ok || value != "false" {
				t.Fatalf("unexpected value %q ok=%v err=%v", value, ok, err)
			}

			if err := s.Delete(ctx, KeyLoggedIn); err != nil {
				t.Fatalf("Delete err: %v", err)
			}
			if _, ok, _ := s.Get(ctx, KeyLoggedIn); ok {
				t.Fatal("expected key to be deleted")
			}
		})
	}
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Set(ctx, KeyChatHistory, "[]")
			_ = s.Set(ctx, KeyMealPlan, "{}")

			if err := s.Clear(ctx); err != nil {
				t.Fatalf("Clear err: %v", err)
			}
			for _, key := range []string{KeyChatHistory, KeyMealPlan} {
				if _, ok, _ := s.Get(ctx, key); ok {
					t.Fatalf("expected %s to be cleared", key)
				}
			}
		})
	}
}

func TestLoadJSONCorruptValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, KeySelectedConditions, "{not json")

	var conditions []string
	ok, err := LoadJSON(ctx, s, KeySelectedConditions, &conditions)
	if err != nil {
		t.Fatalf("LoadJSON err: %v", err)
	}
	if ok {
		t.Fatal("corrupt value should be treated as absent")
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := SaveJSON(ctx, s, KeySelectedConditions, []string{"당뇨병", "고혈압"}); err != nil {
		t.Fatalf("SaveJSON err: %v", err)
	}

	var conditions []string
	ok, err := LoadJSON(ctx, s, KeySelectedConditions, &conditions)
	if err != nil || !ok {
		t.Fatalf("LoadJSON ok=%v err=%v", ok, err)
	}
	if len(conditions) != 2 || conditions[0] != "당뇨병" {
		t.Fatalf("unexpected conditions: %v", conditions)
	}
}
