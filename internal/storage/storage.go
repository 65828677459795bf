package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Persisted keys, kept identical to the browser build so exported data stays readable.
const (
	KeyLoggedIn           = "caremeal_logged_in"
	KeyDiagnosis          = "caremeal_diagnosis_data"
	KeySelectedConditions = "caremeal_selected_conditions"
	KeyBloodSugarHistory  = "caremeal_blood_sugar_history"
	KeyChatHistory        = "caremeal_chat_history"
	KeyMealPlan           = "caremeal_meal_plan_v2"
)

// Store is a flat string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// LoadJSON decodes the value under key into dst. It reports false when the
// key is missing or holds something that does not decode; the latter is
// logged and otherwise treated as absent.
func LoadJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || raw == "" {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "storage",
			"key":       key,
		}).WithError(err).Warn("ignoring corrupt stored value")
		return false, nil
	}
	return true, nil
}

// SaveJSON encodes value and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
