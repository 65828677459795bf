package meal

import "fmt"

// SugarSlot names one of the four daily blood sugar readings.
type SugarSlot string

const (
	Fasting       SugarSlot = "fasting"
	PostBreakfast SugarSlot = "postBreakfast"
	PostLunch     SugarSlot = "postLunch"
	PostDinner    SugarSlot = "postDinner"
)

// SugarSlots lists the readings in the order they are taken during a day.
func SugarSlots() []SugarSlot {
	return []SugarSlot{Fasting, PostBreakfast, PostLunch, PostDinner}
}

// ParseSugarSlot validates a reading slot name.
func ParseSugarSlot(raw string) (SugarSlot, error) {
	switch SugarSlot(raw) {
	case Fasting, PostBreakfast, PostLunch, PostDinner:
		return SugarSlot(raw), nil
	}
	return "", fmt.Errorf("unknown blood sugar slot %q", raw)
}

// BloodSugarEntry holds the readings (mg/dL) of one day; nil means not measured.
type BloodSugarEntry struct {
	Fasting       *float64 `json:"fasting,omitempty"`
	PostBreakfast *float64 `json:"postBreakfast,omitempty"`
	PostLunch     *float64 `json:"postLunch,omitempty"`
	PostDinner    *float64 `json:"postDinner,omitempty"`
}

// Get returns the reading of slot.
func (e BloodSugarEntry) Get(slot SugarSlot) *float64 {
	switch slot {
	case Fasting:
		return e.Fasting
	case PostBreakfast:
		return e.PostBreakfast
	case PostLunch:
		return e.PostLunch
	case PostDinner:
		return e.PostDinner
	}
	return nil
}

// Set stores a reading; nil clears it.
func (e *BloodSugarEntry) Set(slot SugarSlot, value *float64) {
	if value != nil {
		v := *value
		value = &v
	}
	switch slot {
	case Fasting:
		e.Fasting = value
	case PostBreakfast:
		e.PostBreakfast = value
	case PostLunch:
		e.PostLunch = value
	case PostDinner:
		e.PostDinner = value
	}
}

// Average returns the mean of the present readings, or 0 when none.
func (e BloodSugarEntry) Average() float64 {
	var sum float64
	var n int
	for _, slot := range SugarSlots() {
		if v := e.Get(slot); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Latest returns the first non-zero reading in slot order.
func (e BloodSugarEntry) Latest() (SugarSlot, float64, bool) {
	for _, slot := range SugarSlots() {
		if v := e.Get(slot); v != nil && *v != 0 {
			return slot, *v, true
		}
	}
	return "", 0, false
}

// SugarStatus grades a reading.
type SugarStatus string

const (
	SugarNormal  SugarStatus = "normal"
	SugarCaution SugarStatus = "caution"
	SugarHigh    SugarStatus = "high"
)

// StatusOf grades value against the fasting or post-meal thresholds.
func StatusOf(slot SugarSlot, value float64) SugarStatus {
	normal, caution := 140.0, 200.0
	if slot == Fasting {
		normal, caution = 100, 126
	}
	switch {
	case value < normal:
		return SugarNormal
	case value < caution:
		return SugarCaution
	default:
		return SugarHigh
	}
}
