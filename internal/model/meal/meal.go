package meal

import "fmt"

// Slot names one of the three daily meals.
type Slot string

const (
	Breakfast Slot = "breakfast"
	Lunch     Slot = "lunch"
	Dinner    Slot = "dinner"
)

// ParseSlot validates a meal slot name.
func ParseSlot(raw string) (Slot, error) {
	switch Slot(raw) {
	case Breakfast, Lunch, Dinner:
		return Slot(raw), nil
	}
	return "", fmt.Errorf("unknown meal slot %q", raw)
}

// NutritionInfo is the macro breakdown of a meal; carbs, protein and fat are grams.
type NutritionInfo struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// Item is a recorded meal.
type Item struct {
	Menu      string        `json:"menu" dynamodbav:"menu"`
	Nutrition NutritionInfo `json:"nutrition" dynamodbav:"nutrition"`
	Image     string        `json:"image,omitempty" dynamodbav:"image,omitempty"`
}

// DailyPlan holds the meals of one calendar day.
type DailyPlan struct {
	Breakfast *Item `json:"breakfast,omitempty" dynamodbav:"breakfast,omitempty"`
	Lunch     *Item `json:"lunch,omitempty" dynamodbav:"lunch,omitempty"`
	Dinner    *Item `json:"dinner,omitempty" dynamodbav:"dinner,omitempty"`
}

// Get returns the meal stored in slot, or nil.
func (p DailyPlan) Get(slot Slot) *Item {
	switch slot {
	case Breakfast:
		return p.Breakfast
	case Lunch:
		return p.Lunch
	case Dinner:
		return p.Dinner
	}
	return nil
}

// Set replaces the meal stored in slot.
func (p *DailyPlan) Set(slot Slot, item *Item) {
	switch slot {
	case Breakfast:
		p.Breakfast = item
	case Lunch:
		p.Lunch = item
	case Dinner:
		p.Dinner = item
	}
}

// IsEmpty reports whether no meal has been recorded.
func (p DailyPlan) IsEmpty() bool {
	return p.Breakfast == nil && p.Lunch == nil && p.Dinner == nil
}

// MergeMissing fills the empty slots of p from other.
func (p *DailyPlan) MergeMissing(other DailyPlan) {
	for _, slot := range []Slot{Breakfast, Lunch, Dinner} {
		if p.Get(slot) == nil && other.Get(slot) != nil {
			item := *other.Get(slot)
			p.Set(slot, &item)
		}
	}
}

// Calories sums the calories of the recorded meals.
func (p DailyPlan) Calories() float64 {
	var total float64
	for _, slot := range []Slot{Breakfast, Lunch, Dinner} {
		if item := p.Get(slot); item != nil {
			total += item.Nutrition.Calories
		}
	}
	return total
}
