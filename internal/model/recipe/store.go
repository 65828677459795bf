package recipe

// Store exposes the static recommendation tables to the recommend service.
type Store interface {
	List() []Recipe
	Filter(condition, dietType string) []Recipe
	Guides() []Guide
	HealthyMeals() []HealthyMeal
}

// MemoryStore implements Store over in-memory slices.
type MemoryStore struct {
	recipes []Recipe
	guides  []Guide
	healthy []HealthyMeal
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied tables.
func NewMemoryStore(recipes []Recipe, guides []Guide, healthy []HealthyMeal) *MemoryStore {
	return &MemoryStore{
		recipes: append([]Recipe(nil), recipes...),
		guides:  append([]Guide(nil), guides...),
		healthy: append([]HealthyMeal(nil), healthy...),
	}
}

// NewSeededStore returns a MemoryStore with the built-in tables.
func NewSeededStore() *MemoryStore {
	return NewMemoryStore(Seed(), Guides(), HealthyMeals())
}

// List returns every recipe.
func (s *MemoryStore) List() []Recipe {
	return append([]Recipe(nil), s.recipes...)
}

// Filter returns the recipes matching both the condition and the diet type exactly.
func (s *MemoryStore) Filter(condition, dietType string) []Recipe {
	out := make([]Recipe, 0, 1)
	for _, item := range s.recipes {
		if item.Condition == condition && item.DietType == dietType {
			out = append(out, item)
		}
	}
	return out
}

// Guides returns the disease guides.
func (s *MemoryStore) Guides() []Guide {
	return append([]Guide(nil), s.guides...)
}

// HealthyMeals returns the wellness list.
func (s *MemoryStore) HealthyMeals() []HealthyMeal {
	return append([]HealthyMeal(nil), s.healthy...)
}
