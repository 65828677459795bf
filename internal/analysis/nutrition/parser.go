package nutrition

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/caremeal/caremeal/app/internal/model/meal"
)

const (
	menuRuneLimit    = 50
	summaryRuneLimit = 100
)

var (
	blockPattern    = regexp.MustCompile(`(?s)###JSON_START###(.*?)###JSON_END###`)
	caloriesPattern = regexp.MustCompile(`(?i)(\d+)\s*kcal`)
	carbsPattern    = regexp.MustCompile(`탄수화물.*?(\d+)\s*g`)
	proteinPattern  = regexp.MustCompile(`단백질.*?(\d+)\s*g`)
	fatPattern      = regexp.MustCompile(`지방.*?(\d+)\s*g`)
)

// Result 是从 AI 回复中解析出的餐食信息。
type Result struct {
	Item meal.Item
	// Structured 表示数据来自 JSON 块而非正则兜底。
	Structured bool
}

// ParseBlock reads the machine-readable block the analyzer appends to its
// replies. It reports false when the block is missing or not valid JSON.
func ParseBlock(text string) (meal.Item, bool) {
	match := blockPattern.FindStringSubmatch(text)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return meal.Item{}, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
		return meal.Item{}, false
	}

	menu, _ := data["menu"].(string)
	return meal.Item{
		Menu: menu,
		Nutrition: meal.NutritionInfo{
			Calories: Number(data["calories"]),
			Carbs:    Number(data["carbs"]),
			Protein:  Number(data["protein"]),
			Fat:      Number(data["fat"]),
		},
	}, true
}

// Extract parses a meal from a reply, falling back to scanning the prose
// for "N kcal" and per-nutrient gram amounts.
func Extract(text string) Result {
	if item, ok := ParseBlock(text); ok {
		return Result{Item: item, Structured: true}
	}

	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}

	return Result{
		Item: meal.Item{
			Menu: truncateRunes(firstLine, menuRuneLimit),
			Nutrition: meal.NutritionInfo{
				Calories: firstInt(caloriesPattern, text),
				Carbs:    firstInt(carbsPattern, text),
				Protein:  firstInt(proteinPattern, text),
				Fat:      firstInt(fatPattern, text),
			},
		},
	}
}

// Summary is the menu text used when an analysis reply carries no block.
func Summary(text string) string {
	return truncateRunes(text, summaryRuneLimit) + "..."
}

// StripBlock removes the machine-readable block from a reply.
func StripBlock(text string) string {
	return strings.TrimSpace(blockPattern.ReplaceAllLiteralString(text, ""))
}

// Number coerces a loosely typed form or JSON value; anything that is not a
// finite number becomes 0.
func Number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func firstInt(pattern *regexp.Regexp, text string) float64 {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return float64(n)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
