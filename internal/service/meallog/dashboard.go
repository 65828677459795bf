package meallog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/caremeal/caremeal/app/internal/model/meal"
)

const (
	trendDays   = 7
	chartWidth  = 300.0
	chartHeight = 100.0
	chartCeil   = 200.0
	chartFloor  = 70.0
)

// TrendPoint is the daily average reading; 0 means nothing was measured.
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// LatestReading is the newest reading shown on the home card.
type LatestReading struct {
	Date   string           `json:"date"`
	Slot   meal.SugarSlot   `json:"slot"`
	Value  float64          `json:"value"`
	Status meal.SugarStatus `json:"status"`
}

// Dashboard is the home screen summary.
type Dashboard struct {
	Name       string         `json:"name"`
	IsDiabetic bool           `json:"isDiabetic"`
	Trend      []TrendPoint   `json:"trend"`
	ChartPath  string         `json:"chartPath"`
	Latest     *LatestReading `json:"latest"`
}

// Dashboard summarises the last week of blood sugar readings.
func (s *Service) Dashboard() Dashboard {
	var out Dashboard
	if s.profile != nil {
		profile := s.profile.Diagnosis()
		out.IsDiabetic = profile.IsDiabetic()
		if profile != nil {
			out.Name = profile.Name
		}
	}
	if out.Name == "" {
		out.Name = "환자"
	}

	now := s.now()

	s.mu.RLock()
	out.Trend = make([]TrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(DateLayout)
		out.Trend = append(out.Trend, TrendPoint{Date: date, Value: s.sugar[date].Average()})
	}
	out.Latest = s.latestLocked()
	s.mu.RUnlock()

	out.ChartPath = ChartPath(out.Trend)
	return out
}

// latestLocked looks only at the newest recorded date, like the home card.
func (s *Service) latestLocked() *LatestReading {
	if len(s.sugar) == 0 {
		return nil
	}
	dates := make([]string, 0, len(s.sugar))
	for date := range s.sugar {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	newest := dates[len(dates)-1]

	slot, value, ok := s.sugar[newest].Latest()
	if !ok {
		return nil
	}
	return &LatestReading{
		Date:   newest,
		Slot:   slot,
		Value:  value,
		Status: meal.StatusOf(slot, value),
	}
}

// ChartPath renders the trend as an SVG path in a 300x100 box. Days without
// readings sit on the baseline; an all-empty trend yields "".
func ChartPath(points []TrendPoint) string {
	maxVal, minVal := chartCeil, chartFloor
	hasData := false
	for _, p := range points {
		if p.Value == 0 {
			continue
		}
		hasData = true
		maxVal = math.Max(maxVal, p.Value)
		minVal = math.Min(minVal, p.Value)
	}
	if !hasData {
		return ""
	}

	span := maxVal - minVal
	if span == 0 {
		span = 1
	}
	steps := float64(len(points) - 1)
	if steps <= 0 {
		steps = 1
	}

	parts := make([]string, 0, len(points))
	for i, p := range points {
		x := float64(i) / steps * chartWidth
		y := chartHeight
		if p.Value != 0 {
			y = chartHeight - (p.Value-minVal)/span*chartHeight
		}
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", cmd, formatCoord(x), formatCoord(y)))
	}
	return strings.Join(parts, " ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
