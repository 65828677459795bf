package meallog

import "time"

var weekdayLabels = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// CalendarDay is one cell of the week strip or month grid.
type CalendarDay struct {
	Date    string `json:"full"`
	Day     int    `json:"day"`
	Label   string `json:"label,omitempty"`
	IsToday bool   `json:"isToday"`
	Logged  bool   `json:"logged"`
}

// Week returns the seven days centred on date.
func (s *Service) Week(date string) ([]CalendarDay, error) {
	date, err := s.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	base, _ := time.ParseInLocation(DateLayout, date, time.Local)
	today := s.Today()

	s.mu.RLock()
	defer s.mu.RUnlock()

	days := make([]CalendarDay, 0, 7)
	for i := -3; i <= 3; i++ {
		d := base.AddDate(0, 0, i)
		days = append(days, s.dayLocked(d, today, weekdayLabels[d.Weekday()]))
	}
	return days, nil
}

// Month returns the grid of a month; nil entries pad the first week.
func (s *Service) Month(year int, month time.Month) []*CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)
	today := s.Today()

	s.mu.RLock()
	defer s.mu.RUnlock()

	days := make([]*CalendarDay, 0, int(first.Weekday())+last.Day())
	for i := 0; i < int(first.Weekday()); i++ {
		days = append(days, nil)
	}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		day := s.dayLocked(d, today, "")
		days = append(days, &day)
	}
	return days
}

func (s *Service) dayLocked(d time.Time, today, label string) CalendarDay {
	key := d.Format(DateLayout)
	_, hasMeals := s.meals[key]
	_, hasSugar := s.sugar[key]
	return CalendarDay{
		Date:    key,
		Day:     d.Day(),
		Label:   label,
		IsToday: key == today,
		Logged:  hasMeals || hasSugar,
	}
}
