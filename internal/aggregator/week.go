package aggregator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekKey formats t as "YYYY-WW". Weeks start on Monday; days before the
// first Monday of the year belong to week 00.
func WeekKey(t time.Time) string {
	yday := t.YearDay() - 1
	monday := (int(t.Weekday()) + 6) % 7
	week := (yday + 7 - monday) / 7
	return fmt.Sprintf("%04d-%02d", t.Year(), week)
}

// ParseWeek returns the Monday that starts the week named by a "YYYY-WW" key.
// Week 00 resolves to the Monday on or before January 1.
func ParseWeek(key string) (time.Time, bool) {
	yearPart, weekPart, ok := strings.Cut(strings.TrimSpace(key), "-")
	if !ok || len(yearPart) != 4 || len(weekPart) == 0 || len(weekPart) > 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return time.Time{}, false
	}
	week, err := strconv.Atoi(weekPart)
	if err != nil || week < 0 || week > 53 {
		return time.Time{}, false
	}

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	day := 7*week - (int(jan1.Weekday())+5)%7
	return time.Date(year, time.January, day, 0, 0, 0, 0, time.UTC), true
}
