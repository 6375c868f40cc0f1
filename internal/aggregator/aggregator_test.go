package aggregator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-analyzer/internal/aggregator"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "year starting on Monday", in: date(2024, time.January, 1), want: "2024-01"},
		{name: "Sunday before the first Monday", in: date(2023, time.January, 1), want: "2023-00"},
		{name: "first Monday", in: date(2023, time.January, 2), want: "2023-01"},
		{name: "Sunday closes the week", in: date(2023, time.January, 8), want: "2023-01"},
		{name: "late December", in: date(2024, time.December, 30), want: "2024-53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aggregator.WeekKey(tt.in))
		})
	}
}

func TestParseWeek(t *testing.T) {
	t.Run("round trips to the Monday of the week", func(t *testing.T) {
		for _, d := range []time.Time{date(2023, time.March, 15), date(2024, time.July, 4), date(2021, time.November, 28)} {
			got, ok := aggregator.ParseWeek(aggregator.WeekKey(d))
			require.True(t, ok)
			assert.Equal(t, time.Monday, got.Weekday())
			assert.Equal(t, aggregator.WeekKey(d), aggregator.WeekKey(got))
			assert.False(t, got.After(d))
		}
	})

	t.Run("week zero", func(t *testing.T) {
		got, ok := aggregator.ParseWeek("2023-00")
		require.True(t, ok)
		assert.Equal(t, time.Date(2022, time.December, 26, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("invalid keys", func(t *testing.T) {
		for _, key := range []string{"", "2023", "23-01", "2023-xx", "2023-99", "abcd-01"} {
			_, ok := aggregator.ParseWeek(key)
			assert.False(t, ok, key)
		}
	})
}

func TestWeeklyActivity(t *testing.T) {
	timestamps := []time.Time{
		date(2024, time.January, 10),
		date(2024, time.January, 2),
		date(2024, time.January, 3),
		date(2023, time.December, 28),
	}

	got := aggregator.WeeklyActivity(timestamps)
	assert.Equal(t, []domain.ActivityPoint{
		{Week: "2023-52", Count: 1},
		{Week: "2024-01", Count: 2},
		{Week: "2024-02", Count: 1},
	}, got)

	assert.Empty(t, aggregator.WeeklyActivity(nil))
}

func TestAverageDays(t *testing.T) {
	assert.Nil(t, aggregator.AverageDays(nil))

	got := aggregator.AverageDays([]time.Duration{24 * time.Hour, 48 * time.Hour, 36 * time.Hour})
	require.NotNil(t, got)
	assert.Equal(t, 1.5, *got)

	got = aggregator.AverageDays([]time.Duration{8 * time.Hour})
	require.NotNil(t, got)
	assert.Equal(t, 0.3, *got)
}

func TestElapsed(t *testing.T) {
	start := date(2024, time.May, 1)
	end := start.Add(72 * time.Hour)
	before := start.Add(-time.Hour)

	got := aggregator.Elapsed([][2]*time.Time{
		{&start, &end},
		{&start, nil},
		{&start, &before},
	})
	assert.Equal(t, []time.Duration{72 * time.Hour}, got)
}
