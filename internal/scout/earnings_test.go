package scout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigpilot/gigpilot/internal/scout"
	"github.com/gigpilot/gigpilot/internal/transactions"
)

func TestHourlyRate(t *testing.T) {
	tests := []struct {
		name    string
		records []transactions.Record
		rate    float64
		ok      bool
	}{
		{"no records", nil, 0, false},
		{"only zero hours", []transactions.Record{{Income: 500, HoursWorked: 0}}, 0, false},
		{"single", []transactions.Record{{Income: 600, HoursWorked: 4}}, 150, true},
		{
			"pooled, skipping non-positive hours",
			[]transactions.Record{
				{Income: 600, HoursWorked: 4},
				{Income: 400, HoursWorked: 6},
				{Income: 999, HoursWorked: 0},
				{Income: 50, HoursWorked: -1},
			},
			100, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := scout.HourlyRate(tt.records)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.rate, rate, 1e-9)
		})
	}
}

func TestFinalHourly(t *testing.T) {
	assert.Equal(t, 120.0, scout.FinalHourly(nil))

	rate := 200.0
	assert.InDelta(t, 144.0, scout.FinalHourly(&rate), 1e-9)
}

func TestExpectedBoost(t *testing.T) {
	assert.Equal(t, 316, scout.ExpectedBoost(120, 1.88))
	assert.Equal(t, 0, scout.ExpectedBoost(120, 1.0))
	assert.Equal(t, 0, scout.ExpectedBoost(120, 0.7), "never negative")
	assert.Equal(t, 44, scout.ExpectedBoost(120, 1.1225))
}

func TestSuggestWindow(t *testing.T) {
	tests := []struct {
		hour  int
		start int
		end   int
		label string
	}{
		{17, 17, 20, "5-8 PM"},
		{18, 18, 21, "6-9 PM"},
		{20, 20, 22, "8-10 PM"},
		{22, 22, 22, "10-10 PM"},
		{16, 18, 21, "6-9 PM"},
		{23, 18, 21, "6-9 PM"},
		{0, 18, 21, "6-9 PM"},
		{9, 18, 21, "6-9 PM"},
	}

	for _, tt := range tests {
		w := scout.SuggestWindow(tt.hour)
		assert.Equal(t, tt.start, w.StartHour, "hour %d", tt.hour)
		assert.Equal(t, tt.end, w.EndHour, "hour %d", tt.hour)
		assert.Equal(t, tt.label, w.Label, "hour %d", tt.hour)
	}

	assert.Equal(t, scout.SuggestWindow(10), scout.FallbackWindow())
}
