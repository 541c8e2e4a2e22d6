package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, CalculateSuccessRate(0, 0))
	assert.Equal(t, 75.0, CalculateSuccessRate(3, 1))
	assert.Equal(t, 100.0, CalculateSuccessRate(10, 0))
	assert.Equal(t, 0.0, CalculateSuccessRate(0, 4))
	assert.InDelta(t, 33.333, CalculateSuccessRate(1, 2), 0.001)
}

func TestCalculateDailyAverage(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		first, last string
		want        float64
	}{
		{"same day floors to one day", 300, "2024-01-01", "2024-01-01", 300},
		{"three day span", 300, "2024-01-01", "2024-01-04", 100},
		{"partial day rounds up", 100, "2024-01-01T00:00:00Z", "2024-01-01T06:00:00Z", 100},
		{"span crossing into a second day", 100, "2024-01-01T12:00:00Z", "2024-01-02T18:00:00Z", 50},
		{"zero amount", 0, "2024-01-01", "2024-03-01", 0},
		{"span longer than a Duration", 118338, "1700-01-01", "2024-01-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateDailyAverage(tt.amount, tt.first, tt.last)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculateDailyAverage_Errors(t *testing.T) {
	_, err := CalculateDailyAverage(100, "garbage", "2024-01-01")
	assert.ErrorIs(t, err, ErrParse)

	_, err = CalculateDailyAverage(100, "2024-01-01", "")
	assert.ErrorIs(t, err, ErrParse)

	_, err = CalculateDailyAverage(100, "2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, ErrData)
	assert.NotErrorIs(t, err, ErrParse)
}

func TestGetActivityPeriod(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"2024-01-01", "2024-01-01", "0 days"},
		{"2024-01-01", "2024-01-13", "12 days"},
		{"2024-01-01", "2024-01-31", "1 months"},
		{"2024-01-01", "2024-02-15", "1 months and 15 days"},
		{"2024-01-01", "2024-03-31", "3 months"},
		{"2024-01-01T00:00:00Z", "2024-01-01T01:00:00Z", "1 days"},
		{"1700-01-01", "2024-01-01", "3944 months and 18 days"},
	}

	for _, tt := range tests {
		t.Run(tt.first+"_"+tt.last, func(t *testing.T) {
			got, err := GetActivityPeriod(tt.first, tt.last)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetActivityPeriod_Errors(t *testing.T) {
	_, err := GetActivityPeriod("2024-01-01", "yesterday")
	assert.ErrorIs(t, err, ErrParse)

	_, err = GetActivityPeriod("2024-03-01", "2024-01-01")
	assert.ErrorIs(t, err, ErrData)
}

func TestProfitLoss_Symmetric(t *testing.T) {
	pairs := [][2]float64{{1500, 400}, {0, 0}, {10.25, 99.75}, {1e6, 1}}
	for _, p := range pairs {
		assert.Equal(t, ProfitLoss(p[0], p[1]), ProfitLoss(p[1], p[0]))
		assert.GreaterOrEqual(t, ProfitLoss(p[0], p[1]), 0.0)
	}
	assert.Equal(t, 1100.0, ProfitLoss(1500, 400))
}

func TestDerivations_Idempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "$1,234.50", FormatCurrency(1234.5))
		assert.Equal(t, 75.0, CalculateSuccessRate(3, 1))

		avg, err := CalculateDailyAverage(300, "2024-01-01", "2024-01-04")
		require.NoError(t, err)
		assert.Equal(t, 100.0, avg)

		period, err := GetActivityPeriod("2024-01-01", "2024-02-15")
		require.NoError(t, err)
		assert.Equal(t, "1 months and 15 days", period)
	}
}
