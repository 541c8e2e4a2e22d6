package insight

import (
	"fmt"
	"math"
)

const (
	msPerDay = 24 * 60 * 60 * 1000
	// daysPerMonth approximates a month for activity phrasing. Calendar months are not used.
	daysPerMonth = 30
)

// CalculateSuccessRate returns the share of successful operations as a percentage in [0, 100].
// When there were no operations at all the rate is 0.
func CalculateSuccessRate(success, failed int64) float64 {
	total := success + failed
	if total == 0 {
		return 0
	}
	return float64(success) / float64(total) * 100
}

// CalculateDailyAverage spreads amount over the whole days between firstDate and lastDate,
// counting at least one day.
func CalculateDailyAverage(amount float64, firstDate, lastDate string) (float64, error) {
	days, err := elapsedDays(firstDate, lastDate)
	if err != nil {
		return 0, err
	}
	if days < 1 {
		days = 1
	}
	return amount / float64(days), nil
}

// GetActivityPeriod phrases the span between firstDate and lastDate, e.g. "12 days" or
// "1 months and 15 days".
func GetActivityPeriod(firstDate, lastDate string) (string, error) {
	days, err := elapsedDays(firstDate, lastDate)
	if err != nil {
		return "", err
	}

	months := days / daysPerMonth
	remainingDays := days % daysPerMonth
	if months == 0 {
		return fmt.Sprintf("%d days", days), nil
	}
	if remainingDays > 0 {
		return fmt.Sprintf("%d months and %d days", months, remainingDays), nil
	}
	return fmt.Sprintf("%d months", months), nil
}

// ProfitLoss is the magnitude of the difference between money paid in and money withdrawn.
func ProfitLoss(paymentsTotal, withdrawalsTotal float64) float64 {
	return math.Abs(paymentsTotal - withdrawalsTotal)
}

// elapsedDays is the ceiling of the span between two timestamps in days.
func elapsedDays(firstDate, lastDate string) (int64, error) {
	first, err := ParseTimestamp(firstDate)
	if err != nil {
		return 0, fmt.Errorf("first date: %w", err)
	}
	last, err := ParseTimestamp(lastDate)
	if err != nil {
		return 0, fmt.Errorf("last date: %w", err)
	}
	if last.Before(first) {
		return 0, fmt.Errorf("%w: last date %s is before first date %s", ErrData, lastDate, firstDate)
	}

	// time.Duration saturates at about 292 years
	ms := last.UnixMilli() - first.UnixMilli()
	return int64(math.Ceil(float64(ms) / msPerDay)), nil
}
