package insight

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts lists the ISO-8601 shapes the statistics endpoint is known to emit.
// Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const displayDateLayout = "Jan 2, 2006"

// FormatCurrency renders amount as US dollars, e.g. 1234.5 -> "$1,234.50" and -3 -> "-$3.00".
// NaN and infinities are normalized to zero.
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + cents
}

// ParseCurrency reverses FormatCurrency. The whole part must be grouped in threes exactly
// as FormatCurrency writes it, so "$1,2,3" and "$1234.00" are rejected.
func ParseCurrency(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	if !strings.HasPrefix(raw, "$") {
		return 0, fmt.Errorf("%w: currency %q has no dollar sign", ErrParse, s)
	}
	raw = strings.TrimPrefix(raw, "$")

	whole, cents, _ := strings.Cut(raw, ".")
	digits := strings.ReplaceAll(whole, ",", "")
	if groupThousands(digits) != whole || strings.Contains(cents, ",") {
		return 0, fmt.Errorf("%w: currency %q has misplaced thousands separators", ErrParse, s)
	}
	raw = strings.ReplaceAll(raw, ",", "")

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: currency %q: %v", ErrParse, s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), nil
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseTimestamp reads an ISO-8601 date or datetime.
func ParseTimestamp(ts string) (time.Time, error) {
	value := strings.TrimSpace(ts)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrParse)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", ErrParse, ts)
}

// FormatDate renders an ISO-8601 timestamp as "Jan 5, 2024" in the timestamp's own zone.
func FormatDate(ts string) (string, error) {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return "", err
	}
	return t.Format(displayDateLayout), nil
}
