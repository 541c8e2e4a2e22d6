package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"statsdash/internal/insight"
)

// amountTolerance absorbs float noise when comparing upstream aggregates.
const amountTolerance = 1e-9

// PaymentMethodBucket aggregates one payment or withdrawal channel
type PaymentMethodBucket struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// PaymentStats aggregates all payments made with one token
type PaymentStats struct {
	TotalAmount        float64                        `json:"total_amount"`
	TotalBonus         float64                        `json:"total_bonus"`
	SuccessfulPayments int64                          `json:"successful_payments"`
	FailedPayments     int64                          `json:"failed_payments"`
	FirstPaymentDate   string                         `json:"first_payment_date"`
	LastPaymentDate    string                         `json:"last_payment_date"`
	AveragePayment     float64                        `json:"average_payment"`
	MaxPayment         float64                        `json:"max_payment"`
	MinPayment         float64                        `json:"min_payment"`
	PaymentMethods     map[string]PaymentMethodBucket `json:"payment_methods"`
}

// WithdrawalStats aggregates all withdrawals made with one token
type WithdrawalStats struct {
	TotalAmount         float64                        `json:"total_amount"`
	Successful          int64                          `json:"successful"`
	Failed              int64                          `json:"failed"`
	FirstWithdrawalDate string                         `json:"first_withdrawal_date"`
	LastWithdrawalDate  string                         `json:"last_withdrawal_date"`
	AverageWithdrawal   float64                        `json:"average_withdrawal"`
	MaxWithdrawal       float64                        `json:"max_withdrawal"`
	MinWithdrawal       float64                        `json:"min_withdrawal"`
	Methods             map[string]PaymentMethodBucket `json:"methods"`
}

// StatsResponse is the document returned by the statistics endpoint for one token
type StatsResponse struct {
	Payments    *PaymentStats    `json:"payments"`
	Withdrawals *WithdrawalStats `json:"withdrawals"`
}

// Validate reports every violated invariant of the statistics contract. Each returned
// error wraps insight.ErrData. Unparseable dates are left to the derivation layer.
func (r *StatsResponse) Validate() error {
	var errs []error
	if r.Payments == nil {
		errs = append(errs, dataErr("payments is required"))
	} else {
		errs = append(errs, r.Payments.validate()...)
	}
	if r.Withdrawals == nil {
		errs = append(errs, dataErr("withdrawals is required"))
	} else {
		errs = append(errs, r.Withdrawals.validate()...)
	}
	return errors.Join(errs...)
}

func (p *PaymentStats) validate() []error {
	var errs []error
	errs = append(errs, checkAmounts("payments", map[string]float64{
		"total_amount":    p.TotalAmount,
		"total_bonus":     p.TotalBonus,
		"average_payment": p.AveragePayment,
		"max_payment":     p.MaxPayment,
		"min_payment":     p.MinPayment,
	})...)
	errs = append(errs, checkCounts("payments", map[string]int64{
		"successful_payments": p.SuccessfulPayments,
		"failed_payments":     p.FailedPayments,
	})...)
	if p.SuccessfulPayments > 0 {
		errs = append(errs, checkRange("payments", p.MinPayment, p.AveragePayment, p.MaxPayment)...)
	}
	errs = append(errs, checkOrder("payments", p.FirstPaymentDate, p.LastPaymentDate)...)
	errs = append(errs, checkBuckets("payments.payment_methods", p.PaymentMethods)...)
	return errs
}

func (w *WithdrawalStats) validate() []error {
	var errs []error
	errs = append(errs, checkAmounts("withdrawals", map[string]float64{
		"total_amount":       w.TotalAmount,
		"average_withdrawal": w.AverageWithdrawal,
		"max_withdrawal":     w.MaxWithdrawal,
		"min_withdrawal":     w.MinWithdrawal,
	})...)
	errs = append(errs, checkCounts("withdrawals", map[string]int64{
		"successful": w.Successful,
		"failed":     w.Failed,
	})...)
	if w.Successful > 0 {
		errs = append(errs, checkRange("withdrawals", w.MinWithdrawal, w.AverageWithdrawal, w.MaxWithdrawal)...)
	}
	errs = append(errs, checkOrder("withdrawals", w.FirstWithdrawalDate, w.LastWithdrawalDate)...)
	errs = append(errs, checkBuckets("withdrawals.methods", w.Methods)...)
	return errs
}

func checkAmounts(scope string, fields map[string]float64) []error {
	var errs []error
	for _, name := range sortedKeys(fields) {
		v := fields[name]
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, dataErr("%s.%s is not a finite number", scope, name))
		case v < 0:
			errs = append(errs, dataErr("%s.%s is negative: %v", scope, name, v))
		}
	}
	return errs
}

func checkCounts(scope string, fields map[string]int64) []error {
	var errs []error
	for _, name := range sortedKeys(fields) {
		if fields[name] < 0 {
			errs = append(errs, dataErr("%s.%s is negative: %d", scope, name, fields[name]))
		}
	}
	return errs
}

func checkRange(scope string, lowest, average, highest float64) []error {
	if lowest-average > amountTolerance || average-highest > amountTolerance {
		return []error{dataErr("%s: expected min <= average <= max, got %v <= %v <= %v", scope, lowest, average, highest)}
	}
	return nil
}

func checkOrder(scope, first, last string) []error {
	firstAt, err := insight.ParseTimestamp(first)
	if err != nil {
		return nil
	}
	lastAt, err := insight.ParseTimestamp(last)
	if err != nil {
		return nil
	}
	if lastAt.Before(firstAt) {
		return []error{dataErr("%s: last date %s is before first date %s", scope, last, first)}
	}
	return nil
}

func checkBuckets(scope string, buckets map[string]PaymentMethodBucket) []error {
	var errs []error
	for _, name := range SortedMethodNames(buckets) {
		b := buckets[name]
		switch {
		case b.Count < 0:
			errs = append(errs, dataErr("%s[%s].count is negative: %d", scope, name, b.Count))
		case math.IsNaN(b.Amount) || math.IsInf(b.Amount, 0):
			errs = append(errs, dataErr("%s[%s].amount is not a finite number", scope, name))
		case b.Amount < 0:
			errs = append(errs, dataErr("%s[%s].amount is negative: %v", scope, name, b.Amount))
		case b.Count == 0 && b.Amount != 0:
			errs = append(errs, dataErr("%s[%s] has amount %v with zero transactions", scope, name, b.Amount))
		}
	}
	return errs
}

// SortedMethodNames returns bucket keys in lexical order so charts render deterministically.
func SortedMethodNames(buckets map[string]PaymentMethodBucket) []string {
	return sortedKeys(buckets)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dataErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{insight.ErrData}, args...)...)
}
