package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statsdash/internal/insight"
)

func validStats() *StatsResponse {
	return &StatsResponse{
		Payments: &PaymentStats{
			TotalAmount:        1500.5,
			TotalBonus:         25,
			SuccessfulPayments: 12,
			FailedPayments:     3,
			FirstPaymentDate:   "2024-01-01T10:00:00Z",
			LastPaymentDate:    "2024-02-15T10:00:00Z",
			AveragePayment:     125.04,
			MaxPayment:         500,
			MinPayment:         10,
			PaymentMethods: map[string]PaymentMethodBucket{
				"card":   {Count: 10, Amount: 1200.5},
				"crypto": {Count: 2, Amount: 300},
			},
		},
		Withdrawals: &WithdrawalStats{
			TotalAmount:         400,
			Successful:          4,
			Failed:              1,
			FirstWithdrawalDate: "2024-01-10",
			LastWithdrawalDate:  "2024-02-01",
			AverageWithdrawal:   100,
			MaxWithdrawal:       200,
			MinWithdrawal:       50,
			Methods: map[string]PaymentMethodBucket{
				"bank": {Count: 4, Amount: 400},
			},
		},
	}
}

func violations(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func TestStatsResponse_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *StatsResponse)
		want   int
	}{
		{"valid document", func(*StatsResponse) {}, 0},
		{"empty method maps", func(r *StatsResponse) {
			r.Payments.PaymentMethods = nil
			r.Withdrawals.Methods = map[string]PaymentMethodBucket{}
		}, 0},
		{"both sections missing", func(r *StatsResponse) {
			r.Payments = nil
			r.Withdrawals = nil
		}, 2},
		{"payments missing", func(r *StatsResponse) { r.Payments = nil }, 1},
		{"zero count bucket with an amount", func(r *StatsResponse) {
			r.Payments.PaymentMethods["voucher"] = PaymentMethodBucket{Count: 0, Amount: 12}
		}, 1},
		{"zero count bucket with zero amount", func(r *StatsResponse) {
			r.Withdrawals.Methods["paypal"] = PaymentMethodBucket{}
		}, 0},
		{"negative bucket count", func(r *StatsResponse) {
			r.Withdrawals.Methods["bank"] = PaymentMethodBucket{Count: -1, Amount: 400}
		}, 1},
		{"negative bucket amount", func(r *StatsResponse) {
			r.Payments.PaymentMethods["card"] = PaymentMethodBucket{Count: 10, Amount: -1}
		}, 1},
		{"last payment before first", func(r *StatsResponse) {
			r.Payments.LastPaymentDate = "2023-12-31"
		}, 1},
		{"last withdrawal before first", func(r *StatsResponse) {
			r.Withdrawals.FirstWithdrawalDate = "2024-03-01T00:00:00Z"
		}, 1},
		{"unparseable dates are left to derivation", func(r *StatsResponse) {
			r.Payments.FirstPaymentDate = "not-a-date"
			r.Withdrawals.LastWithdrawalDate = ""
		}, 0},
		{"negative amounts and counts", func(r *StatsResponse) {
			r.Payments.TotalBonus = -5
			r.Withdrawals.Failed = -2
		}, 2},
		{"non-finite amounts", func(r *StatsResponse) {
			r.Payments.TotalAmount = math.NaN()
			r.Withdrawals.MaxWithdrawal = math.Inf(1)
		}, 2},
		{"min above average", func(r *StatsResponse) {
			r.Withdrawals.MinWithdrawal = 150
		}, 1},
		{"average above max", func(r *StatsResponse) {
			r.Payments.AveragePayment = 600
		}, 1},
		{"range ignored without successful payments", func(r *StatsResponse) {
			r.Payments.SuccessfulPayments = 0
			r.Payments.MinPayment = 900
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validStats()
			tt.mutate(r)

			err := r.Validate()
			if tt.want == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, insight.ErrData)
			got := violations(err)
			assert.Len(t, got, tt.want)
			for _, v := range got {
				assert.ErrorIs(t, v, insight.ErrData)
			}
		})
	}
}

func TestSortedMethodNames(t *testing.T) {
	buckets := map[string]PaymentMethodBucket{"crypto": {}, "bank": {}, "card": {}}
	assert.Equal(t, []string{"bank", "card", "crypto"}, SortedMethodNames(buckets))
	assert.Empty(t, SortedMethodNames(nil))
}
