package service

import (
	"fmt"
	"strconv"
	"time"

	"statsdash/internal/insight"
	"statsdash/internal/model"
)

var (
	paymentChartConfig = model.ChartConfig{
		Title:          "Payment Methods",
		AmountLabel:    "Amount",
		CountLabel:     "Count",
		AmountColor:    "#6C5CE7",
		CountColor:     "#00D2D3",
		LegendPosition: "top",
		TickColor:      "#A0AEC0",
		GridColor:      "rgba(255, 255, 255, 0.1)",
	}
	withdrawalChartConfig = model.ChartConfig{
		Title:          "Withdrawal Methods",
		AmountLabel:    "Amount",
		CountLabel:     "Count",
		AmountColor:    "#00B894",
		CountColor:     "#FF6B6B",
		LegendPosition: "top",
		TickColor:      "#A0AEC0",
		GridColor:      "rgba(255, 255, 255, 0.1)",
	}
)

// dashboardBuilder collects a warning for every value that falls back to the placeholder
type dashboardBuilder struct {
	warnings []string
}

// BuildDashboard derives the full view model from one statistics document. Both
// directions must be present; every other defect degrades to a placeholder plus a warning.
func BuildDashboard(stats *model.StatsResponse, now time.Time) (*model.Dashboard, error) {
	if stats == nil || stats.Payments == nil || stats.Withdrawals == nil {
		return nil, fmt.Errorf("%w: payments and withdrawals are required", insight.ErrData)
	}

	b := &dashboardBuilder{}
	p, w := stats.Payments, stats.Withdrawals

	d := &model.Dashboard{
		Cards:       b.cards(p, w),
		Insights:    b.insights(p, w),
		Payments:    paymentPanel(p),
		Withdrawals: withdrawalPanel(w),
		Charts: []model.BarChart{
			buildBarChart(paymentChartConfig, p.PaymentMethods),
			buildBarChart(withdrawalChartConfig, w.Methods),
		},
		Timeline: []model.TimelineSection{
			{
				Title: "Payments",
				Entries: []model.TimelineEntry{
					b.timelineEntry("First Payment", "payments.first_payment_date", p.FirstPaymentDate),
					b.timelineEntry("Last Payment", "payments.last_payment_date", p.LastPaymentDate),
				},
			},
			{
				Title: "Withdrawals",
				Entries: []model.TimelineEntry{
					b.timelineEntry("First Withdrawal", "withdrawals.first_withdrawal_date", w.FirstWithdrawalDate),
					b.timelineEntry("Last Withdrawal", "withdrawals.last_withdrawal_date", w.LastWithdrawalDate),
				},
			},
		},
		GeneratedAt: now,
	}
	d.Warnings = b.warnings
	return d, nil
}

func (b *dashboardBuilder) warn(field string, err error) {
	b.warnings = append(b.warnings, fmt.Sprintf("%s: %v", field, err))
}

func (b *dashboardBuilder) cards(p *model.PaymentStats, w *model.WithdrawalStats) []model.Card {
	return []model.Card{
		{Title: "Total Payments", Value: insight.FormatCurrency(p.TotalAmount), Accent: "success"},
		{Title: "Total Withdrawals", Value: insight.FormatCurrency(w.TotalAmount), Accent: "error"},
		{Title: "Profit/Loss", Value: insight.FormatCurrency(insight.ProfitLoss(p.TotalAmount, w.TotalAmount)), Accent: "success"},
	}
}

func (b *dashboardBuilder) insights(p *model.PaymentStats, w *model.WithdrawalStats) []model.Insight {
	period, err := insight.GetActivityPeriod(p.FirstPaymentDate, p.LastPaymentDate)
	if err != nil {
		b.warn("activity period", err)
		period = model.Placeholder
	}
	profitLoss := insight.FormatCurrency(insight.ProfitLoss(p.TotalAmount, w.TotalAmount))

	dailyPayment := model.Placeholder
	if avg, err := insight.CalculateDailyAverage(p.TotalAmount, p.FirstPaymentDate, p.LastPaymentDate); err != nil {
		b.warn("daily payment average", err)
	} else {
		dailyPayment = insight.FormatCurrency(avg)
	}

	dailyWithdrawal := model.Placeholder
	if avg, err := insight.CalculateDailyAverage(w.TotalAmount, w.FirstWithdrawalDate, w.LastWithdrawalDate); err != nil {
		b.warn("daily withdrawal average", err)
	} else {
		dailyWithdrawal = insight.FormatCurrency(avg)
	}

	return []model.Insight{
		{
			Title:   "Activity Overview",
			Content: fmt.Sprintf("Active for %s with a profit of %s", period, profitLoss),
			Tone:    "success",
		},
		{
			Title:   "Daily Averages",
			Content: fmt.Sprintf("Average daily payment: %s | Average daily withdrawal: %s", dailyPayment, dailyWithdrawal),
			Tone:    "accent",
		},
		{
			Title: "Success Rates",
			Content: fmt.Sprintf("Payments: %.1f%% successful | Withdrawals: %.1f%% successful",
				insight.CalculateSuccessRate(p.SuccessfulPayments, p.FailedPayments),
				insight.CalculateSuccessRate(w.Successful, w.Failed)),
			Tone: "accent",
		},
	}
}

func paymentPanel(p *model.PaymentStats) model.DetailPanel {
	return model.DetailPanel{
		Title: "Payment Statistics",
		Items: []model.DetailItem{
			{Label: "Average Payment", Value: insight.FormatCurrency(p.AveragePayment)},
			{Label: "Total Bonus", Value: insight.FormatCurrency(p.TotalBonus)},
			{Label: "Minimum Payment", Value: insight.FormatCurrency(p.MinPayment)},
			{Label: "Maximum Payment", Value: insight.FormatCurrency(p.MaxPayment)},
		},
	}
}

func withdrawalPanel(w *model.WithdrawalStats) model.DetailPanel {
	return model.DetailPanel{
		Title: "Withdrawal Statistics",
		Items: []model.DetailItem{
			{Label: "Average Withdrawal", Value: insight.FormatCurrency(w.AverageWithdrawal)},
			{Label: "Total Successful", Value: strconv.FormatInt(w.Successful, 10)},
			{Label: "Minimum Withdrawal", Value: insight.FormatCurrency(w.MinWithdrawal)},
			{Label: "Maximum Withdrawal", Value: insight.FormatCurrency(w.MaxWithdrawal)},
		},
	}
}

func (b *dashboardBuilder) timelineEntry(label, field, ts string) model.TimelineEntry {
	formatted, err := insight.FormatDate(ts)
	if err != nil {
		b.warn(field, err)
		return model.TimelineEntry{Label: label, Date: model.Placeholder}
	}
	return model.TimelineEntry{Label: label, Date: formatted, Valid: true}
}

func buildBarChart(cfg model.ChartConfig, buckets map[string]model.PaymentMethodBucket) model.BarChart {
	labels := model.SortedMethodNames(buckets)
	amounts := make([]float64, len(labels))
	counts := make([]float64, len(labels))
	var maxAmount, maxCount float64
	for i, name := range labels {
		amounts[i] = buckets[name].Amount
		counts[i] = float64(buckets[name].Count)
		maxAmount = max(maxAmount, amounts[i])
		maxCount = max(maxCount, counts[i])
	}

	chart := model.BarChart{
		Config: cfg,
		Labels: labels,
		Series: []model.ChartSeries{
			{Label: cfg.AmountLabel, Color: cfg.AmountColor, Values: amounts},
			{Label: cfg.CountLabel, Color: cfg.CountColor, Values: counts},
		},
		Amount: make([]model.ChartBar, len(labels)),
		Count:  make([]model.ChartBar, len(labels)),
	}
	for i, name := range labels {
		chart.Amount[i] = model.ChartBar{
			Label:   name,
			Display: insight.FormatCurrency(amounts[i]),
			Percent: percentOf(amounts[i], maxAmount),
		}
		chart.Count[i] = model.ChartBar{
			Label:   name,
			Display: strconv.FormatInt(buckets[name].Count, 10),
			Percent: percentOf(counts[i], maxCount),
		}
	}
	return chart
}

func percentOf(v, top float64) float64 {
	if top <= 0 || v <= 0 {
		return 0
	}
	return v / top * 100
}
