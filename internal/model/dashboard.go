package model

import (
	"time"

	"github.com/google/uuid"
)

// Placeholder is rendered in place of any value that could not be derived.
const Placeholder = "Unavailable"

// Card is a headline figure on the overview row
type Card struct {
	Title  string `json:"title"`
	Value  string `json:"value"`
	Accent string `json:"accent"` // success, error, accent
}

// Insight is a derived, human-readable observation about the statistics
type Insight struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tone    string `json:"tone"`
}

// DetailItem is one labelled value inside a detail panel
type DetailItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DetailPanel groups the per-direction figures (payments or withdrawals)
type DetailPanel struct {
	Title string       `json:"title"`
	Items []DetailItem `json:"items"`
}

// ChartConfig enumerates every recognized chart option. Nothing else is passed to the renderer.
type ChartConfig struct {
	Title          string `json:"title"`
	AmountLabel    string `json:"amount_label"`
	CountLabel     string `json:"count_label"`
	AmountColor    string `json:"amount_color"`
	CountColor     string `json:"count_color"`
	LegendPosition string `json:"legend_position"`
	TickColor      string `json:"tick_color"`
	GridColor      string `json:"grid_color"`
}

// ChartSeries is one dataset of a bar chart
type ChartSeries struct {
	Label  string    `json:"label"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

// ChartBar is a precomputed bar for server-side rendering, Percent is relative to the series maximum
type ChartBar struct {
	Label   string  `json:"label"`
	Display string  `json:"display"`
	Percent float64 `json:"percent"`
}

// BarChart is a method breakdown with one amount and one count series
type BarChart struct {
	Config ChartConfig   `json:"config"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
	Amount []ChartBar    `json:"amount_bars"`
	Count  []ChartBar    `json:"count_bars"`
}

// TimelineEntry is one first/last activity date
type TimelineEntry struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Valid bool   `json:"valid"`
}

// TimelineSection groups the dates of one direction
type TimelineSection struct {
	Title   string          `json:"title"`
	Entries []TimelineEntry `json:"entries"`
}

// Dashboard is the full view model for one token submission
type Dashboard struct {
	Cards       []Card            `json:"cards"`
	Insights    []Insight         `json:"insights"`
	Payments    DetailPanel       `json:"payments"`
	Withdrawals DetailPanel       `json:"withdrawals"`
	Charts      []BarChart        `json:"charts"`
	Timeline    []TimelineSection `json:"timeline"`
	Warnings    []string          `json:"warnings,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Session is the request-lifecycle scope of one dashboard visitor. It holds at most one
// in-flight submission and the dashboard produced by the latest completed one.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	LastSeen  time.Time
	InFlight  bool
	Result    *Dashboard
}
