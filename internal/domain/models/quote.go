package models

import "time"

// Symbols tracked by the monitor. The volatility index is the primary
// instrument: a cycle cannot succeed without it.
const (
	SymbolVIX = "^VIX"
	SymbolSPY = "SPY"
	SymbolSSO = "SSO"
)

// Quote is the latest reading for a single instrument. Only the most recent
// value is kept per symbol; no price history is stored.
type Quote struct {
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

// ComputeChange returns the percent move from priorClose to price.
// A missing or non-positive prior close yields 0.0 rather than an error so
// a fresh listing never blocks the cycle.
func ComputeChange(price, priorClose float64) float64 {
	if priorClose <= 0 {
		return 0.0
	}
	return (price - priorClose) / priorClose * 100
}

// CycleState is the persisted snapshot mutated once per monitoring cycle.
type CycleState struct {
	Quotes           map[string]Quote `json:"quotes"`
	LastUpdateTime   time.Time        `json:"last_update_time"`
	LastNotifiedZone Zone             `json:"last_notified_zone"`
	LastError        string           `json:"last_error"`
	Thresholds       Thresholds       `json:"thresholds"`
	TotalCash        float64          `json:"total_cash"`
	IsRunning        bool             `json:"is_running"`
}

// AlertEvent is the message published to the notification sink when the
// monitor crosses into a new non-neutral zone.
type AlertEvent struct {
	Symbol    string    `json:"symbol"`
	Zone      Zone      `json:"zone"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	VIX       float64   `json:"vix"`
	CreatedAt time.Time `json:"created_at"`
}
