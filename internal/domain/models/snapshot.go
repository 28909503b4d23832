package models

import "time"

// StaleAfter is how old a snapshot can get before the UI should force a
// refresh rather than trust it.
const StaleAfter = 16 * time.Minute

// FearMeterMax caps the dashboard gauge range.
const FearMeterMax = 60

// Snapshot is the read model served to UI consumers. Zone data is computed
// server-side; the UI never classifies on its own.
type Snapshot struct {
	Quotes         map[string]Quote `json:"quotes"`
	LastUpdateTime time.Time        `json:"last_update_time"`
	Zone           Zone             `json:"zone"`
	ZoneName       string           `json:"zone_name"`
	Message        string           `json:"message"`
	FearMeter      int              `json:"fear_meter"`
	Thresholds     Thresholds       `json:"thresholds"`
	TotalCash      float64          `json:"total_cash"`
	IsRunning      bool             `json:"is_running"`
	LastError      string           `json:"last_error,omitempty"`
	Stale          bool             `json:"stale"`
}
