package models

// SettingsRequest updates the strategy parameters. Threshold ordering
// (crisis > panic > correction) is checked by the monitor service on top of
// the per-field rules here.
type SettingsRequest struct {
	Crisis     float64 `json:"crisis" validate:"required,gt=0"`
	Panic      float64 `json:"panic" validate:"required,gt=0"`
	Correction float64 `json:"correction" validate:"required,gt=0"`
	Cash       float64 `json:"cash" default:"10000" validate:"gt=0"`
}

// Thresholds folds the request's boundary fields into the domain triple.
func (r *SettingsRequest) Thresholds() Thresholds {
	return Thresholds{Crisis: r.Crisis, Panic: r.Panic, Correction: r.Correction}
}

// AuditRequest bounds the audit listing.
type AuditRequest struct {
	Limit int `query:"limit" default:"20" validate:"gte=0,lte=20"`
}
