package models

// Zone is the discrete severity classification of a volatility reading.
// Values are totally ordered so that a higher zone means a worse market.
type Zone int

const (
	ZoneCalm       Zone = -1
	ZoneNeutral    Zone = 0
	ZoneCorrection Zone = 1
	ZonePanic      Zone = 2
	ZoneCrisis     Zone = 3
)

// String returns the human-readable zone name.
func (z Zone) String() string {
	switch z {
	case ZoneCalm:
		return "CALM"
	case ZoneNeutral:
		return "NEUTRAL"
	case ZoneCorrection:
		return "CORRECTION"
	case ZonePanic:
		return "PANIC"
	case ZoneCrisis:
		return "CRISIS"
	default:
		return "UNKNOWN"
	}
}

// Thresholds holds the user-configurable zone boundaries. The expected
// ordering is Crisis > Panic > Correction; it is enforced where thresholds
// enter the system (config load and the settings API), and the classifier
// evaluates in strict descending priority so a bad triple still degrades
// predictably.
type Thresholds struct {
	Crisis     float64 `json:"crisis" yaml:"crisis"`
	Panic      float64 `json:"panic" yaml:"panic"`
	Correction float64 `json:"correction" yaml:"correction"`
}

// DefaultThresholds returns the stock strategy boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Crisis: 45.0, Panic: 30.0, Correction: 25.0}
}

// Ordered reports whether the triple satisfies Crisis > Panic > Correction.
func (t Thresholds) Ordered() bool {
	return t.Crisis > t.Panic && t.Panic > t.Correction
}
