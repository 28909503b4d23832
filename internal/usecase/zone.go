package usecase

import (
	"fmt"

	"VixWatch/internal/domain/models"
)

// calmFloor is intentionally fixed: crisis/panic/correction are user-tunable,
// the calm boundary is not.
const calmFloor = 12.0

// Position sizing per zone, as a fraction of available cash.
const (
	crisisSizing     = 0.40
	panicSizing      = 0.30
	correctionSizing = 0.30
)

// Classify maps a volatility reading to a severity zone and its user-facing
// message. Branches are evaluated in strict descending priority, so even a
// misordered threshold triple resolves to exactly one zone. Pure function,
// no side effects.
func Classify(vix float64, th models.Thresholds, cash float64) (models.Zone, string) {
	switch {
	case vix >= th.Crisis:
		return models.ZoneCrisis,
			fmt.Sprintf("☢️ CRISIS (VIX %.2f). Buy $%d!", vix, int(cash*crisisSizing))
	case vix >= th.Panic:
		return models.ZonePanic,
			fmt.Sprintf("🚨 PANIC (VIX %.2f). Buy $%d.", vix, int(cash*panicSizing))
	case vix >= th.Correction:
		return models.ZoneCorrection,
			fmt.Sprintf("⚠️ CORRECTION (VIX %.2f). Buy $%d.", vix, int(cash*correctionSizing))
	case vix <= calmFloor:
		return models.ZoneCalm,
			fmt.Sprintf("✅ CALM (VIX %.2f). Consider taking profits.", vix)
	default:
		return models.ZoneNeutral,
			fmt.Sprintf("Sleep mode. VIX is %.2f.", vix)
	}
}

// ShouldNotify reports whether a zone change warrants a fresh alert.
// Edge-triggered: only a transition into a new zone fires, and NEUTRAL never
// fires, including transitions into it. That suppresses both alert storms
// when the reading oscillates around the correction threshold and redundant
// "back to normal" notifications.
func ShouldNotify(newZone, lastNotified models.Zone) bool {
	return newZone != lastNotified && newZone != models.ZoneNeutral
}
