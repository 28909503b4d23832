package usecase

import (
	"strings"
	"testing"

	"VixWatch/internal/domain/models"
)

func TestClassifyZones(t *testing.T) {
	th := models.DefaultThresholds()

	cases := []struct {
		vix  float64
		want models.Zone
	}{
		{50.0, models.ZoneCrisis},
		{45.0, models.ZoneCrisis},
		{32.5, models.ZonePanic},
		{30.0, models.ZonePanic},
		{25.0, models.ZoneCorrection},
		{20.0, models.ZoneNeutral},
		{12.0, models.ZoneCalm},
		{11.0, models.ZoneCalm},
	}
	for _, c := range cases {
		got, _ := Classify(c.vix, th, 10000)
		if got != c.want {
			t.Fatalf("vix %.1f: got %v want %v", c.vix, got, c.want)
		}
	}
}

func TestClassifySizing(t *testing.T) {
	th := models.DefaultThresholds()

	_, msg := Classify(32.5, th, 10000)
	if !strings.Contains(msg, "$3000") {
		t.Fatalf("panic sizing: got %q", msg)
	}

	_, msg = Classify(50.0, th, 10000)
	if !strings.Contains(msg, "$4000") {
		t.Fatalf("crisis sizing: got %q", msg)
	}

	// Integer truncation, never rounding up.
	_, msg = Classify(26.0, th, 9999)
	if !strings.Contains(msg, "$2999") {
		t.Fatalf("correction sizing: got %q", msg)
	}
}

func TestClassifyMisorderedThresholds(t *testing.T) {
	// Descending priority makes even a misordered triple resolve to exactly
	// one zone: crisis wins because it is checked first.
	th := models.Thresholds{Crisis: 20, Panic: 30, Correction: 25}
	got, _ := Classify(22.0, th, 10000)
	if got != models.ZoneCrisis {
		t.Fatalf("got %v want CRISIS", got)
	}
}

func TestShouldNotify(t *testing.T) {
	cases := []struct {
		newZone, last models.Zone
		want          bool
	}{
		{models.ZonePanic, models.ZoneNeutral, true},
		{models.ZonePanic, models.ZonePanic, false},
		{models.ZoneCrisis, models.ZonePanic, true},
		{models.ZonePanic, models.ZoneCrisis, true},
		{models.ZoneNeutral, models.ZonePanic, false},
		{models.ZoneNeutral, models.ZoneNeutral, false},
		{models.ZoneCalm, models.ZoneNeutral, true},
	}
	for _, c := range cases {
		if got := ShouldNotify(c.newZone, c.last); got != c.want {
			t.Fatalf("new=%v last=%v: got %v want %v", c.newZone, c.last, got, c.want)
		}
	}
}

func TestComputeChange(t *testing.T) {
	if got := models.ComputeChange(110, 100); got != 10.0 {
		t.Fatalf("got %v want 10.0", got)
	}
	if got := models.ComputeChange(110, 0); got != 0.0 {
		t.Fatalf("missing prior close: got %v want 0.0", got)
	}
}
