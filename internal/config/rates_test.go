package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadPricing_EmptyPathReturnsBuiltInTable(t *testing.T) {
	cfg, err := LoadPricing("", nil)
	if err != nil {
		t.Fatalf("LoadPricing: %v", err)
	}
	if !cfg.BaseFare.Equal(decimal.RequireFromString("8.50")) {
		t.Fatalf("BaseFare=%s, want 8.50", cfg.BaseFare)
	}
}

func TestLoadPricing_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	content := []byte(`
base_fare: "9.00"
peak_multiplier: "1.2"
evening_peak: [15, 18]
vehicle_features:
  - id: wheelchair-ramp
    name: Wheelchair ramp
    surcharge: "6.00"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write rates: %v", err)
	}

	cfg, err := LoadPricing(path, nil)
	if err != nil {
		t.Fatalf("LoadPricing: %v", err)
	}

	if !cfg.BaseFare.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("BaseFare=%s, want 9.00", cfg.BaseFare)
	}
	if !cfg.PeakMultiplier.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("PeakMultiplier=%s, want 1.2", cfg.PeakMultiplier)
	}
	if cfg.EveningPeak.Start != 15 || cfg.EveningPeak.End != 18 {
		t.Fatalf("EveningPeak=%+v, want [15,18)", cfg.EveningPeak)
	}
	if cfg.MorningPeak.Start != 6 || cfg.MorningPeak.End != 9 {
		t.Fatalf("MorningPeak=%+v, want built-in [6,9)", cfg.MorningPeak)
	}
	if len(cfg.VehicleFeatures) != 1 || !cfg.VehicleFeatures[0].Surcharge.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("unexpected features: %+v", cfg.VehicleFeatures)
	}
	if !cfg.DistanceRatePerMile.Equal(decimal.RequireFromString("2.20")) {
		t.Fatalf("DistanceRatePerMile=%s, want built-in 2.20", cfg.DistanceRatePerMile)
	}
}

func TestLoadPricing_RejectsInvalidTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte("peak_multiplier: \"0.8\"\n"), 0o600); err != nil {
		t.Fatalf("write rates: %v", err)
	}

	if _, err := LoadPricing(path, nil); err == nil {
		t.Fatalf("expected validation error for peak multiplier below 1")
	}
}
