package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/o.rides/internal/fare"
)

// rateFile is the on-disk shape of a rate table. Amounts are strings so
// they parse into exact decimals.
type rateFile struct {
	BaseFare            string  `yaml:"base_fare"`
	DistanceRatePerMile string  `yaml:"distance_rate_per_mile"`
	PeakMultiplier      string  `yaml:"peak_multiplier"`
	MorningPeak         *[2]int `yaml:"morning_peak"`
	EveningPeak         *[2]int `yaml:"evening_peak"`
	VehicleFeatures     []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Surcharge   string `yaml:"surcharge"`
	} `yaml:"vehicle_features"`
	SupportWorkerTiers []struct {
		Count       int    `yaml:"count"`
		HourlyRate  string `yaml:"hourly_rate"`
		Description string `yaml:"description"`
	} `yaml:"support_worker_tiers"`
}

// LoadPricing returns the built-in rate table overlaid with the YAML file
// at path. An empty path or a missing file yields the built-in table.
// Lists present in the file replace the built-in lists wholesale.
func LoadPricing(path string, loc *time.Location) (fare.PricingConfig, error) {
	cfg := fare.DefaultConfig()
	cfg.Location = loc
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return fare.PricingConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	var rf rateFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fare.PricingConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := applyRateFile(&cfg, rf); err != nil {
		return fare.PricingConfig{}, fmt.Errorf("rates %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return fare.PricingConfig{}, fmt.Errorf("rates %s: %w", path, err)
	}
	return cfg, nil
}

func applyRateFile(cfg *fare.PricingConfig, rf rateFile) error {
	var err error
	if cfg.BaseFare, err = overrideAmount(cfg.BaseFare, rf.BaseFare, "base_fare"); err != nil {
		return err
	}
	if cfg.DistanceRatePerMile, err = overrideAmount(cfg.DistanceRatePerMile, rf.DistanceRatePerMile, "distance_rate_per_mile"); err != nil {
		return err
	}
	if cfg.PeakMultiplier, err = overrideAmount(cfg.PeakMultiplier, rf.PeakMultiplier, "peak_multiplier"); err != nil {
		return err
	}
	if rf.MorningPeak != nil {
		cfg.MorningPeak = fare.HourWindow{Start: rf.MorningPeak[0], End: rf.MorningPeak[1]}
	}
	if rf.EveningPeak != nil {
		cfg.EveningPeak = fare.HourWindow{Start: rf.EveningPeak[0], End: rf.EveningPeak[1]}
	}

	if len(rf.VehicleFeatures) > 0 {
		features := make([]fare.VehicleFeature, 0, len(rf.VehicleFeatures))
		for _, f := range rf.VehicleFeatures {
			surcharge, err := decimal.NewFromString(f.Surcharge)
			if err != nil {
				return fmt.Errorf("vehicle feature %q surcharge: %w", f.ID, err)
			}
			features = append(features, fare.VehicleFeature{ID: f.ID, Name: f.Name, Description: f.Description, Surcharge: surcharge})
		}
		cfg.VehicleFeatures = features
	}

	if len(rf.SupportWorkerTiers) > 0 {
		tiers := make([]fare.SupportWorkerTier, 0, len(rf.SupportWorkerTiers))
		for _, tier := range rf.SupportWorkerTiers {
			rate, err := decimal.NewFromString(tier.HourlyRate)
			if err != nil {
				return fmt.Errorf("support worker tier %d hourly_rate: %w", tier.Count, err)
			}
			tiers = append(tiers, fare.SupportWorkerTier{Count: tier.Count, HourlyRate: rate, Description: tier.Description})
		}
		cfg.SupportWorkerTiers = tiers
	}

	return nil
}

func overrideAmount(current decimal.Decimal, raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return current, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
