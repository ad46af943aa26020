package engine

import "time"

// TierPolicy resolves the resource ceilings and feature gates for one access
// tier. Values live in a single static table so cost checks, UI limits and
// settings normalization all read the same source of truth.
type TierPolicy struct {
	Tier Tier
	// MaxAP is the AP ceiling. Ignored when Unlimited.
	MaxAP int
	// Unlimited tiers never decrement AP and are never blocked by it.
	Unlimited bool
	// MinImageCadence is the smallest allowed number of turns between
	// generated scene images.
	MinImageCadence     int
	DefaultImageCadence int
	// HistoryRetention bounds persisted conversation history. -1 = unlimited.
	HistoryRetention int
	// Recovery is nil for tiers that do not regenerate AP.
	Recovery *RecoveryRule
}

var tierPolicies = map[Tier]TierPolicy{
	TierAdmin: {
		Tier:                TierAdmin,
		MaxAP:               9999,
		Unlimited:           true,
		MinImageCadence:     1,
		DefaultImageCadence: 1,
		HistoryRetention:    -1,
		Recovery:            nil,
	},
	TierNormal: {
		Tier:                TierNormal,
		MaxAP:               60,
		MinImageCadence:     3,
		DefaultImageCadence: 5,
		HistoryRetention:    40,
		Recovery:            &RecoveryRule{Amount: 6, Interval: 30 * time.Minute},
	},
	TierGuest: {
		Tier:                TierGuest,
		MaxAP:               10,
		MinImageCadence:     10,
		DefaultImageCadence: 10,
		HistoryRetention:    10,
		Recovery:            nil,
	},
}

// PolicyFor returns the policy table entry for a tier. Unrecognized tiers
// fail closed to guest.
func PolicyFor(t Tier) TierPolicy {
	if p, ok := tierPolicies[t]; ok {
		return p
	}
	return tierPolicies[TierGuest]
}

// Settings holds the player-adjustable knobs the tier policy constrains.
type Settings struct {
	ImageCadence      int    `yaml:"image_cadence" json:"imageCadence"`
	HighQualityImages bool   `yaml:"high_quality_images" json:"highQualityImages"`
	Provider          string `yaml:"provider" json:"provider"`
	Model             string `yaml:"model" json:"model"`
	HistoryRetention  int    `yaml:"history_retention" json:"historyRetention"`
}

// DefaultSettings returns a tier's baseline settings.
func DefaultSettings(t Tier) Settings {
	p := PolicyFor(t)
	return Settings{
		ImageCadence:     p.DefaultImageCadence,
		Provider:         "gemini",
		Model:            "gemini-2.5-flash",
		HistoryRetention: p.HistoryRetention,
	}
}

// NormalizeSettingsForTier clamps a settings object into the tier's bounds:
// image cadence at least the tier minimum, history retention coerced to a
// valid integer (-1 unlimited, anything below -1 collapses to -1, otherwise
// at least 1). Idempotent.
func NormalizeSettingsForTier(s Settings, t Tier) Settings {
	p := PolicyFor(t)
	if s.ImageCadence < p.MinImageCadence {
		s.ImageCadence = p.MinImageCadence
	}
	switch {
	case s.HistoryRetention < -1:
		s.HistoryRetention = -1
	case s.HistoryRetention == -1:
		// unlimited, keep
	case s.HistoryRetention < 1:
		s.HistoryRetention = 1
	}
	// A tier with bounded retention caps unlimited requests at its own limit.
	if p.HistoryRetention != -1 && (s.HistoryRetention == -1 || s.HistoryRetention > p.HistoryRetention) {
		s.HistoryRetention = p.HistoryRetention
	}
	if s.Provider == "" || s.Model == "" {
		def := DefaultSettings(t)
		if s.Provider == "" {
			s.Provider = def.Provider
		}
		if s.Model == "" {
			s.Model = def.Model
		}
	}
	return s
}
