// Package save owns the on-disk snapshot of a session's GameState. Saved
// shapes evolve across releases; loading is tolerant, field by field, rather
// than versioned by an explicit schema number.
package save

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ashfall-game/ashfall/internal/engine"
)

// Dir is the snapshot directory, overridable via config before first use.
var Dir = ".ashfall"

func path(username string) string {
	return filepath.Join(Dir, username+".yaml")
}

// Write persists the snapshot for a username. Guest sessions should pass a
// synthetic name; the registry layer, not this one, decides what is durable.
func Write(username string, st *engine.GameState) error {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path(username), data, 0o644)
}

// Delete removes a snapshot, used when a new character replaces the old one.
func Delete(username string) error {
	err := os.Remove(path(username))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load reads and migrates a snapshot forward to the current shape under the
// current tier. Returns (nil, "") when no snapshot exists. A corrupt blob is
// treated as absent, with a non-fatal notice for display.
func Load(username string, tier engine.Tier, now time.Time) (*engine.GameState, string) {
	data, err := os.ReadFile(path(username))
	if err != nil {
		return nil, ""
	}
	var st engine.GameState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, "Saved game could not be read and was discarded; starting fresh."
	}
	Migrate(&st, tier, now)
	return &st, ""
}

// Migrate fills missing fields with current defaults, re-normalizes settings
// through the tier policy, re-clamps AP to the current tier ceiling and
// credits AP recovery for the offline time since the save.
func Migrate(st *engine.GameState, tier engine.Tier, now time.Time) {
	p := engine.PolicyFor(tier)
	if st.CurrentYear == 0 {
		st.CurrentYear = engine.DefaultYear
	}
	if st.Location == "" {
		st.Location = engine.DefaultLocation
	}
	if st.Language == "" {
		st.Language = "en"
	}
	if st.Player != nil {
		st.Player.Normalize()
	}
	for i := range st.NPCs {
		st.NPCs[i].Normalize()
	}
	// Tier minimums retroactively apply to old saves.
	st.Settings = engine.NormalizeSettingsForTier(st.Settings, tier)
	// A save written under a wider ceiling must not stay over it.
	if !p.Unlimited && st.AP > p.MaxAP {
		st.AP = p.MaxAP
	}
	if st.AP < 0 {
		st.AP = 0
	}
	st.AP, st.APUpdatedAt = engine.SyncAPState(st.AP, st.APUpdatedAt, now, p.MaxAP, p.Recovery)
	st.TrimHistory()
	st.Thinking = false
}
