package save

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashfall-game/ashfall/internal/engine"
)

func useTempDir(t *testing.T) {
	t.Helper()
	old := Dir
	Dir = t.TempDir()
	t.Cleanup(func() { Dir = old })
}

func TestWriteLoadRoundTrip(t *testing.T) {
	useTempDir(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	st := engine.NewGameState(engine.NewPlayer("Max", "male", 27), engine.TierNormal, 42, now, engine.DefaultSettings(engine.TierNormal))
	st.Quests = []engine.Quest{{ID: "q1", Name: "Find the water chip", Status: engine.QuestActive}}
	st.AppendEntry(engine.HistoryEntry{Role: engine.RolePlayer, Text: "look around"})
	if err := Write("max", st); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, notice := Load("max", engine.TierNormal, now)
	if notice != "" {
		t.Fatalf("unexpected notice: %s", notice)
	}
	if loaded == nil || loaded.Player == nil || loaded.Player.Name != "Max" {
		t.Fatalf("player lost in round trip: %+v", loaded)
	}
	if len(loaded.Quests) != 1 || loaded.Quests[0].ID != "q1" {
		t.Fatalf("quests lost: %+v", loaded.Quests)
	}
	if loaded.AP != 42 {
		t.Fatalf("AP changed without elapsed time: %d", loaded.AP)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	useTempDir(t)
	st, notice := Load("nobody", engine.TierNormal, time.Now())
	if st != nil || notice != "" {
		t.Fatalf("missing snapshot should be (nil, empty), got %+v %q", st, notice)
	}
}

func TestLoadCorruptSnapshotFallsBack(t *testing.T) {
	useTempDir(t)
	if err := os.WriteFile(filepath.Join(Dir, "max.yaml"), []byte("\tnot: [yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, notice := Load("max", engine.TierNormal, time.Now())
	if st != nil {
		t.Fatalf("corrupt snapshot must be treated as absent")
	}
	if notice == "" {
		t.Fatalf("corruption should surface a non-fatal notice")
	}
}

func TestMigrateFillsDefaultsAndReclamps(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	// An old admin-era save loaded under a normal tier: AP over ceiling,
	// cadence below minimum, missing language/year.
	st := &engine.GameState{
		AP:          500,
		APUpdatedAt: now.Add(-time.Hour),
		Settings:    engine.Settings{ImageCadence: 1, HistoryRetention: -1},
	}
	Migrate(st, engine.TierNormal, now)
	p := engine.PolicyFor(engine.TierNormal)
	if st.AP != p.MaxAP {
		t.Fatalf("AP not re-clamped to current tier ceiling: %d", st.AP)
	}
	if st.Settings.ImageCadence != p.MinImageCadence {
		t.Fatalf("cadence not re-normalized: %d", st.Settings.ImageCadence)
	}
	if st.CurrentYear != engine.DefaultYear || st.Language != "en" {
		t.Fatalf("defaults not filled: year=%d lang=%q", st.CurrentYear, st.Language)
	}
	if st.Thinking {
		t.Fatalf("busy flag must not survive a load")
	}
}

func TestMigrateCreditsOfflineRecovery(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	st := &engine.GameState{
		AP:          0,
		APUpdatedAt: now.Add(-65 * time.Minute),
		Settings:    engine.DefaultSettings(engine.TierNormal),
	}
	Migrate(st, engine.TierNormal, now)
	// Two whole 30-minute intervals at 6 AP each.
	if st.AP != 12 {
		t.Fatalf("offline recovery not credited: %d", st.AP)
	}
	want := now.Add(-5 * time.Minute)
	if !st.APUpdatedAt.Equal(want) {
		t.Fatalf("timestamp should advance by whole intervals: %v", st.APUpdatedAt)
	}
}
