package engine

import "testing"

func TestPolicyForUnknownTierFailsClosed(t *testing.T) {
	p := PolicyFor(Tier("superuser"))
	if p.Tier != TierGuest {
		t.Fatalf("unknown tier must resolve to guest, got %s", p.Tier)
	}
	if ParseTier("root") != TierGuest {
		t.Fatalf("ParseTier must fail closed to guest")
	}
}

func TestAdminPolicyPrivileges(t *testing.T) {
	p := PolicyFor(TierAdmin)
	if !p.Unlimited {
		t.Fatalf("admin must be unlimited")
	}
	if p.MinImageCadence != 1 {
		t.Fatalf("admin min cadence should be 1, got %d", p.MinImageCadence)
	}
	if p.HistoryRetention != -1 {
		t.Fatalf("admin retention should be unlimited, got %d", p.HistoryRetention)
	}
	if p.Recovery != nil {
		t.Fatalf("unlimited tier should carry no recovery rule")
	}
}

func TestNormalizeSettingsClampsCadence(t *testing.T) {
	s := Settings{ImageCadence: 1, HistoryRetention: 20}
	out := NormalizeSettingsForTier(s, TierNormal)
	if out.ImageCadence != PolicyFor(TierNormal).MinImageCadence {
		t.Fatalf("cadence below tier minimum must clamp up, got %d", out.ImageCadence)
	}
}

func TestNormalizeSettingsRetentionCoercion(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-5, -1},  // below -1 collapses to unlimited marker...
		{-1, -1},  // ...then tier bound applies below
		{0, 1},
		{7, 7},
		{999, 40}, // tier cap
	}
	for _, c := range cases {
		out := NormalizeSettingsForTier(Settings{ImageCadence: 5, HistoryRetention: c.in}, TierNormal)
		want := c.want
		// Normal tier is bounded, so the unlimited marker caps at 40.
		if want == -1 {
			want = PolicyFor(TierNormal).HistoryRetention
		}
		if out.HistoryRetention != want {
			t.Fatalf("retention %d: got %d want %d", c.in, out.HistoryRetention, want)
		}
	}
	// Admin keeps unlimited.
	out := NormalizeSettingsForTier(Settings{ImageCadence: 1, HistoryRetention: -1}, TierAdmin)
	if out.HistoryRetention != -1 {
		t.Fatalf("admin unlimited retention lost: %d", out.HistoryRetention)
	}
}

func TestNormalizeSettingsIdempotent(t *testing.T) {
	for _, tier := range AllTiers {
		in := Settings{ImageCadence: 0, HistoryRetention: -7}
		once := NormalizeSettingsForTier(in, tier)
		twice := NormalizeSettingsForTier(once, tier)
		if once != twice {
			t.Fatalf("%s: normalization not idempotent: %+v vs %+v", tier, once, twice)
		}
	}
}
