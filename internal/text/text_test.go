package text

import (
	"context"
	"strings"
	"testing"

	"github.com/ashfall-game/ashfall/internal/engine"
)

func TestOfflineNarratorEchoesAction(t *testing.T) {
	res, err := NewOfflineNarrator().Narrate(context.Background(), engine.NarrationRequest{
		Action:   "scavenge the ruined pharmacy",
		Location: "Junktown",
	})
	if err != nil {
		t.Fatalf("offline narrator errored: %v", err)
	}
	if !strings.Contains(res.StoryText, "scavenge the ruined pharmacy") {
		t.Fatalf("story does not reference the action: %q", res.StoryText)
	}
	if res.TimePassedMinutes <= 0 {
		t.Fatalf("offline narration must still advance time, got %d", res.TimePassedMinutes)
	}
	if res.RuleViolation != "" {
		t.Fatal("offline narrator should never flag violations")
	}
}

func TestOfflineStatusReportsNoChanges(t *testing.T) {
	up, err := NewOfflineStatus().ExtractStatus(context.Background(), engine.StatusRequest{})
	if err != nil {
		t.Fatalf("offline status errored: %v", err)
	}
	if up.UpdatedPlayer != nil || len(up.QuestUpdates) != 0 {
		t.Fatal("offline status must be the empty update")
	}
}
