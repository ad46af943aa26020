package engine

import (
	"strings"
	"testing"
	"time"
)

func testState() *GameState {
	player := NewPlayer("Max", "male", 27)
	st := NewGameState(player, TierNormal, 60, time.Now(), DefaultSettings(TierNormal))
	st.Quests = []Quest{
		{ID: "q1", Name: "Find the water chip", Objective: "Locate a replacement chip.", Status: QuestActive},
	}
	st.NPCs = []Actor{{Name: "Killian", Faction: "Junktown", Health: 40, MaxHealth: 40}}
	return st
}

func TestMergeQuestCompletionAnnotatedOnce(t *testing.T) {
	existing := []Quest{{ID: "q1", Name: "Find the water chip", Status: QuestActive}}
	update := []Quest{{ID: "q1", Status: QuestCompleted}}
	merged, finished := MergeQuests(existing, update)
	if merged[0].Status != QuestCompleted {
		t.Fatalf("quest should complete, got %s", merged[0].Status)
	}
	if len(finished) != 1 || finished[0] != "Find the water chip" {
		t.Fatalf("expected exactly one finished annotation, got %v", finished)
	}
	// A repeated completed update must not re-announce.
	merged, finished = MergeQuests(merged, update)
	if len(finished) != 0 {
		t.Fatalf("re-completing must not annotate again: %v", finished)
	}
	if merged[0].Status != QuestCompleted {
		t.Fatalf("status regressed: %s", merged[0].Status)
	}
}

func TestMergeQuestTerminalNotReverted(t *testing.T) {
	existing := []Quest{{ID: "q1", Name: "Rescue Tandi", Status: QuestFailed}}
	merged, _ := MergeQuests(existing, []Quest{{ID: "q1", Status: QuestActive}})
	if merged[0].Status != QuestFailed {
		t.Fatalf("terminal status silently reverted to %s", merged[0].Status)
	}
}

func TestMergeQuestMatchByNameAndAppend(t *testing.T) {
	existing := []Quest{{ID: "q1", Name: "Find the water chip", Status: QuestActive}}
	updates := []Quest{
		{Name: "Find the water chip", Status: QuestCompleted}, // matches by name
		{Name: "Stop the Unity", Objective: "New threat.", Status: QuestActive},
	}
	merged, finished := MergeQuests(existing, updates)
	if len(merged) != 2 {
		t.Fatalf("expected append of unmatched quest, got %d quests", len(merged))
	}
	if len(finished) != 1 {
		t.Fatalf("name-matched completion missing: %v", finished)
	}
	if merged[1].ID != "Stop the Unity" {
		t.Fatalf("appended quest should fall back to name as id, got %q", merged[1].ID)
	}
}

func TestQuestsNeverDeleted(t *testing.T) {
	existing := []Quest{
		{ID: "q1", Status: QuestActive},
		{ID: "q2", Status: QuestCompleted},
	}
	merged, _ := MergeQuests(existing, []Quest{{ID: "q1", Status: QuestFailed}})
	if len(merged) != 2 {
		t.Fatalf("merge must never drop quests, got %d", len(merged))
	}
}

func TestApplyEmptyUpdateIsNoOp(t *testing.T) {
	st := testState()
	questsBefore := len(st.Quests)
	npcsBefore := len(st.NPCs)
	healthBefore := st.Player.Health

	notes := ApplyStatusUpdate(st, StatusUpdate{})
	if len(notes) != 0 {
		t.Fatalf("empty update produced annotations: %v", notes)
	}
	if len(st.Quests) != questsBefore || len(st.NPCs) != npcsBefore || st.Player.Health != healthBefore {
		t.Fatalf("empty update mutated state")
	}
}

func TestApplyUpdateReplacesPlayerWholesale(t *testing.T) {
	st := testState()
	st.Player.AvatarURL = "file://avatar.png"
	updated := *st.Player
	updated.Health = 150 // over max, must clamp
	updated.Caps = 120
	updated.Inventory = []Item{
		{Name: "Stimpak", Type: ItemAid, Count: 0, IsConsumable: true}, // dropped
		{Name: "10mm Pistol", Type: ItemWeapon, Count: 1},
	}
	ApplyStatusUpdate(st, StatusUpdate{UpdatedPlayer: &updated})
	if st.Player.Health != st.Player.MaxHealth {
		t.Fatalf("health not clamped to max: %d", st.Player.Health)
	}
	if len(st.Player.Inventory) != 1 || st.Player.Inventory[0].Name != "10mm Pistol" {
		t.Fatalf("zero-count item survived merge: %+v", st.Player.Inventory)
	}
	if st.Player.Caps != 120 {
		t.Fatalf("caps not replaced wholesale: %d", st.Player.Caps)
	}
	if st.Player.AvatarURL != "file://avatar.png" {
		t.Fatalf("avatar lost across wholesale replace")
	}
}

func TestApplyUpdateCompanionsAndNPC(t *testing.T) {
	st := testState()
	ApplyStatusUpdate(st, StatusUpdate{
		CompanionUpdates: []Actor{{Name: "Dogmeat", Health: 30, MaxHealth: 30}},
		NewNPC:           &Actor{Name: "Killian", Health: 25, MaxHealth: 40},
	})
	if len(st.NPCs) != 2 {
		t.Fatalf("expected companion appended and NPC updated in place, got %d NPCs", len(st.NPCs))
	}
	if i := st.FindNPC("Dogmeat"); i < 0 || !st.NPCs[i].Companion {
		t.Fatalf("companion flag not set")
	}
	if i := st.FindNPC("Killian"); st.NPCs[i].Health != 25 {
		t.Fatalf("known NPC not replaced, health=%d", st.NPCs[i].Health)
	}
}

func TestApplyUpdateRelocation(t *testing.T) {
	st := testState()
	ApplyStatusUpdate(st, StatusUpdate{Location: "Junktown", CurrentYear: 2162})
	if st.Location != "Junktown" || st.CurrentYear != 2162 {
		t.Fatalf("relocation not applied: %s %d", st.Location, st.CurrentYear)
	}
}

func TestFinishedQuestNoteFormat(t *testing.T) {
	st := testState()
	notes := ApplyStatusUpdate(st, StatusUpdate{
		QuestUpdates: []Quest{{ID: "q1", Status: QuestCompleted}},
	})
	if len(notes) != 1 || !strings.Contains(notes[0], "Find the water chip") {
		t.Fatalf("expected a finished-quest note naming the quest, got %v", notes)
	}
}
