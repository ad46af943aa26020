package engine

import "fmt"

// ApplyStatusUpdate is the reducer folding one extractor delta into the game
// state. Per-field semantics: the player Actor, when present, replaces the
// current one wholesale (the extractor returns the full corrected Actor);
// quests merge by id then name; companions and the new NPC merge into the
// known-NPC list by name; location and year relocate when set.
//
// Returns annotations to append to the displayed story text (one per quest
// completed by this merge).
func ApplyStatusUpdate(g *GameState, up StatusUpdate) []string {
	var notes []string
	if up.UpdatedPlayer != nil {
		p := *up.UpdatedPlayer
		p.Normalize()
		if g.Player != nil && p.AvatarURL == "" {
			p.AvatarURL = g.Player.AvatarURL
		}
		g.Player = &p
	}
	if len(up.QuestUpdates) > 0 {
		merged, finished := MergeQuests(g.Quests, up.QuestUpdates)
		g.Quests = merged
		for _, name := range finished {
			notes = append(notes, fmt.Sprintf("Quest finished: %s", name))
		}
	}
	for _, c := range up.CompanionUpdates {
		c.Companion = true
		c.Normalize()
		upsertNPC(g, c)
	}
	if up.NewNPC != nil && up.NewNPC.Name != "" {
		n := *up.NewNPC
		n.Normalize()
		upsertNPC(g, n)
	}
	if up.Location != "" {
		g.Location = up.Location
	}
	if up.CurrentYear > 0 {
		g.CurrentYear = up.CurrentYear
	}
	return notes
}

func upsertNPC(g *GameState, a Actor) {
	if i := g.FindNPC(a.Name); i >= 0 {
		// Preserve an existing avatar across wholesale replacement.
		if a.AvatarURL == "" {
			a.AvatarURL = g.NPCs[i].AvatarURL
		}
		g.NPCs[i] = a
		return
	}
	g.NPCs = append(g.NPCs, a)
}
