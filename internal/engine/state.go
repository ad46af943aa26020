package engine

import (
	"fmt"
	"time"
)

// HistoryEntry is one player or narrator turn in the conversation.
type HistoryEntry struct {
	Role    Role     `yaml:"role" json:"role"`
	Text    string   `yaml:"text" json:"text"`
	Image   string   `yaml:"image,omitempty" json:"image,omitempty"`
	Sources []Source `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Source is a grounding citation attached to narrator output.
type Source struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// GameState is the session-scoped aggregate mutated once per completed turn.
type GameState struct {
	Player      *Actor         `yaml:"player" json:"player"`
	CurrentYear int            `yaml:"current_year" json:"currentYear"`
	Location    string         `yaml:"location" json:"location"`
	// ClockMinutes is the in-fiction time of day, minutes since midnight.
	ClockMinutes int            `yaml:"clock_minutes" json:"clockMinutes"`
	History      []HistoryEntry `yaml:"history" json:"history"`
	NPCs         []Actor        `yaml:"npcs" json:"npcs"`
	Quests       []Quest        `yaml:"quests" json:"quests"`
	Thinking     bool           `yaml:"-" json:"-"`
	Language     string         `yaml:"language" json:"language"`
	Settings     Settings       `yaml:"settings" json:"settings"`
	AP           int            `yaml:"ap" json:"ap"`
	APUpdatedAt  time.Time      `yaml:"ap_updated_at" json:"apUpdatedAt"`
	TurnCounter  int            `yaml:"turn_counter" json:"turnCounter"`
}

const (
	DefaultYear     = 2161
	DefaultLocation = "Vault 13 entrance"
	defaultClock    = 8 * 60 // 08:00
)

// NewGameState creates the session aggregate at character-creation time.
// AP and settings come from the session's persisted baseline.
func NewGameState(player *Actor, tier Tier, ap int, apUpdatedAt time.Time, settings Settings) *GameState {
	return &GameState{
		Player:       player,
		CurrentYear:  DefaultYear,
		Location:     DefaultLocation,
		ClockMinutes: defaultClock,
		Language:     "en",
		Settings:     NormalizeSettingsForTier(settings, tier),
		AP:           ap,
		APUpdatedAt:  apUpdatedAt,
	}
}

// AdvanceClock adds narrated minutes to the in-fiction clock, rolling over
// midnight without tracking the date.
func (g *GameState) AdvanceClock(minutes int) {
	if minutes < 0 {
		minutes = 0
	}
	g.ClockMinutes = (g.ClockMinutes + minutes) % (24 * 60)
}

// ClockString renders the in-fiction time as HH:MM.
func (g *GameState) ClockString() string {
	return fmt.Sprintf("%02d:%02d", g.ClockMinutes/60, g.ClockMinutes%60)
}

// TrimHistory bounds the conversation history to the retention configured in
// settings. -1 keeps everything; otherwise the oldest entries are dropped.
func (g *GameState) TrimHistory() {
	limit := g.Settings.HistoryRetention
	if limit < 0 || len(g.History) <= limit {
		return
	}
	g.History = append([]HistoryEntry{}, g.History[len(g.History)-limit:]...)
}

// Clone deep-copies the aggregate. Collaborator requests and renderers get
// clones so an in-flight turn never shares mutable data with them.
func (g *GameState) Clone() *GameState {
	cp := *g
	cp.Player = g.Player.Clone()
	cp.History = cloneHistory(g.History)
	cp.Quests = append([]Quest(nil), g.Quests...)
	cp.NPCs = cloneActors(g.NPCs)
	return &cp
}

func cloneActors(list []Actor) []Actor {
	if list == nil {
		return nil
	}
	cp := make([]Actor, len(list))
	for i := range list {
		cp[i] = *list[i].Clone()
	}
	return cp
}

func cloneHistory(h []HistoryEntry) []HistoryEntry {
	if h == nil {
		return nil
	}
	cp := make([]HistoryEntry, len(h))
	for i, e := range h {
		e.Sources = append([]Source(nil), e.Sources...)
		cp[i] = e
	}
	return cp
}

// AppendEntry appends one conversation turn.
func (g *GameState) AppendEntry(e HistoryEntry) {
	g.History = append(g.History, e)
}

// FindNPC returns the index of a known NPC by name, or -1.
func (g *GameState) FindNPC(name string) int {
	for i, n := range g.NPCs {
		if n.Name == name {
			return i
		}
	}
	return -1
}
