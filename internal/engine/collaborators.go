package engine

import "context"

// The pipeline talks to three narrow collaborator contracts. Transport and
// provider details live behind them (see internal/text).

// NarrationRequest carries the full player context for one action.
type NarrationRequest struct {
	Player    *Actor
	History   []HistoryEntry
	Action    string
	Year      int
	Location  string
	Clock     string
	Quests    []Quest
	KnownNPCs []Actor
	Language  string
}

// NarrationResult is the narrator's reply. When RuleViolation is set the
// other fields are ignorable: the player dictated an outcome instead of
// stating an intent.
type NarrationResult struct {
	StoryText         string   `json:"story"`
	RuleViolation     string   `json:"ruleViolation,omitempty"`
	TimePassedMinutes int      `json:"timePassedMinutes"`
	ImagePrompt       string   `json:"imagePrompt,omitempty"`
	Sources           []Source `json:"sources,omitempty"`
}

// StatusRequest hands the status extractor the current snapshot plus only
// the newest narration text, never the full history.
type StatusRequest struct {
	Player    *Actor
	Quests    []Quest
	KnownNPCs []Actor
	Year      int
	Location  string
	Clock     string
	Narration string
}

// StatusUpdate is the extractor's incremental delta. The zero value is a
// valid "no changes" response. UpdatedPlayer, when present, is the full
// corrected Actor and replaces the current one wholesale.
type StatusUpdate struct {
	UpdatedPlayer    *Actor  `json:"updatedPlayer,omitempty"`
	QuestUpdates     []Quest `json:"questUpdates,omitempty"`
	CompanionUpdates []Actor `json:"companionUpdates,omitempty"`
	NewNPC           *Actor  `json:"newNpc,omitempty"`
	Location         string  `json:"location,omitempty"`
	CurrentYear      int     `json:"currentYear,omitempty"`
}

// ImageOptions selects quality and carries the tier for provider-side limits.
type ImageOptions struct {
	HighQuality bool
	Tier        Tier
}

// ImageResult is never a fatal error: Err is an inline display string.
type ImageResult struct {
	URL     string
	Sources []Source
	Err     string
}

type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (NarrationResult, error)
}

type StatusExtractor interface {
	ExtractStatus(ctx context.Context, req StatusRequest) (StatusUpdate, error)
}

type Imager interface {
	GenerateImage(ctx context.Context, prompt string, opts ImageOptions) ImageResult
}
