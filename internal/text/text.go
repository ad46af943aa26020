package text

import (
	"context"
	"fmt"

	"github.com/ashfall-game/ashfall/internal/engine"
)

// offlineNarrator is a deterministic fallback used when no AI backend is
// configured. It keeps the session playable; it does not try to be clever.
type offlineNarrator struct{}

func NewOfflineNarrator() engine.Narrator { return &offlineNarrator{} }

func (o *offlineNarrator) Narrate(ctx context.Context, req engine.NarrationRequest) (engine.NarrationResult, error) {
	story := fmt.Sprintf(
		"You %s. The wasteland around %s takes little notice. Dust settles; the Geiger counter ticks on.\n\n*(offline narrator; set GEMINI_API_KEY for full narration)*",
		req.Action, req.Location)
	return engine.NarrationResult{StoryText: story, TimePassedMinutes: 10}, nil
}

// offlineStatus reports no changes, the extractor's valid empty response.
type offlineStatus struct{}

func NewOfflineStatus() engine.StatusExtractor { return &offlineStatus{} }

func (o *offlineStatus) ExtractStatus(ctx context.Context, req engine.StatusRequest) (engine.StatusUpdate, error) {
	return engine.StatusUpdate{}, nil
}
