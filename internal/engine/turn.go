package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is the pipeline's current position in the turn state machine.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseSubmitting        Phase = "submitting"
	PhaseAwaitingNarration Phase = "awaiting_narration"
	PhaseAwaitingStatus    Phase = "awaiting_status"
	PhaseAwaitingImage     Phase = "awaiting_image"
	PhaseCommitting        Phase = "committing"
)

// PersistFunc stores AP/settings/history after a committed mutation. Which
// fields actually hit durable storage is the persister's concern, per tier.
type PersistFunc func(*GameState) error

// Pipeline executes one player action end to end: gate, submit, narration,
// status extraction and merge, time advance, optional image, commit. At most
// one turn is in flight per session; the busy flag rejects, not queues.
//
// The mutex guards the state against concurrent readers: Submit runs on its
// own goroutine and mutates state only inside locked windows, collaborators
// receive clones, and renderers read through Snapshot.
type Pipeline struct {
	mu       sync.Mutex
	state    *GameState
	tier     Tier
	policy   TierPolicy
	narrator Narrator
	status   StatusExtractor
	imager   Imager
	persist  PersistFunc
	now      func() time.Time
	phase    Phase
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithPersist installs the commit-time persistence hook.
func WithPersist(fn PersistFunc) Option {
	return func(p *Pipeline) { p.persist = fn }
}

// WithImager installs the optional image collaborator.
func WithImager(im Imager) Option {
	return func(p *Pipeline) { p.imager = im }
}

func NewPipeline(state *GameState, tier Tier, narrator Narrator, status StatusExtractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		state:    state,
		tier:     tier,
		policy:   PolicyFor(tier),
		narrator: narrator,
		status:   status,
		now:      time.Now,
		phase:    PhaseIdle,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// State returns the live aggregate. Single-goroutine callers only; anything
// that may overlap an in-flight turn reads through Snapshot instead.
func (p *Pipeline) State() *GameState { return p.state }

// Snapshot returns a deep copy of the state, safe to render or inspect while
// a turn is in flight.
func (p *Pipeline) Snapshot() *GameState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// Apply runs a mutation on the live state under the pipeline lock and
// persists the result. For out-of-turn changes such as settings edits.
func (p *Pipeline) Apply(fn func(*GameState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.state)
	if p.persist != nil {
		if perr := p.persist(p.state); perr != nil {
			p.state.AppendEntry(HistoryEntry{Role: RoleNarrator, Text: saveFailText(p.state.Language, perr)})
		}
	}
}

// SyncAP re-derives AP recovery against the wall clock. Safe to call from a
// periodic timer while a turn is in flight: it only ever moves AP toward the
// ceiling and is a no-op at it.
func (p *Pipeline) SyncAP() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()
}

func (p *Pipeline) syncLocked() {
	if p.policy.Unlimited {
		return
	}
	p.state.AP, p.state.APUpdatedAt = SyncAPState(p.state.AP, p.state.APUpdatedAt, p.now(), p.policy.MaxAP, p.policy.Recovery)
}

// TurnResult reports what one submitted action produced.
type TurnResult struct {
	Entry         HistoryEntry
	RuleViolation bool
}

// Submit runs the full turn for one player action. On gate rejection the
// returned error satisfies IsInputRejection and nothing beyond the AP sync
// performed for the check is mutated. On narration failure the player's own
// input is already committed to history and AP spent at submission is not
// refunded: an attempted action costs the same as a narrated one.
func (p *Pipeline) Submit(ctx context.Context, input string) (*TurnResult, error) {
	input = strings.TrimSpace(input)

	// Gate
	p.mu.Lock()
	p.syncLocked()
	if p.state.Thinking {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	if input == "" {
		p.mu.Unlock()
		return nil, ErrEmptyInput
	}
	if !p.policy.Unlimited && p.state.AP <= 0 {
		minutes := MinutesUntilRecovery(p.state.APUpdatedAt, p.now(), p.policy.Recovery)
		p.mu.Unlock()
		return nil, &APDepletedError{MinutesRemaining: minutes}
	}

	// Submit
	p.phase = PhaseSubmitting
	p.state.Thinking = true
	p.state.AppendEntry(HistoryEntry{Role: RolePlayer, Text: input})
	if !p.policy.Unlimited {
		if p.state.AP >= p.policy.MaxAP {
			// Recovery windows start only once AP first drops below max.
			p.state.APUpdatedAt = p.now()
		}
		p.state.AP--
	}
	lang := p.state.Language
	narReq := NarrationRequest{
		Player:    p.state.Player.Clone(),
		History:   cloneHistory(p.state.History),
		Action:    input,
		Year:      p.state.CurrentYear,
		Location:  p.state.Location,
		Clock:     p.state.ClockString(),
		Quests:    append([]Quest(nil), p.state.Quests...),
		KnownNPCs: cloneActors(p.state.NPCs),
		Language:  lang,
	}
	p.phase = PhaseAwaitingNarration
	p.mu.Unlock()

	nar, err := p.narrator.Narrate(ctx, narReq)

	p.mu.Lock()
	if err != nil {
		defer p.mu.Unlock()
		return p.fail("narration", err)
	}
	if nar.RuleViolation != "" {
		// Player dictated an outcome, not an intent. No time passes, the
		// turn counter does not advance and status extraction is skipped.
		entry := HistoryEntry{Role: RoleNarrator, Text: "[Overseer] " + nar.RuleViolation}
		p.state.AppendEntry(entry)
		p.commit()
		p.mu.Unlock()
		return &TurnResult{Entry: entry, RuleViolation: true}, nil
	}

	// Status extraction: current snapshot plus the new narration only.
	statusReq := StatusRequest{
		Player:    p.state.Player.Clone(),
		Quests:    append([]Quest(nil), p.state.Quests...),
		KnownNPCs: cloneActors(p.state.NPCs),
		Year:      p.state.CurrentYear,
		Location:  p.state.Location,
		Clock:     p.state.ClockString(),
		Narration: nar.StoryText,
	}
	p.phase = PhaseAwaitingStatus
	p.mu.Unlock()

	update, statusErr := p.status.ExtractStatus(ctx, statusReq)

	p.mu.Lock()
	story := nar.StoryText
	if statusErr != nil {
		// The story already exists; losing it over a sheet-sync failure
		// would punish the player twice. Annotate and carry on.
		story += "\n\n" + statusSyncText(lang, statusErr)
	} else {
		for _, note := range ApplyStatusUpdate(p.state, update) {
			story += fmt.Sprintf("\n\n**%s**", note)
		}
	}

	// Advance in-fiction time.
	p.state.AdvanceClock(nar.TimePassedMinutes)

	// Image decision.
	entry := HistoryEntry{Role: RoleNarrator, Sources: nar.Sources}
	p.state.TurnCounter++
	cadence := p.state.Settings.ImageCadence
	if cadence < p.policy.MinImageCadence {
		cadence = p.policy.MinImageCadence
	}
	wantImage := p.imager != nil && nar.ImagePrompt != "" && p.state.TurnCounter%cadence == 0
	opts := ImageOptions{
		HighQuality: p.state.Settings.HighQualityImages,
		Tier:        p.tier,
	}
	if wantImage {
		p.phase = PhaseAwaitingImage
	}
	p.mu.Unlock()

	if wantImage {
		res := p.imager.GenerateImage(ctx, nar.ImagePrompt, opts)
		if res.Err != "" {
			story += "\n\n" + imageFailText(lang, res.Err)
		} else {
			entry.Image = res.URL
			entry.Sources = append(entry.Sources, res.Sources...)
		}
	}

	entry.Text = story
	p.mu.Lock()
	p.state.AppendEntry(entry)
	p.commit()
	p.mu.Unlock()
	return &TurnResult{Entry: entry}, nil
}

// fail appends a localized failure entry after the player's preserved input
// and returns the pipeline to idle. AP is not refunded. Lock held by caller.
func (p *Pipeline) fail(stage string, err error) (*TurnResult, error) {
	entry := HistoryEntry{Role: RoleNarrator, Text: failureText(p.state.Language, err)}
	p.state.AppendEntry(entry)
	p.commit()
	return nil, &CollaboratorError{Stage: stage, Err: err}
}

// commit clears the busy flag, trims history to the tier retention and runs
// the persistence hook. Every turn, successful or not, ends here. Lock held
// by caller.
func (p *Pipeline) commit() {
	p.phase = PhaseCommitting
	p.state.Thinking = false
	p.state.TrimHistory()
	if p.persist != nil {
		if perr := p.persist(p.state); perr != nil {
			// Persistence problems must not take the session down.
			p.state.AppendEntry(HistoryEntry{Role: RoleNarrator, Text: saveFailText(p.state.Language, perr)})
		}
	}
	p.phase = PhaseIdle
}
