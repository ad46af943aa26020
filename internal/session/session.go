// Package session binds a logged-in or guest user to a tier and the AP and
// settings baseline that initializes the turn pipeline.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ashfall-game/ashfall/internal/engine"
	"github.com/ashfall-game/ashfall/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username is taken")
)

// Registry is the slice of the user store the session layer needs.
// *store.UserRepo satisfies it.
type Registry interface {
	Get(ctx context.Context, username string) (store.UserRecord, error)
	Create(ctx context.Context, rec store.UserRecord) (store.UserRecord, error)
	Exists(ctx context.Context, username string) (bool, error)
	SaveAPSettings(ctx context.Context, username string, ap int, apUpdatedAt time.Time, s engine.Settings) error
}

// Session is the runtime projection of a UserRecord (or an ephemeral guest)
// bound to one client instance.
type Session struct {
	Username    string
	Tier        engine.Tier
	Temporary   bool
	AP          int
	APUpdatedAt time.Time
	Settings    engine.Settings
}

// Guest builds an ephemeral session. It is never written to the registry.
func Guest(now time.Time) Session {
	p := engine.PolicyFor(engine.TierGuest)
	return Session{
		Username:    "guest",
		Tier:        engine.TierGuest,
		Temporary:   true,
		AP:          p.MaxAP,
		APUpdatedAt: now,
		Settings:    engine.DefaultSettings(engine.TierGuest),
	}
}

// Login authenticates against the registry and derives the session baseline:
// settings normalized for the stored tier and AP recovery credited for the
// time since the record was last written.
func Login(ctx context.Context, reg Registry, username, password string, now time.Time) (Session, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	rec, err := reg.Get(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.CredentialHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	p := engine.PolicyFor(rec.Tier)
	ap, updated := engine.SyncAPState(rec.AP, rec.APUpdatedAt, now, p.MaxAP, p.Recovery)
	if !p.Unlimited && ap > p.MaxAP {
		ap = p.MaxAP
	}
	return Session{
		Username:    rec.Username,
		Tier:        rec.Tier,
		AP:          ap,
		APUpdatedAt: updated,
		Settings:    engine.NormalizeSettingsForTier(rec.Settings, rec.Tier),
	}, nil
}

// Register creates a normal-tier account with a full AP baseline.
func Register(ctx context.Context, reg Registry, username, password string, now time.Time) (Session, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	taken, err := reg.Exists(ctx, username)
	if err != nil {
		return Session{}, err
	}
	if taken {
		return Session{}, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}
	p := engine.PolicyFor(engine.TierNormal)
	rec, err := reg.Create(ctx, store.UserRecord{
		Username:       username,
		CredentialHash: string(hash),
		Tier:           engine.TierNormal,
		AP:             p.MaxAP,
		APUpdatedAt:    now,
		Settings:       engine.DefaultSettings(engine.TierNormal),
	})
	if err != nil {
		return Session{}, err
	}
	return Session{
		Username:    rec.Username,
		Tier:        rec.Tier,
		AP:          rec.AP,
		APUpdatedAt: rec.APUpdatedAt,
		Settings:    rec.Settings,
	}, nil
}

// Persist writes the session's AP/settings back to its own registry row.
// Guests are temporary and never become UserRecords.
func (s Session) Persist(ctx context.Context, reg Registry, st *engine.GameState) error {
	if s.Temporary {
		return nil
	}
	return reg.SaveAPSettings(ctx, s.Username, st.AP, st.APUpdatedAt, st.Settings)
}
