package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ashfall-game/ashfall/internal/engine"
	"github.com/ashfall-game/ashfall/internal/store"
)

type memRegistry struct {
	users map[string]store.UserRecord
	saves int
}

func newMemRegistry() *memRegistry {
	return &memRegistry{users: make(map[string]store.UserRecord)}
}

func (m *memRegistry) Get(ctx context.Context, username string) (store.UserRecord, error) {
	rec, ok := m.users[username]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (m *memRegistry) Create(ctx context.Context, rec store.UserRecord) (store.UserRecord, error) {
	m.users[rec.Username] = rec
	return rec, nil
}

func (m *memRegistry) Exists(ctx context.Context, username string) (bool, error) {
	_, ok := m.users[username]
	return ok, nil
}

func (m *memRegistry) SaveAPSettings(ctx context.Context, username string, ap int, apUpdatedAt time.Time, s engine.Settings) error {
	m.saves++
	rec := m.users[username]
	rec.AP = ap
	rec.APUpdatedAt = apUpdatedAt
	rec.Settings = s
	m.users[username] = rec
	return nil
}

func seedUser(t *testing.T, m *memRegistry, username, password string, tier engine.Tier, ap int, updated time.Time) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	m.users[username] = store.UserRecord{
		Username:       username,
		CredentialHash: string(hash),
		Tier:           tier,
		AP:             ap,
		APUpdatedAt:    updated,
		Settings:       engine.DefaultSettings(tier),
	}
}

func TestGuestIsTemporaryAndNeverPersisted(t *testing.T) {
	now := time.Now()
	reg := newMemRegistry()
	s := Guest(now)
	if !s.Temporary || s.Tier != engine.TierGuest {
		t.Fatalf("guest session wrong: %+v", s)
	}
	st := engine.NewGameState(nil, s.Tier, s.AP, s.APUpdatedAt, s.Settings)
	if err := s.Persist(context.Background(), reg, st); err != nil {
		t.Fatalf("guest persist should be a silent no-op: %v", err)
	}
	if reg.saves != 0 || len(reg.users) != 0 {
		t.Fatalf("guest must never reach the registry")
	}
}

func TestLoginCreditsOfflineRecovery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := newMemRegistry()
	seedUser(t, reg, "max", "hunter2", engine.TierNormal, 0, now.Add(-61*time.Minute))
	s, err := Login(context.Background(), reg, "Max", "hunter2", now)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.AP != 12 {
		t.Fatalf("expected 2 intervals credited on login, got %d AP", s.AP)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	now := time.Now()
	reg := newMemRegistry()
	seedUser(t, reg, "max", "hunter2", engine.TierNormal, 10, now)
	if _, err := Login(context.Background(), reg, "max", "wrong", now); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := Login(context.Background(), reg, "nobody", "x", now); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestRegisterDefaults(t *testing.T) {
	now := time.Now()
	reg := newMemRegistry()
	s, err := Register(context.Background(), reg, "Newcomer", "pw", now)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if s.Tier != engine.TierNormal {
		t.Fatalf("new accounts are normal tier, got %s", s.Tier)
	}
	if s.AP != engine.PolicyFor(engine.TierNormal).MaxAP {
		t.Fatalf("new accounts start at full AP, got %d", s.AP)
	}
	if s.Username != "newcomer" {
		t.Fatalf("username should be lowercased, got %q", s.Username)
	}
	if _, err := Register(context.Background(), reg, "newcomer", "pw", now); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate register must fail, got %v", err)
	}
}

func TestPersistWritesOwnRowOnly(t *testing.T) {
	now := time.Now()
	reg := newMemRegistry()
	seedUser(t, reg, "max", "hunter2", engine.TierNormal, 60, now)
	s, err := Login(context.Background(), reg, "max", "hunter2", now)
	if err != nil {
		t.Fatal(err)
	}
	st := engine.NewGameState(engine.NewPlayer("Max", "male", 27), s.Tier, 41, now, s.Settings)
	if err := s.Persist(context.Background(), reg, st); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if reg.users["max"].AP != 41 {
		t.Fatalf("AP not written back: %d", reg.users["max"].AP)
	}
}
