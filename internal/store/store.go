package store

import (
	"context"
	"database/sql"
	"encoding/json"
	errs "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ashfall-game/ashfall/internal/engine"
	"github.com/ashfall-game/ashfall/internal/util"
)

var (
	ErrNoChange = errs.New("no change")
	ErrNotFound = errs.New("not found")
)

// DB wraps gorm.DB for repositories and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error   { return d.sql.Close() }
func (d *DB) Gorm() *gorm.DB { return d.gorm }

// Open connects to the registry database per config.
func Open(ctx context.Context, cfg util.Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, err
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// UserRecord is a user's durable identity in the shared registry.
// Guest sessions are never written here.
type UserRecord struct {
	ID             uuid.UUID
	Username       string
	CredentialHash string
	Tier           engine.Tier
	AP             int
	APUpdatedAt    time.Time
	Settings       engine.Settings
}

// UserRepo owns the users table, keyed by username.
type UserRepo struct{ db *DB }

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, rec UserRecord) (UserRecord, error) {
	rec.ID = uuid.New()
	if rec.APUpdatedAt.IsZero() {
		rec.APUpdatedAt = time.Now()
	}
	settings, _ := json.Marshal(rec.Settings)
	err := r.db.gorm.WithContext(ctx).Exec(
		`INSERT INTO users(id, username, credential_hash, tier, ap, ap_updated_at, settings) VALUES (?,?,?,?,?,?,?)`,
		rec.ID, rec.Username, rec.CredentialHash, string(rec.Tier), rec.AP, rec.APUpdatedAt, settings,
	).Error
	if err != nil {
		return UserRecord{}, wrap(err, "create user")
	}
	return rec, nil
}

func (r *UserRepo) Get(ctx context.Context, username string) (UserRecord, error) {
	row := r.db.gorm.WithContext(ctx).Raw(
		`SELECT id, username, credential_hash, tier, ap, ap_updated_at, settings FROM users WHERE username = ?`,
		username,
	).Row()
	var (
		rec      UserRecord
		tier     string
		settings []byte
	)
	if err := row.Scan(&rec.ID, &rec.Username, &rec.CredentialHash, &tier, &rec.AP, &rec.APUpdatedAt, &settings); err != nil {
		if errs.Is(err, sql.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, wrap(err, "get user")
	}
	rec.Tier = engine.ParseTier(tier)
	if len(settings) > 0 {
		// Tolerate settings written by older builds.
		_ = json.Unmarshal(settings, &rec.Settings)
	}
	rec.Settings = engine.NormalizeSettingsForTier(rec.Settings, rec.Tier)
	return rec, nil
}

// SaveAPSettings upserts a session's own AP/settings baseline. Sessions only
// ever write their own username's row, so different usernames never conflict;
// the same username from two sessions is last write wins.
func (r *UserRepo) SaveAPSettings(ctx context.Context, username string, ap int, apUpdatedAt time.Time, s engine.Settings) error {
	settings, _ := json.Marshal(s)
	return wrap(r.db.gorm.WithContext(ctx).Exec(
		`UPDATE users SET ap = ?, ap_updated_at = ?, settings = ? WHERE username = ?`,
		ap, apUpdatedAt, settings, username,
	).Error, "save ap/settings")
}

func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.gorm.WithContext(ctx).Raw(`SELECT count(*) FROM users WHERE username = ?`, username).Scan(&n).Error
	return n > 0, wrap(err, "exists")
}

// WithTx executes fn within a database transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.gorm.WithContext(ctx).Transaction(fn)
}

// Helper error wrap
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
