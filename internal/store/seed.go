package store

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashfall-game/ashfall/internal/engine"
)

// seedRow is one entry of the remotely hosted seed registry: a baseline set
// of accounts shipped with the deployment.
type seedRow struct {
	Username       string          `json:"username"`
	CredentialHash string          `json:"credentialHash"`
	Tier           string          `json:"tier"`
	AP             int             `json:"ap"`
	APUpdatedAt    time.Time       `json:"apUpdatedAt"`
	Settings       engine.Settings `json:"settings"`
}

// MergeSeedRegistry fetches the seed registry and folds it into the local
// users table. New usernames are inserted; for existing rows the seed only
// wins when its AP timestamp is strictly newer than the local one, so a seed
// refresh never clobbers live progress.
func MergeSeedRegistry(ctx context.Context, db *DB, url string) error {
	if url == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return wrap(errStatus(resp.StatusCode), "fetch seed registry")
	}
	var rows []seedRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return wrap(err, "decode seed registry")
	}
	return db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, row := range rows {
			if row.Username == "" {
				continue
			}
			if err := mergeSeedRow(tx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func mergeSeedRow(tx *gorm.DB, row seedRow) error {
	tier := engine.ParseTier(row.Tier)
	settings, _ := json.Marshal(engine.NormalizeSettingsForTier(row.Settings, tier))

	var localUpdated time.Time
	r := tx.Raw(`SELECT ap_updated_at FROM users WHERE username = ?`, row.Username).Row()
	if err := r.Scan(&localUpdated); err != nil {
		// No local row: insert the seed as-is.
		return tx.Exec(
			`INSERT INTO users(id, username, credential_hash, tier, ap, ap_updated_at, settings) VALUES (?,?,?,?,?,?,?)`,
			uuid.New(), row.Username, row.CredentialHash, string(tier), row.AP, row.APUpdatedAt, settings,
		).Error
	}
	if !seedWins(row.APUpdatedAt, localUpdated) {
		log.Printf("seed: keeping newer local row for %s", row.Username)
		return nil
	}
	return tx.Exec(
		`UPDATE users SET credential_hash = ?, tier = ?, ap = ?, ap_updated_at = ?, settings = ? WHERE username = ?`,
		row.CredentialHash, string(tier), row.AP, row.APUpdatedAt, settings, row.Username,
	).Error
}

// seedWins decides whether a seed row may replace a local one. Ties go to
// the local row so a re-fetched identical seed is a no-op.
func seedWins(seed, local time.Time) bool {
	return seed.After(local)
}

type errStatus int

func (e errStatus) Error() string { return http.StatusText(int(e)) }
