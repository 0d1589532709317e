package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/parkbj12/songil-ai/internal/contact/entity"
)

// Repo caches a user's emergency contact draft between runs.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

type row struct {
	UserID   string `db:"user_id"`
	Position int    `db:"position"`
	Name     string `db:"name"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`
}

// EnsureTable creates the emergency_contacts table if it does not already exist.
// The DDL runs unchanged on sqlite and postgres.
func (r *Repo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS emergency_contacts (
		user_id varchar(64) NOT NULL,
		position integer NOT NULL DEFAULT 0,
		name varchar(128) NOT NULL DEFAULT '',
		email varchar(254) NOT NULL,
		phone varchar(32) NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, email)
	);
	`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}

	const idx = `
	CREATE INDEX IF NOT EXISTS idx_emergency_contacts_user ON emergency_contacts (user_id, position);
	`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return err
	}
	return nil
}

// Replace swaps the stored list for userID in one transaction.
func (r *Repo) Replace(ctx context.Context, userID string, contacts []entity.EmergencyContact) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM emergency_contacts WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	const ins = `INSERT INTO emergency_contacts (user_id, position, name, email, phone) VALUES (:user_id, :position, :name, :email, :phone)`
	for i, c := range contacts {
		rw := row{UserID: userID, Position: i, Name: c.Name, Email: c.Email, Phone: c.Phone}
		if _, err := tx.NamedExecContext(ctx, ins, rw); err != nil {
			return fmt.Errorf("insert contact %s: %w", c.Email, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) List(ctx context.Context, userID string) ([]entity.EmergencyContact, error) {
	var rows []row
	q := r.db.Rebind(`SELECT user_id, position, name, email, phone FROM emergency_contacts WHERE user_id = ? ORDER BY position`)
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	out := make([]entity.EmergencyContact, 0, len(rows))
	for _, rw := range rows {
		out = append(out, entity.EmergencyContact{Name: rw.Name, Email: rw.Email, Phone: rw.Phone})
	}
	return out, nil
}
