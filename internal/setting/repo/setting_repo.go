package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/parkbj12/songil-ai/internal/setting/entity"
)

// Repo is the settings repository, backed by sqlite or PostgreSQL through sqlx.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a new Repo with an existing *sqlx.DB connection.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID        string    `db:"id"`
	Category  string    `db:"category"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r row) toEntity() *entity.Setting {
	return &entity.Setting{ID: r.ID, Category: r.Category, Value: []byte(r.Value), UpdatedAt: r.UpdatedAt}
}

// EnsureTable ensures the settings table and its index exist.
// The DDL is portable between sqlite and PostgreSQL.
func (r *Repo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS settings (
		id varchar(128) PRIMARY KEY,
		category varchar(32) NOT NULL DEFAULT '',
		value TEXT NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}
	const idx = `CREATE INDEX IF NOT EXISTS idx_settings_category ON settings (category)`
	_, err := r.db.ExecContext(ctx, idx)
	return err
}

// GetByID returns the setting or sql.ErrNoRows.
func (r *Repo) GetByID(ctx context.Context, id string) (*entity.Setting, error) {
	q := r.db.Rebind(`SELECT id, category, value, updated_at FROM settings WHERE id = ?`)
	var out row
	if err := r.db.GetContext(ctx, &out, q, id); err != nil {
		return nil, err
	}
	return out.toEntity(), nil
}

// Upsert inserts the setting or replaces the stored value.
func (r *Repo) Upsert(ctx context.Context, s *entity.Setting) error {
	q := r.db.Rebind(`INSERT INTO settings (id, category, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET category = excluded.category, value = excluded.value, updated_at = excluded.updated_at`)
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Category, string(s.Value), s.UpdatedAt)
	return err
}

// Delete removes a setting and returns the number of rows affected.
func (r *Repo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM settings WHERE id = ?`), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns settings of a category ordered by id.
func (r *Repo) List(ctx context.Context, category string, limit, offset int) ([]*entity.Setting, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.db.Rebind(`SELECT id, category, value, updated_at FROM settings WHERE category = ? ORDER BY id LIMIT ? OFFSET ?`)
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, q, category, limit, offset); err != nil {
		return nil, err
	}
	out := make([]*entity.Setting, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.toEntity())
	}
	return out, nil
}
