package setting

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/parkbj12/songil-ai/internal/setting/entity"
	"github.com/parkbj12/songil-ai/internal/setting/repo"
)

// Keys are a fixed prefix plus, for per-user records, the user id.
const (
	LastUserKey     = "last_user_id"
	ReminderTimeKey = "daily_reminder_time"
	goalsKeyPrefix  = "health_goals_"
)

const (
	CategorySession  = "session"
	CategoryGoals    = "goals"
	CategoryReminder = "reminder"
)

// GoalsKey is the record holding a user's health goals.
func GoalsKey(userID string) string { return goalsKeyPrefix + userID }

// Service encapsulates business logic for settings and depends on a repo.
type Service struct {
	repo *repo.Repo
}

// NewService constructs a Service with the provided repository.
func NewService(r *repo.Repo) *Service {
	return &Service{repo: r}
}

// Open prepares the settings table on db and returns a ready Service.
func Open(ctx context.Context, db *sqlx.DB) (*Service, error) {
	r := repo.NewRepo(db)
	if err := r.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure settings table: %w", err)
	}
	return NewService(r), nil
}

// sentinel errors for common failure modes
var (
	ErrNotFound = errors.New("not found")
	ErrEmptyKey = errors.New("key is required")
)

// Get returns a setting by id.
func (s *Service) Get(ctx context.Context, id string) (*entity.Setting, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

// GetJSON decodes the stored value of id into dst.
func (s *Service) GetJSON(ctx context.Context, id string, dst any) error {
	st, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(st.Value, dst); err != nil {
		return fmt.Errorf("decode setting %s: %w", id, err)
	}
	return nil
}

// PutJSON stores v under id, replacing any previous value.
func (s *Service) PutJSON(ctx context.Context, id, category string, v any) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyKey
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", id, err)
	}
	return s.repo.Upsert(ctx, entity.NewSetting(id, category, raw))
}

// Delete removes a setting by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns settings by category with pagination.
func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]*entity.Setting, error) {
	return s.repo.List(ctx, category, limit, offset)
}

// LastUserID returns the identifier most recently validated on this device.
func (s *Service) LastUserID(ctx context.Context) (string, error) {
	var id string
	if err := s.GetJSON(ctx, LastUserKey, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) SetLastUserID(ctx context.Context, id string) error {
	return s.PutJSON(ctx, LastUserKey, CategorySession, id)
}
