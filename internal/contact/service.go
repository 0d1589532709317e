// Package contact manages a user's emergency contacts and alert email.
package contact

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/internal/contact/entity"
	"github.com/parkbj12/songil-ai/internal/contact/repo"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/user"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrMissingField   = errors.New("name and email are required")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrNoIndex        = errors.New("no contact at index")
	ErrNoContacts     = errors.New("no emergency contacts registered")
)

// Remote is the backend surface the book talks to. *remote.Client satisfies it.
type Remote interface {
	UpdateEmergencyContacts(ctx context.Context, userID string, contacts []entity.EmergencyContact) error
	GetEmergencyContacts(ctx context.Context, userID string) ([]entity.EmergencyContact, error)
	SendEmergencyAlert(ctx context.Context, userID string) error
	UpdateEmail(ctx context.Context, userID, email string) error
	GetEmail(ctx context.Context, userID string) (string, error)
}

// Book is the session user's contact list. Edits stay local until Save.
type Book struct {
	remote  Remote
	session user.SessionReader
	cache   *repo.Repo
	logger  *zap.SugaredLogger

	mu       sync.Mutex
	owner    string
	contacts []entity.EmergencyContact
}

// NewBook builds a Book. cache may be nil, in which case drafts live in memory only.
func NewBook(r Remote, session user.SessionReader, cache *repo.Repo, logger *zap.SugaredLogger) *Book {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Book{remote: r, session: session, cache: cache, logger: logger}
}

// Open builds a Book whose drafts persist in db.
func Open(ctx context.Context, db *sqlx.DB, r Remote, session user.SessionReader, logger *zap.SugaredLogger) (*Book, error) {
	cache := repo.NewRepo(db)
	if err := cache.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure contacts table: %w", err)
	}
	return NewBook(r, session, cache, logger), nil
}

// attach makes the book belong to the session user, reloading the cached
// draft on a user switch. Callers hold b.mu.
func (b *Book) attach(ctx context.Context) (string, error) {
	userID, err := user.Require(b.session)
	if err != nil {
		return "", err
	}
	if b.owner == userID {
		return userID, nil
	}
	b.owner, b.contacts = userID, nil
	if b.cache != nil {
		list, err := b.cache.List(ctx, userID)
		if err != nil {
			b.logger.Warnw("load cached contacts", "user_id", userID, "err", err)
		} else {
			b.contacts = list
		}
	}
	return userID, nil
}

func (b *Book) persist(ctx context.Context, userID string) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Replace(ctx, userID, b.contacts); err != nil {
		b.logger.Warnw("cache contacts", "user_id", userID, "err", err)
	}
}

func (b *Book) List(ctx context.Context) ([]entity.EmergencyContact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.attach(ctx); err != nil {
		return nil, err
	}
	return append([]entity.EmergencyContact(nil), b.contacts...), nil
}

func (b *Book) Add(ctx context.Context, name, email, phone string) (entity.EmergencyContact, error) {
	c := entity.EmergencyContact{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	}
	if c.Name == "" || c.Email == "" {
		return c, fmt.Errorf("%w: %w", remote.ErrValidation, ErrMissingField)
	}
	if !emailPattern.MatchString(c.Email) {
		return c, fmt.Errorf("%w: %w: %q", remote.ErrValidation, ErrInvalidEmail, c.Email)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	userID, err := b.attach(ctx)
	if err != nil {
		return c, err
	}
	for _, existing := range b.contacts {
		if existing.Email == c.Email {
			return c, fmt.Errorf("%w: %w: %s", remote.ErrValidation, ErrDuplicateEmail, c.Email)
		}
	}
	b.contacts = append(b.contacts, c)
	b.persist(ctx, userID)
	return c, nil
}

// Remove deletes the contact at index, counting from zero.
func (b *Book) Remove(ctx context.Context, index int) (entity.EmergencyContact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, err := b.attach(ctx)
	if err != nil {
		return entity.EmergencyContact{}, err
	}
	if index < 0 || index >= len(b.contacts) {
		return entity.EmergencyContact{}, fmt.Errorf("%w %d", ErrNoIndex, index)
	}
	c := b.contacts[index]
	b.contacts = append(b.contacts[:index:index], b.contacts[index+1:]...)
	b.persist(ctx, userID)
	return c, nil
}

// Save uploads the whole list, replacing what the backend holds.
func (b *Book) Save(ctx context.Context) error {
	b.mu.Lock()
	userID, err := b.attach(ctx)
	list := append([]entity.EmergencyContact(nil), b.contacts...)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	if err := b.remote.UpdateEmergencyContacts(ctx, userID, list); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	b.logger.Infow("contacts saved", "user_id", userID, "count", len(list))
	return nil
}

// Load replaces the list with the backend's copy. A failed fetch leaves an
// empty list; only a missing session is returned as an error.
func (b *Book) Load(ctx context.Context) ([]entity.EmergencyContact, error) {
	userID, err := user.Require(b.session)
	if err != nil {
		return nil, err
	}
	list, ferr := b.remote.GetEmergencyContacts(ctx, userID)
	if ferr != nil {
		b.logger.Warnw("load contacts failed", "user_id", userID, "err", ferr)
		list = nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.owner, b.contacts = userID, list
	b.persist(ctx, userID)
	return append([]entity.EmergencyContact(nil), list...), nil
}

// SendEmergencyAlert asks the backend to notify every contact.
func (b *Book) SendEmergencyAlert(ctx context.Context) error {
	list, err := b.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return ErrNoContacts
	}
	userID, _ := user.Require(b.session)
	if err := b.remote.SendEmergencyAlert(ctx, userID); err != nil {
		return fmt.Errorf("emergency alert: %w", err)
	}
	b.logger.Infow("emergency alert sent", "user_id", userID, "contacts", len(list))
	return nil
}

func (b *Book) SaveEmail(ctx context.Context, email string) error {
	userID, err := user.Require(b.session)
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", remote.ErrValidation)
	}
	return b.remote.UpdateEmail(ctx, userID, email)
}

func (b *Book) LoadEmail(ctx context.Context) (string, error) {
	userID, err := user.Require(b.session)
	if err != nil {
		return "", err
	}
	return b.remote.GetEmail(ctx, userID)
}
