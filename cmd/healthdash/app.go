package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/internal/chat"
	"github.com/parkbj12/songil-ai/internal/contact"
	"github.com/parkbj12/songil-ai/internal/goal"
	"github.com/parkbj12/songil-ai/internal/healthcheck"
	"github.com/parkbj12/songil-ai/internal/notification"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/setting"
	"github.com/parkbj12/songil-ai/internal/user"
	"github.com/parkbj12/songil-ai/internal/user/entity"
	"github.com/parkbj12/songil-ai/pkg/config"
	"github.com/parkbj12/songil-ai/pkg/database"
)

// app wires the client core for one command invocation.
type app struct {
	cfg    config.Config
	logger *zap.SugaredLogger
	db     *sqlx.DB

	settings  *setting.Service
	client    *remote.Client
	validator *user.Validator
	session   user.SessionReader
	goals     *goal.Service
	contacts  *contact.Book
	poller    *notification.Poller
	reminder  *notification.Reminder
	chat      *chat.Service
	checks    *healthcheck.Orchestrator
	presenter *terminalPresenter
}

func newApp(ctx context.Context, cfgPath string, logger *zap.SugaredLogger) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	dbCfg := database.ConfigFromEnv()
	dbCfg.DSN = cfg.DB
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, err
	}
	settings, err := setting.Open(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	client := remote.New(remote.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    logger,
	})
	validator := user.NewValidator(user.ValidatorOptions{
		Lookup:   client,
		Store:    settings,
		Debounce: cfg.Debounce,
		Logger:   logger,
	})
	session := validator.Session()

	book, err := contact.Open(ctx, db, client, session, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	presenter := newTerminalPresenter()
	poller := notification.NewPoller(notification.PollerOptions{
		Source:    client,
		Session:   session,
		Presenter: presenter,
		Initial:   cfg.PollInitial,
		Interval:  cfg.PollInterval,
		Logger:    logger,
	})
	goals := goal.NewService(settings, client, nil, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		settings:  settings,
		client:    client,
		validator: validator,
		session:   session,
		goals:     goals,
		contacts:  book,
		poller:    poller,
		reminder: notification.NewReminder(notification.ReminderOptions{
			Logs:     client,
			Session:  session,
			Settings: settings,
			Default:  cfg.ReminderTime,
			Notify:   presenter.Remind,
			Logger:   logger,
		}),
		chat: chat.NewService(client, session, poller, logger),
		checks: healthcheck.New(healthcheck.Options{
			Backend:  client,
			Session:  session,
			Goals:    goals,
			Contacts: book,
			Logger:   logger,
		}),
		presenter: presenter,
	}, nil
}

func (a *app) Close() {
	a.poller.Stop()
	a.validator.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warnw("close store", "err", err)
	}
}

// login validates id, or the last validated id when id is empty, and waits
// for the debounced check to settle.
func (a *app) login(ctx context.Context, id string) (entity.State, error) {
	if id == "" {
		last, err := a.settings.LastUserID(ctx)
		if errors.Is(err, setting.ErrNotFound) {
			return entity.State{}, errors.New("no user id: pass --user or run `healthdash validate ID` first")
		}
		if err != nil {
			return entity.State{}, err
		}
		id = last
	}

	changes := make(chan entity.State, 4)
	a.validator.OnChange(func(st entity.State) {
		select {
		case changes <- st:
		default:
		}
	})
	st := a.validator.Input(id)
	for st.Phase == entity.PhasePending {
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case st = <-changes:
		}
	}
	if st.Phase != entity.PhaseValid {
		return st, fmt.Errorf("%w: user id %q is %s (%s)", remote.ErrValidation, id, st.Phase, reasonText(st.Reason))
	}
	return st, nil
}

// requireUser logs in with --user or the stored id.
func (a *app) requireUser(ctx context.Context) (string, error) {
	st, err := a.login(ctx, userFlag)
	if err != nil {
		return "", err
	}
	return st.Candidate, nil
}
