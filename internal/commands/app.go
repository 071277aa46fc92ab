package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pkoval/tally/internal/config"
	"github.com/pkoval/tally/internal/database"
	"github.com/pkoval/tally/internal/database/repository"
	"github.com/pkoval/tally/internal/logger"
	"github.com/pkoval/tally/internal/notify"
	"github.com/pkoval/tally/internal/recurrence"
	"github.com/pkoval/tally/internal/service"
)

// app wires configuration, storage and services for one command invocation.
type app struct {
	cfg        config.Config
	log        zerolog.Logger
	db         *sql.DB
	store      *repository.InstanceRepo
	accounts   *repository.AccountRepo
	categories *repository.CategoryRepo
	notifs     *repository.NotificationRepo
	sched      *service.Scheduler
}

// openApp loads config, prepares the database and builds the scheduler.
// Callers must Close.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level)

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	store := repository.NewInstanceRepo(db)
	accounts := repository.NewAccountRepo(db)
	categories := repository.NewCategoryRepo(db)
	notifs := repository.NewNotificationRepo(db)
	sched := &service.Scheduler{
		Store:      store,
		Dispatch:   notify.NewLocalDispatcher(notifs, log),
		Balances:   &service.BalanceService{Accounts: accounts, Instances: store},
		Usage:      categories,
		Horizon:    cfg.Scheduler.HorizonMonths,
		Loc:        loc,
		NotifyHour: cfg.Notifications.Hour,
		Log:        log,
	}
	return &app{
		cfg: cfg, log: log, db: db,
		store: store, accounts: accounts, categories: categories, notifs: notifs,
		sched: sched,
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

// instance loads a transaction by id, erroring when it does not exist.
func (a *app) instance(ctx context.Context, id string) (*repository.Instance, error) {
	inst, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("no transaction with id %s", id)
	}
	return inst, nil
}

// accountID resolves an account reference, by id first, then by name.
func (a *app) accountID(ctx context.Context, ref string) (string, error) {
	acct, err := a.accounts.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	if acct == nil {
		acct, err = a.accounts.GetByName(ctx, ref)
		if err != nil {
			return "", err
		}
	}
	if acct == nil {
		return "", fmt.Errorf("no account %q", ref)
	}
	return acct.ID, nil
}

// categoryID resolves an optional category reference, by id or name.
func (a *app) categoryID(ctx context.Context, ref string) (*string, error) {
	if ref == "" {
		return nil, nil
	}
	cats, err := a.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.ID == ref || c.Name == ref {
			id := c.ID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("no category %q", ref)
}

// parseDay parses a YYYY-MM-DD flag value; empty means today in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return recurrence.DayIn(time.Now(), loc), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
