package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripmate/internal/catalog"
	"github.com/desertthunder/tripmate/internal/repositories"
	"github.com/desertthunder/tripmate/internal/router"
	"github.com/desertthunder/tripmate/internal/services"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/desertthunder/tripmate/internal/store"
	"github.com/desertthunder/tripmate/internal/tasks"
)

const writeUpdateBuffer = 64

// App is the wired application: an [store.AppState] and the collaborators it was built with.
type App struct {
	State    *store.AppState
	Router   *router.Router
	Catalog  *catalog.Catalog
	Identity *services.LocalIdentity
	Writes   <-chan tasks.WriteUpdate // Write-through progress, dropped when nobody reads

	db        *sql.DB
	documents repositories.DocumentStore
	queue     *tasks.WriteQueue
	logger    *log.Logger
}

// deps returns the application graph, building it on first use and restoring any saved session.
func (r *Runner) deps(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	app, err := r.build()
	if err != nil {
		return nil, err
	}
	if err := app.State.Restore(ctx); err != nil {
		r.logger.Warn("could not restore session", "error", err)
	}

	r.app = app
	return app, nil
}

func (r *Runner) build() (*App, error) {
	config := r.config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := shared.NewDatabase(shared.ExpandHome(config.Database.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app := &App{db: db, logger: r.logger}
	fail := func(err error) (*App, error) {
		app.closeStores()
		return nil, err
	}

	switch strings.ToLower(config.Documents.Driver) {
	case "bolt":
		bolt, err := repositories.OpenBoltDocumentStore(shared.ExpandHome(config.Documents.BoltPath))
		if err != nil {
			return fail(err)
		}
		app.documents = bolt
	default:
		app.documents = repositories.NewDocumentRepository(db)
	}

	sessions, err := services.NewSessionStore(
		shared.ExpandHome(config.Auth.SessionPath), config.Auth.SessionSecret, config.Auth.SessionTTL(),
	)
	if err != nil {
		return fail(err)
	}

	var popup services.PopupFlow
	if config.Auth.Google.Configured() {
		oauth, err := services.NewOAuthPopup(services.OAuthPopupOpts{
			Google:  config.Auth.Google,
			Server:  config.Server,
			Logger:  shared.WithLogger(r.logger, "component", "oauth"),
			Output:  r.output,
			Browser: r.browser,
		})
		if err != nil {
			return fail(err)
		}
		popup = oauth
	}

	app.Catalog, err = catalog.Load(shared.ExpandHome(config.Catalog.PlacesPath), shared.ExpandHome(config.Catalog.LocationsPath))
	if err != nil {
		return fail(err)
	}

	app.Identity = services.NewLocalIdentity(repositories.NewAccountRepository(db), sessions, popup, r.logger)
	app.Router = router.New(r.logger)

	writes := make(chan tasks.WriteUpdate, writeUpdateBuffer)
	app.Writes = writes
	app.queue = tasks.NewWriteQueue(app.documents, tasks.WriteQueueOpts{
		RateLimit: config.Documents.WritesPerSecond,
		Logger:    shared.WithLogger(r.logger, "component", "writes"),
		Progress:  writes,
	})
	app.State = store.New(store.Options{
		Catalog:   app.Catalog,
		Identity:  app.Identity,
		Documents: app.documents,
		Navigator: app.Router,
		Writer:    app.queue,
		Logger:    r.logger,
	})

	r.logger.Debug("application ready", "database", config.Database.Path, "documents", config.Documents.Driver)
	return app, nil
}

// Close drains the write queue, then closes the document store and database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.queue != nil {
		if err := a.queue.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		stats := a.queue.Stats()
		a.logger.Debug("document writes", "enqueued", stats.Enqueued, "written", stats.Written,
			"coalesced", stats.Coalesced, "failed", stats.Failed, "dropped", stats.Dropped)
		if stats.Failed > 0 {
			a.logger.Warn("some document writes failed", "failed", stats.Failed)
		}
	}
	if err := a.closeStores(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeStores() error {
	var errs []error
	if a.documents != nil {
		errs = append(errs, a.documents.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
