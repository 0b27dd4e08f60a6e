// Package cli implements the lostlibrary command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/iudanet/lostlibrary/internal/client/accounts"
	"github.com/iudanet/lostlibrary/internal/client/api"
	"github.com/iudanet/lostlibrary/internal/client/auth"
	"github.com/iudanet/lostlibrary/internal/client/favorites"
	"github.com/iudanet/lostlibrary/internal/client/identity"
	"github.com/iudanet/lostlibrary/internal/client/iocli"
	"github.com/iudanet/lostlibrary/internal/client/storage"
	"github.com/iudanet/lostlibrary/internal/client/storage/boltdb"
	"github.com/iudanet/lostlibrary/internal/client/switcher"
	"github.com/iudanet/lostlibrary/internal/config"
	"github.com/iudanet/lostlibrary/internal/logging"
)

// App holds the services one CLI invocation works with
type App struct {
	io        iocli.IO
	client    *api.Client
	auth      *auth.Service
	accounts  *accounts.Store
	favorites *favorites.Store
	switcher  *switcher.Switcher
	logger    *slog.Logger
	lookup    config.LookupFunc
	closer    func() error
}

// Builder creates the App once flags and config are resolved
type Builder func(ctx context.Context, cfg config.Client, console iocli.IO) (*App, error)

// NewApp wires client services on top of kv
func NewApp(console iocli.IO, client *api.Client, kv storage.KV, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	accountStore := accounts.NewStore(kv, logger)
	service := auth.NewService(client, client, accountStore, auth.NewSessionStore(kv, logger), nil, logger)

	app := &App{
		io:        console,
		client:    client,
		auth:      service,
		accounts:  accountStore,
		favorites: favorites.NewStore(kv, logger),
		switcher:  switcher.New(service, accountStore, logger),
		logger:    logger,
	}
	service.Notifier().Subscribe(app.identityChanged)
	return app
}

// identityChanged пишет в лог каждую смену активного аккаунта
func (a *App) identityChanged(ch identity.Change) {
	a.logger.Info("active account changed",
		slog.String("reason", string(ch.Reason)),
		slog.String("previous_user_id", ch.Previous.UserID),
		slog.String("user_id", ch.Current.UserID))
}

// Close releases local storage
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// OpenWith returns the production Builder: logs go to logOut and local data to
// the bbolt file from cfg. When the file cannot be opened the CLI keeps working
// without persistence.
func OpenWith(logOut io.Writer) Builder {
	return func(ctx context.Context, cfg config.Client, console iocli.IO) (*App, error) {
		logger, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}

		var (
			kv     storage.KV = storage.Unavailable{}
			closer func() error
		)
		bolt, err := boltdb.New(ctx, cfg.DBPath)
		if err != nil {
			logger.WarnContext(ctx, "local storage unavailable, accounts will not be remembered",
				slog.String("path", cfg.DBPath), slog.Any("error", err))
		} else {
			kv = bolt
			closer = bolt.Close
		}

		app := NewApp(console, api.NewClient(cfg.ServerURL, cfg.RequestTimeout), kv, logger)
		app.closer = closer
		return app, nil
	}
}
