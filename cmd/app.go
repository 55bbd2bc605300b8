package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	apiclient "github.com/dtroode/quicklogin/internal/api/http/client"
	"github.com/dtroode/quicklogin/internal/api/http/middleware"
	"github.com/dtroode/quicklogin/internal/config"
	"github.com/dtroode/quicklogin/internal/countdown"
	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/model"
	"github.com/dtroode/quicklogin/internal/platform"
	"github.com/dtroode/quicklogin/internal/repository/memory"
	"github.com/dtroode/quicklogin/internal/repository/postgres"
	"github.com/dtroode/quicklogin/internal/repository/sqlite"
	"github.com/dtroode/quicklogin/internal/service"
	"github.com/dtroode/quicklogin/internal/token"
)

// entryPage is the page the console platform starts on.
const entryPage = "/pages/login/login"

// app holds the collaborators shared by all commands.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	kv       model.KVStore
	sessions model.SessionStore
	platform *platform.Console
	user     *service.User
	sms      *service.SMS

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logger.New(errOut, cfg.LogLevel),
	}

	if err := a.openStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}

	api, err := a.newAPIClient()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.user = service.NewUser(api, a.sessions, token.NewJWT(cfg.JWT.Secret), a.logger)
	a.sms = service.NewSMS(api)
	a.platform = platform.NewConsole(in, out, platform.NewRouter(entryPage), a.logger)

	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	st := a.cfg.Storage

	switch st.Driver {
	case config.DriverMemory:
		a.kv = memory.NewKVStore()
		a.sessions = memory.NewSessionStore()
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, st.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.kv = sqlite.NewKVRepository(db, st.Namespace)
		a.sessions = sqlite.NewSessionRepository(db, st.Namespace)
	case config.DriverPostgres:
		db, err := postgres.NewConnection(ctx, st.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.kv = postgres.NewKVRepository(db, st.Namespace)
		a.sessions = postgres.NewSessionRepository(db, st.Namespace)
	default:
		return fmt.Errorf("unknown storage driver %q", st.Driver)
	}

	a.logger.Debug("storage initialized", "driver", st.Driver, "namespace", st.Namespace)
	return nil
}

func (a *app) newAPIClient() (*apiclient.Client, error) {
	var sl apiclient.SecurityLayer
	if a.cfg.API.TLSEnabled() {
		sl = apiclient.NewTLSLayer(a.cfg.API.CAFile, a.cfg.API.CertFile, a.cfg.API.KeyFile)
	} else {
		sl = apiclient.NewPlainLayer()
	}

	transport, err := sl.Transport()
	if err != nil {
		return nil, fmt.Errorf("failed to build api transport: %w", err)
	}

	hc := &http.Client{
		Transport: middleware.NewLogging(transport, a.logger),
		Timeout:   a.cfg.API.Timeout,
	}

	api, err := apiclient.New(a.cfg.API.BaseURL,
		apiclient.WithHTTPClient(hc),
		apiclient.WithTokenSource(func(ctx context.Context) string {
			return a.user.AccessToken(ctx)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	return api, nil
}

func (a *app) newLogin() *service.Login {
	return service.NewLogin(a.platform, a.user, a.logger,
		service.WithProvider(model.Provider(a.cfg.Login.Provider)),
		service.WithLandingURL(a.cfg.Login.LandingURL),
		service.WithStateListener(func(state model.LoginState) {
			a.logger.Debug("login state changed", "state", state.String())
		}),
	)
}

// newTimer creates a countdown bound to key, or to the configured default
// countdown key when key is empty.
func (a *app) newTimer(key string, opts ...countdown.Option) *countdown.Timer {
	if key == "" {
		key = a.cfg.Countdown.Key
	}
	return countdown.New(a.kv, a.logger, append([]countdown.Option{countdown.WithKey(key)}, opts...)...)
}

func (a *app) newVerification() *service.Verification {
	timer := a.newTimer(a.cfg.Countdown.SMSKey)
	return service.NewVerification(a.sms, a.platform, timer, a.logger, a.cfg.Countdown.SMSCooldownSec)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
