// Package app assembles the HTTP service from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"accounts-api/internal/cache"
	"accounts-api/internal/config"
	"accounts-api/internal/database"
	"accounts-api/internal/logger"
	"accounts-api/internal/mailer"
	"accounts-api/internal/password"
	"accounts-api/internal/router"
	"accounts-api/internal/validation"
	"accounts-api/internal/worker"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

var (
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	newWorkerPool   = worker.NewPool
	setPasswordCost = password.SetCost
)

// App 持有一個服務實例的所有相依物件。App 擁有這些物件，Close 時一併關閉。
type App struct {
	Config  config.Config
	Echo    *echo.Echo
	DB      database.DB
	Cache   cache.Cache
	Workers worker.Pool
	Mailer  mailer.Mailer
	Log     zerolog.Logger

	mu       sync.Mutex
	contexts []*RequestContext
	closed   bool
	logSet   bool
}

// Option 覆寫 New 預設建立的相依物件
type Option func(*App)

func WithDB(db database.DB) Option {
	return func(a *App) { a.DB = db }
}

func WithCache(c cache.Cache) Option {
	return func(a *App) { a.Cache = c }
}

func WithMailer(m mailer.Mailer) Option {
	return func(a *App) { a.Mailer = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
		a.logSet = true
	}
}

// New 依設定建立 App：連線 DB 與 Redis、啟動 worker pool 並註冊路由
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := setPasswordCost(cfg.BcryptCost); err != nil {
		return nil, fmt.Errorf("設定 bcrypt cost 失敗: %w", err)
	}

	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if !a.logSet {
		a.Log = logger.New(cfg.LogLevel, cfg.LogFormat)
	}

	if a.DB == nil {
		db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("DB 連線失敗: %w", err)
		}
		a.DB = db
	}
	if a.Cache == nil {
		c, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.DB.Close()
			return nil, fmt.Errorf("Redis 連線失敗: %w", err)
		}
		a.Cache = c
	}
	if a.Mailer == nil {
		a.Mailer = mailer.LogMailer{Log: logger.Component(a.Log, "mailer")}
	}
	a.Workers = newWorkerPool(cfg.WorkerCount, logger.Component(a.Log, "worker"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	e.Validator = validation.New()
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.RequestLogger(logger.Component(a.Log, "http")))
	e.Use(middleware.Recover())

	router.Setup(e, router.Deps{
		DB:              a.DB,
		Cache:           a.Cache,
		Workers:         a.Workers,
		Mailer:          a.Mailer,
		Log:             a.Log,
		JWTSecret:       cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		VerificationTTL: cfg.VerificationTTL,
	})
	a.Echo = e
	return a, nil
}

// Run 啟動 HTTP 服務，ctx 結束後優雅關閉
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", a.Config.HTTPAddr).Msg("http server started")
		errCh <- a.Echo.Start(a.Config.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("關閉 HTTP 服務失敗: %w", err)
	}
	a.Log.Info().Msg("http server stopped")
	return nil
}

// Close 依序停止 worker、關閉 Redis 與 DB。重複呼叫不會有作用。
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	var errs []error
	if a.Workers != nil {
		a.Workers.Stop()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("關閉 Redis 連線失敗: %w", err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Echo != nil {
		if err := a.Echo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
