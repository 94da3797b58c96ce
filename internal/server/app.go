// Package server wires the fintrack auth service together: storage,
// mail, throttling, the user service and the HTTP and gRPC servers, and
// runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/httpapi"
	"github.com/dmitrijs2005/fintrack/internal/server/notify"
	"github.com/dmitrijs2005/fintrack/internal/server/ratelimit"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/services"

	gs "github.com/dmitrijs2005/fintrack/internal/server/grpc"
)

const startupTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	closers     []io.Closer
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(!c.IsProduction())

	db, err := repomanager.OpenDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager) (*App, error) {
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var opts []services.Option
	if c.RedisAddr != "" {
		client := ratelimit.NewRedisClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
		app.closers = append(app.closers, client)
		opts = append(opts, services.WithLimiter(ratelimit.NewFixedWindowLimiter(client, ratelimit.Config{
			MaxRequests: c.ForgotPasswordMaxRequests,
			Window:      c.ForgotPasswordWindow,
		})))
	}

	app.userService = services.NewUserService(db, m, c, app.notifier(), logger, opts...)
	return app, nil
}

// notifier sends real mail when an SMTP host is configured and only logs
// otherwise.
func (app *App) notifier() notify.Notifier {
	if app.config.SMTPHost == "" {
		app.logger.Warn(context.Background(), "SMTP host not configured, emails will be logged only")
		return notify.NewLogNotifier(app.logger)
	}
	return notify.NewEmailNotifier(notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     app.config.SMTPHost,
		Port:     app.config.SMTPPort,
		Username: app.config.SMTPUser,
		Password: app.config.SMTPPassword,
		From:     app.config.SMTPFrom,
	}))
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpServer() *httpapi.HTTPServer {
	h := httpapi.NewHandler(app.userService, app.logger, httpapi.CookieConfig{
		ExpiresDays: app.config.CookieExpiresDays,
		Secure:      app.config.SecureCookies(),
	}, app.config.FrontendURL)
	return httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, h.Routes(), app.logger)
}

type runner interface {
	Run(ctx context.Context) error
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or
// either server fails. It returns the first server error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	servers := []runner{
		app.httpServer(),
		gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger),
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for _, s := range servers {
		wg.Add(1)
		go func(s runner) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				once.Do(func() { firstErr = err })
				cancelFunc()
			}
		}(s)
	}

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(firstErr, app.close())
}

func (app *App) close() error {
	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
