package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/usersapp/internal/common/config"
	"github.com/AlibekovAA/usersapp/internal/common/constants"
	"github.com/AlibekovAA/usersapp/internal/common/db"
	commonhttp "github.com/AlibekovAA/usersapp/internal/common/http"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
	"github.com/AlibekovAA/usersapp/internal/common/server"
	"github.com/AlibekovAA/usersapp/internal/page"
	userrepo "github.com/AlibekovAA/usersapp/internal/user/repository"
)

type App struct {
	Log     *logger.Logger
	Config  config.AppConfig
	Pool    *pgxpool.Pool
	Users   userrepo.Repository
	Pages   *page.Renderer
	Limiter *commonhttp.RateLimiter

	stopMetrics context.CancelFunc
}

// NewApp connects the pool, makes sure the users table exists and loads the
// index template. Any failure here is fatal for the process.
func NewApp(ctx context.Context, cfg config.AppConfig, log *logger.Logger) (*App, error) {
	pc := db.DefaultPoolConfig(cfg.DatabaseURL)
	pc.MaxConns = cfg.DBMaxConns
	pc.MinConns = cfg.DBMinConns
	pc.ConnectRetries = cfg.DBConnectAttempts

	pool, err := db.NewPool(ctx, log, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	users := userrepo.NewPgRepository(pool)
	if err := users.Initialize(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize users table: %w", err)
	}

	pages, err := page.NewRenderer(cfg.TemplatesDir, users, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

	var limiter *commonhttp.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = commonhttp.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		log.Infof("rate limiting enabled: %.2f rps, burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	return &App{
		Log:         log,
		Config:      cfg,
		Pool:        pool,
		Users:       users,
		Pages:       pages,
		Limiter:     limiter,
		stopMetrics: stopMetrics,
	}, nil
}

// Handler returns the fully wrapped HTTP handler for the server.
func (a *App) Handler() http.Handler {
	router := NewRouter(RouterDeps{
		Log:       a.Log,
		Users:     a.Users,
		Pages:     a.Pages,
		StaticDir: a.Config.StaticDir,
		Health:    a.Pool,
	})
	return commonhttp.BuildBaseHandler(a.Log, a.Limiter, router)
}

// ShutdownHooks release the app's resources once the server has stopped.
func (a *App) ShutdownHooks() []server.ShutdownHook {
	return []server.ShutdownHook{
		func(context.Context) error {
			a.stopMetrics()
			if a.Limiter != nil {
				a.Limiter.Stop()
			}
			return nil
		},
		func(context.Context) error {
			a.Log.Infof("closing database pool")
			a.Pool.Close()
			return nil
		},
	}
}
