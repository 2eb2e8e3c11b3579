package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/acme/identity-service/internal/application/identity"
	"github.com/acme/identity-service/internal/config"
	"github.com/acme/identity-service/internal/infrastructure/db/postgres"
	"github.com/acme/identity-service/internal/infrastructure/email"
	"github.com/acme/identity-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/acme/identity-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/acme/identity-service/internal/infrastructure/redis"
	"github.com/acme/identity-service/internal/infrastructure/security"
	"github.com/acme/identity-service/internal/logger"
	http_handlers "github.com/acme/identity-service/internal/transport/http/handlers"
	"github.com/acme/identity-service/internal/transport/http/middleware"
	"github.com/acme/identity-service/internal/transport/http/response"
	"github.com/acme/identity-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing.
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string) (DBCloser, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewMailer func(cfg *config.Config) (identity.Mailer, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	// 2) user directory
	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	userRepo := postgres.NewUserRepo(sqlDB)

	// 3) redis (best-effort; memory stores otherwise)
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory session and token stores")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 4) session + one-time-token stores
	var sessionStore identity.SessionStore
	var ottStore identity.OneTimeTokenStore

	if rc, ok := redisCli.(*redis.Client); ok {
		sessionStore = redis.NewSessionStore(rc)
		ottStore = redis.NewOneTimeTokenStore(rc)
	} else {
		sessionStore = memory.NewSessionStore()
		ottStore = memory.NewOneTimeTokenStore()
	}

	// 5) notification dispatcher
	mailer, err := deps.NewMailer(cfg)
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("mailer unavailable; using log mailer")
			mailer = memory.NewMailer()
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}
	if c, ok := mailer.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 6) security
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, "identity-service")

	// seed (dev only)
	if cfg.Env == "dev" {
		postgres.SeedUsers(context.Background(), userRepo, hasher)
	}

	// 7) service
	svc := identity.NewService(
		userRepo,
		hasher,
		signer,
		sessionStore,
		ottStore,
		mailer,
		identity.Config{
			AccessTTL:             cfg.AccessTokenTTL,
			RefreshTTL:            cfg.RefreshTokenTTL,
			VerifyEmailBaseURL:    cfg.VerifyEmailBaseURL,
			PasswordResetBaseURL:  cfg.PasswordResetBaseURL,
			VerifyEmailTokenTTL:   cfg.VerifyEmailTokenTTL,
			PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
		},
	)

	svc = svc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	// 8) handlers + middleware
	identityH := http_handlers.NewIdentityHandler(svc, cfg.RefreshTokenTTL, cfg.SecureCookies)
	adminH := http_handlers.NewAdminHandler(svc)

	var healthRedis http_handlers.Pinger
	if redisCli != nil {
		healthRedis = redisCli
	}
	healthH := http_handlers.NewHealthHandler(sqlDB, healthRedis)

	authMW := middleware.Auth(signer, response.WriteError)
	adminMW := middleware.RequireAtLeast("ADMIN", response.WriteError)

	// rate limit (fail-open)
	var fwLimiter *redis.FixedWindowLimiter
	if rc, ok := redisCli.(*redis.Client); ok && cfg.RLEnabled {
		fwLimiter = redis.NewFixedWindowLimiter(rc)
	}

	rl := func(key string, limit int, window time.Duration) func(http.Handler) http.Handler {
		if fwLimiter == nil {
			return nil
		}
		return middleware.RateLimitFixedWindow(
			fwLimiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   window,
			},
			response.WriteError,
		)
	}

	// 9) router
	mux, err := deps.NewRouter(router.Deps{
		Health:   healthH,
		Identity: identityH,
		Admin:    adminH,
		AuthMW:   authMW,
		AdminMW:  adminMW,
		LoginRL:  rl("login", cfg.RLLoginLimit, cfg.RLLoginWindow),
		ResetRL:  rl("reset", cfg.RLResetLimit, cfg.RLResetWindow),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 10) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string) (DBCloser, error) {
			return config.NewDB(addr)
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewMailer: newMailer,
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

func newMailer(cfg *config.Config) (identity.Mailer, error) {
	switch cfg.MailerKind {
	case "smtp":
		return email.NewSMTPMailer(email.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			From:        cfg.SMTPFrom,
			Timeout:     cfg.SMTPTimeout,
			Insecure:    cfg.SMTPInsecure,
			SiteName:    cfg.SiteName,
			SiteAddress: cfg.SiteAddress,
		}, logger.Logger), nil
	case "amqp":
		pub, err := rabbitmq_pub.NewPublisher(cfg.RabbitURL)
		if err != nil {
			return nil, err
		}
		pub.SetExchange(cfg.RabbitExchange)
		return pub, nil
	default:
		return memory.NewMailer(), nil
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
