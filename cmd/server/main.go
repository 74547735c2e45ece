// Command server runs the membership CRM: registration, the member profile
// surface and the staff admin area over one HTTP listener.
//
// Storage is selected by configuration: Postgres and Redis when configured,
// in-memory fallbacks otherwise so the service runs with zero infrastructure
// in development.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"culturecrm/db"
	accountservice "culturecrm/internal/account/service"
	accountstore "culturecrm/internal/account/store"
	activityhandler "culturecrm/internal/activity/handler"
	activityservice "culturecrm/internal/activity/service"
	activitystore "culturecrm/internal/activity/store"
	authhandler "culturecrm/internal/auth/handler"
	"culturecrm/internal/auth/lockout"
	authservice "culturecrm/internal/auth/service"
	"culturecrm/internal/auth/store/session"
	"culturecrm/internal/auth/token"
	interesthandler "culturecrm/internal/interest/handler"
	intereststore "culturecrm/internal/interest/store"
	memberhandler "culturecrm/internal/member/handler"
	membermetrics "culturecrm/internal/member/metrics"
	memberservice "culturecrm/internal/member/service"
	memberstore "culturecrm/internal/member/store"
	"culturecrm/internal/platform/config"
	"culturecrm/internal/platform/httpserver"
	"culturecrm/internal/platform/logger"
	platformredis "culturecrm/internal/platform/redis"
	httptransport "culturecrm/internal/transport/http"
	"culturecrm/pkg/email"
	authmw "culturecrm/pkg/platform/middleware/auth"
	txcontext "culturecrm/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	accountSvc := accountservice.New(stores.accounts,
		accountservice.WithLogger(log),
		accountservice.WithProfileCascade(stores.members))
	activitySvc := activityservice.New(stores.activity,
		activityservice.WithLogger(log))

	memberOpts := []memberservice.Option{
		memberservice.WithLogger(log),
		memberservice.WithMetrics(membermetrics.New()),
	}
	if stores.txRunner != nil {
		memberOpts = append(memberOpts, memberservice.WithTxRunner(stores.txRunner))
	}
	memberSvc := memberservice.New(stores.members, stores.history, stores.interests,
		accountSvc, activitySvc, memberOpts...)

	issuer := token.NewIssuer(cfg.JWTSigningKey, "culturecrm")
	loginGuard := lockout.New(stores.lockouts, lockout.WithLogger(log))
	authSvc := authservice.New(accountSvc, stores.sessions, activitySvc, issuer,
		authservice.WithLogger(log),
		authservice.WithSessionTTL(cfg.SessionTTL),
		authservice.WithLoginGuard(loginGuard))

	if err := bootstrapAdmin(ctx, cfg, accountSvc, log); err != nil {
		return err
	}

	resolver := authmw.ResolverFunc(func(ctx context.Context, tokenString string) (authmw.Session, error) {
		resolved, err := authSvc.Resolve(ctx, tokenString)
		if err != nil {
			return authmw.Session{}, err
		}
		return authmw.Session{
			SessionID: resolved.SessionID,
			AccountID: resolved.AccountID,
			IsStaff:   resolved.IsStaff,
		}, nil
	})

	router := httptransport.NewRouter(httptransport.Dependencies{
		Auth:      authhandler.New(authSvc, log),
		Members:   memberhandler.New(memberSvc, log),
		Interests: interesthandler.New(stores.interests, log),
		Activity:  activityhandler.New(activitySvc, log),
		Resolver:  resolver,
		Logger:    log,
	}, httptransport.Config{SiteTitle: cfg.SiteTitle})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr, "site", cfg.SiteTitle)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// stores bundles the storage layer behind the services, whichever backend is
// selected.
type stores struct {
	accounts  accountservice.AccountStore
	members   memberStore
	history   memberservice.HistoryStore
	interests interestStore
	activity  activityservice.EntryStore
	sessions  authservice.SessionStore
	lockouts  lockout.Store
	txRunner  txcontext.Runner
}

type memberStore interface {
	memberservice.MemberStore
	accountservice.ProfileCascade
}

type interestStore interface {
	memberservice.InterestCatalog
	interesthandler.Catalog
}

func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, func(), error) {
	cleanup := func() {}
	s := &stores{}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, cleanup, err
		}
		cleanup = pool.Close

		s.accounts = accountstore.NewPostgres(pool)
		s.members = memberstore.NewPostgres(pool)
		s.history = memberstore.NewHistoryPostgres(pool)
		s.interests = intereststore.NewPostgres(pool)
		s.activity = activitystore.NewPostgres(pool)
		s.txRunner = txcontext.NewPgxRunner(pool)
		log.Info("storage", "backend", "postgres")
	} else {
		accounts := accountstore.NewInMemory()
		interests := intereststore.NewInMemory()
		intereststore.Seed(interests)

		s.accounts = accounts
		s.members = memberstore.NewInMemory(accounts)
		s.history = memberstore.NewHistoryInMemory()
		s.interests = interests
		s.activity = activitystore.NewInMemory()
		log.Warn("storage", "backend", "memory",
			"note", "data is lost on restart; set CRM_DATABASE_URL for persistence")
	}

	redisClient, err := platformredis.New(cfg.RedisAddr)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	if redisClient != nil {
		s.sessions = session.NewRedis(redisClient.Client)
		s.lockouts = lockout.NewRedis(redisClient.Client)
		poolCleanup := cleanup
		cleanup = func() {
			_ = redisClient.Close()
			poolCleanup()
		}
		log.Info("sessions", "backend", "redis")
	} else {
		s.sessions = session.NewInMemory()
		s.lockouts = lockout.NewInMemory()
		log.Info("sessions", "backend", "memory")
	}

	return s, cleanup, nil
}

// bootstrapAdmin seeds a staff account on first start so a fresh deployment
// has someone who can approve applications.
func bootstrapAdmin(ctx context.Context, cfg config.Server, accounts *accountservice.Service, log *slog.Logger) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}
	if _, err := accounts.FindByEmail(ctx, cfg.BootstrapAdminEmail); err == nil {
		return nil
	}

	firstName, lastName := email.DeriveNameFromEmail(cfg.BootstrapAdminEmail)
	_, err := accounts.Create(ctx, accountservice.CreateParams{
		Email:     cfg.BootstrapAdminEmail,
		FirstName: firstName,
		LastName:  lastName,
		Password:  cfg.BootstrapAdminPassword,
		IsStaff:   true,
	})
	if err != nil {
		return err
	}
	log.Info("bootstrap admin created", "email", cfg.BootstrapAdminEmail)
	return nil
}
