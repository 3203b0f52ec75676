package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpadp "p2p-lending/internal/adapter/http"
	"p2p-lending/internal/adapter/repository/memory"
	"p2p-lending/internal/adapter/repository/mysql"
	sessionstore "p2p-lending/internal/adapter/session"
	"p2p-lending/internal/config"
	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/session"
	"p2p-lending/internal/domain/uow"
	"p2p-lending/internal/domain/user"
	"p2p-lending/internal/fixture"
	"p2p-lending/internal/gateway/messaging"
	"p2p-lending/internal/infrastructure/cache"
	"p2p-lending/internal/infrastructure/db"
	"p2p-lending/internal/infrastructure/metrics"
	"p2p-lending/internal/usecase/auth"
	"p2p-lending/internal/usecase/lending"
	"p2p-lending/pkg/logger"
)

const appName = "p2p-lending"

type storage struct {
	users user.Repository
	loans loan.Repository
	tx    uow.UnitOfWork
	check *httpadp.Check
}

func openStorage(cfg *config.Config) (*storage, error) {
	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		s := memory.NewStore()
		return &storage{users: memory.NewUserRepository(s), loans: memory.NewLoanRepository(s), tx: memory.NewUoW(s)}, nil
	case config.DriverSQLite:
		gdb, err = db.OpenSQLite(cfg.SQLitePath)
	default:
		gdb, err = db.OpenGorm(cfg.MySQLDSN())
	}
	if err != nil {
		return nil, err
	}
	if err := mysql.Migrate(gdb); err != nil {
		return nil, err
	}
	return &storage{
		users: mysql.NewUserRepository(gdb),
		loans: mysql.NewLoanRepository(gdb),
		tx:    mysql.NewGormUoW(gdb),
		check: &httpadp.Check{Name: "db", Fn: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logger.New(appName, cfg.LogLevel)

	store, err := openStorage(cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("storage")
	}
	var checks []httpadp.Check
	if store.check != nil {
		checks = append(checks, *store.check)
	}

	var (
		rdb      *redis.Client
		sessions session.Store
	)
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("redis")
		}
		defer rdb.Close()
		sessions = sessionstore.NewRedisStore(rdb, cfg.SessionTTL())
		checks = append(checks, httpadp.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	} else {
		sessions = sessionstore.NewMemoryStore(cfg.SessionTTL())
		log.Warn("REDIS_ADDR empty: in-memory sessions, idempotency disabled")
	}

	var pub messaging.Publisher = messaging.NoopPublisher{Log: log}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		p, err := messaging.NewSyncProducer(brokers, appName)
		if err != nil {
			log.WithError(err).Fatal("kafka")
		}
		lp := messaging.NewLedgerProducer(p, cfg.KafkaTopic, log)
		defer lp.Close()
		pub = lp
	}

	if cfg.SeedFixtures {
		if err := fixture.Seed(context.Background(), store.tx, log); err != nil {
			log.WithError(err).Fatal("seed")
		}
	}

	m := metrics.New()
	authUC := auth.NewUsecase(store.users, sessions, log)
	lendUC := lending.NewUsecase(store.loans, store.tx, pub, m, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	deps := httpadp.Deps{
		Health:         httpadp.NewHandler(checks...),
		Auth:           httpadp.NewAuthHandler(authUC, log),
		Loans:          httpadp.NewLoanHandler(lendUC, log),
		Sessions:       authUC,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Metrics:        m,
		Log:            log,
	}
	// assigning a nil *redis.Client would make a non-nil interface
	if rdb != nil {
		deps.Redis = rdb
	}
	httpadp.RegisterRoutes(e, deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	if err := serve(e, ":"+cfg.AppPort, quit, log); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

// serve runs e until a signal arrives or the listener fails, then shuts it
// down. It always returns to the caller so deferred closers run.
func serve(e *echo.Echo, addr string, quit <-chan os.Signal, log *logrus.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var serveErr error
	select {
	case <-quit:
		log.Info("shutting down")
	case serveErr = <-errc:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	return serveErr
}
