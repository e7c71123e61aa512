package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/club-space-reservation/internal/config"
	"github.com/iliyamo/club-space-reservation/internal/database"
	"github.com/iliyamo/club-space-reservation/internal/handler"
	"github.com/iliyamo/club-space-reservation/internal/logger"
	"github.com/iliyamo/club-space-reservation/internal/middleware"
	"github.com/iliyamo/club-space-reservation/internal/queue"
	"github.com/iliyamo/club-space-reservation/internal/repository"
	"github.com/iliyamo/club-space-reservation/internal/repository/memstore"
	"github.com/iliyamo/club-space-reservation/internal/router"
	"github.com/iliyamo/club-space-reservation/internal/service"
)

type stores struct {
	reservations service.ReservationStore
	spaces       service.SpaceStore
	clubs        service.ClubStore
	close        func() error
}

// openStores selects the storage backend.  mysql runs the schema
// migration before returning.
func openStores(ctx context.Context, cfg config.Config, log *logger.Logger) (stores, error) {
	if cfg.StoreBackend == "memory" {
		log.Warn("STORE", "using in-memory store; data is lost on exit")
		mem := memstore.New(nil)
		return stores{mem.Reservations(), mem.Spaces(), mem.Clubs(), func() error { return nil }}, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return stores{}, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	log.Infof("STORE", "connected to mysql %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return stores{
		reservations: repository.NewReservationRepo(db),
		spaces:       repository.NewSpaceRepo(db),
		clubs:        repository.NewClubRepo(db),
		close:        db.Close,
	}, nil
}

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()

	log, err := logger.New(cfg.LogDir, logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		panic(err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("STORE", err.Error())
	}
	defer st.close()
	if _, err := st.spaces.EnsureDefault(ctx); err != nil {
		log.Fatal("STORE", "ensure default space: "+err.Error())
	}

	// Redis is optional: without it cache and rate limit are passthroughs.
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()
	rdb, err := config.NewRedisClient(ctx, config.RedisOptions())
	if err != nil {
		log.Warnf("REDIS", "disabled: %v", err)
	} else {
		defer rdb.Close()
	}
	invalidator := middleware.NewCacheInvalidator(cacheCfg, rdb, log)

	sinks := service.Sinks{invalidator}
	if cfg.EventsEnabled {
		sinks = append(sinks, queue.NewPublisher(cfg.RabbitURL, log))
		consumer := &queue.Consumer{URL: cfg.RabbitURL, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("QUEUE", "consumer stopped: %v", err)
			}
		}()
	}

	reservations := service.NewReservationService(st.reservations, st.spaces, st.clubs, sinks, log)
	dashboards := service.NewDashboardService(st.reservations, st.spaces, st.clubs, cfg.Location, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.NewTokenBucket(rlCfg, rdb, log))
	spacesCache := middleware.NewRedisCache(cacheCfg, rdb, cacheCfg.SpacesTTL)
	dashboardCache := middleware.NewRedisCache(cacheCfg, rdb, cacheCfg.DashboardTTL)
	loginLimit := middleware.NewTokenBucket(rlCfg.ForLogin(), rdb, log)

	spaceH := handler.NewSpaceHandler(st.spaces, invalidator)
	reservationH := handler.NewReservationHandler(reservations, st.spaces, st.clubs, cfg.Location)
	dashboardH := handler.NewDashboardHandler(dashboards)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, st.clubs, log), cfg.JWTSecret, loginLimit)
	router.RegisterPublic(e, spaceH, spacesCache)
	router.RegisterClub(e, reservationH, dashboardH, cfg.JWTSecret)
	router.RegisterAdmin(e, router.AdminHandlers{
		Reservations: reservationH,
		Spaces:       spaceH,
		Clubs:        handler.NewClubHandler(st.clubs, cfg.BcryptCost, invalidator),
		Dashboards:   dashboardH,
	}, dashboardCache, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Infof("SERVER", "listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreBackend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("SERVER", err.Error())
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("SERVER", "shutdown: %v", err)
	}
	log.Info("SERVER", "stopped")
}
