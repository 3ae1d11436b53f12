package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-checkin/internal/audit"
	"github.com/iliyamo/conference-checkin/internal/auth"
	"github.com/iliyamo/conference-checkin/internal/config"
	"github.com/iliyamo/conference-checkin/internal/database"
	"github.com/iliyamo/conference-checkin/internal/handler"
	"github.com/iliyamo/conference-checkin/internal/middleware"
	"github.com/iliyamo/conference-checkin/internal/qrtoken"
	"github.com/iliyamo/conference-checkin/internal/queue"
	"github.com/iliyamo/conference-checkin/internal/repository"
	"github.com/iliyamo/conference-checkin/internal/router"
	"github.com/iliyamo/conference-checkin/internal/service"
)

func main() {
	// .env is optional; containerized deployments pass real env vars.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	txm := database.NewTxManager(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	confRepo := repository.NewConferenceRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	regRepo := repository.NewRegistrationRepo(db)
	checkinRepo := repository.NewCheckinRepo(db)

	registrations := service.NewRegistrationService(txm, regRepo, confRepo, userRepo, qrtoken.RandomGenerator{})
	checkins := service.NewCheckinService(txm, regRepo, checkinRepo, userRepo, sessionRepo)

	gate := auth.NewGate()
	sink := audit.NewAMQPSink()

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	regHandler := handler.NewRegistrationHandler(registrations, gate, sink)
	checkinHandler := handler.NewCheckinHandler(checkins, gate, sink)

	e := echo.New()

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("[redis] unavailable, rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterCheckin(e, regHandler, checkinHandler, cfg.JWTSecret)

	// Drain checkin.recorded events into the attendance log in the
	// background; the consumer reconnects on broker failures.
	go func() {
		if err := queue.StartCheckinConsumer(); err != nil {
			log.Printf("[queue] consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
