package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"schoolhub/docs"
	"schoolhub/internal/auth"
	"schoolhub/internal/cache"
	"schoolhub/internal/config"
	"schoolhub/internal/db"
	"schoolhub/internal/handler"
	"schoolhub/internal/repository"
	"schoolhub/internal/router"
	"schoolhub/internal/service"
)

// @title SchoolHub Identity API
// @version 1.0
// @description Accounts, student and teacher profiles, and role-based access for the school directory.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "schoolhub:")
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Printf("redis unavailable, serving without cache: %v", err)
	}

	store := repository.NewStore(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLifetime)
	ttl := service.CacheTTL{Stats: cfg.StatsCacheTTL, Account: cfg.AccountCacheTTL}

	identityService := service.NewIdentityService(store, jwtService, cacheClient, ttl)
	directoryService := service.NewDirectoryService(store, cacheClient, ttl)

	router.Register(e, jwtService, router.Handlers{
		Auth:    handler.NewAuthHandler(identityService),
		User:    handler.NewUserHandler(identityService, directoryService),
		Student: handler.NewStudentHandler(identityService, directoryService),
		Teacher: handler.NewTeacherHandler(identityService, directoryService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
