package main

import (
	"context"
	"log"
	"time"

	"github.com/caarlos0/env/v11"

	"schoolhub/internal/auth"
	"schoolhub/internal/cache"
	"schoolhub/internal/config"
	"schoolhub/internal/db"
	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/model"
	"schoolhub/internal/repository"
	"schoolhub/internal/service"
)

// seedAdmin describes the first administrator.
type seedAdmin struct {
	Email     string `env:"SEED_ADMIN_EMAIL,required,notEmpty"`
	Password  string `env:"SEED_ADMIN_PASSWORD"`
	FirstName string `env:"SEED_ADMIN_FIRST_NAME" envDefault:"System"`
	LastName  string `env:"SEED_ADMIN_LAST_NAME"  envDefault:"Admin"`
}

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	var admin seedAdmin
	if err := env.Parse(&admin); err != nil {
		log.Fatalf("seed config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "schoolhub:")
	defer cacheClient.Close()

	identity := service.NewIdentityService(
		repository.NewStore(gormDB),
		auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLifetime),
		cacheClient,
		service.CacheTTL{Stats: cfg.StatsCacheTTL, Account: cfg.AccountCacheTTL},
	)

	fields := service.Fields{
		FirstName: &admin.FirstName,
		LastName:  &admin.LastName,
		Email:     &admin.Email,
	}
	if admin.Password != "" {
		fields.Password = &admin.Password
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := identity.AdminCreate(ctx, model.RoleAdmin, fields)
	switch {
	case apperrors.IsKind(err, apperrors.KindDuplicateEmail):
		log.Printf("Admin %s already exists, skipping", admin.Email)
		return
	case err != nil:
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("Created admin %s (%s)", res.User.Email, res.User.ID)
	if res.TemporaryPassword != "" {
		log.Printf("Temporary password: %s", res.TemporaryPassword)
	}
	log.Println("Seed completed successfully")
}
