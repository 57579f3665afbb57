// Command seed creates the initial administrator. The password is read from
// ADMIN_PASSWORD and the name from ADMIN_NAME (default "admin").
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common/security"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/config"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is required")
	}

	tokens, err := security.NewTokenAuth(cfg.JWTAlgorithm, cfg.JWTKey, cfg.JWTExp)
	if err != nil {
		log.Fatalf("Could not initialize JWT: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer database.Close()

	authService := service.NewAuthService(
		repository.NewSQLUserRepository(db),
		repository.NewSQLSessionRepository(db),
		tokens,
		security.NewPasswordHasher(cfg.BcryptCost),
		cfg.PasswordMinLength,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, created, err := authService.SeedAdmin(ctx, name, password)
	if err != nil {
		log.Fatalf("Could not seed administrator: %v", err)
	}
	if created {
		log.Printf("INFO: administrator %q created (id=%d)", admin.Name, admin.ID)
		return
	}
	log.Printf("INFO: administrator %q already exists (id=%d)", admin.Name, admin.ID)
}
