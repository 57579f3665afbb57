package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/handler"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/middleware"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/view"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/worker"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common/security"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/config"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/database"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/kvstore"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/websession"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/web"
)

const sessionKeyPrefix = "blog:session"

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	tokens, err := security.NewTokenAuth(cfg.JWTAlgorithm, cfg.JWTKey, cfg.JWTExp)
	if err != nil {
		log.Fatalf("Could not initialize JWT: %v", err)
	}
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	rdb, err := kvstore.Connect(cfg)
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	defer kvstore.Close()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewSQLUserRepository(db)
	sessionRepo := repository.NewSQLSessionRepository(db)
	postRepo := repository.NewSQLPostRepository(db)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, sessionRepo, tokens, security.NewPasswordHasher(cfg.BcryptCost), cfg.PasswordMinLength)
	postService := service.NewPostService(postRepo)
	userService := service.NewUserService(userRepo)

	// 7. Initialize Session Sweeper (as a goroutine)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.SessionSweepInterval > 0 {
		sweeper := worker.NewSessionSweeper(rdb, sessionRepo, cfg.SessionSweepInterval)
		go sweeper.Start(workerCtx)
		fmt.Println("Session sweeper started.")
	}

	// 8. Initialize Views
	renderer, err := view.NewRenderer(web.Templates(), cfg.AppVersion, cfg.WidgetColor)
	if err != nil {
		log.Fatalf("Could not load templates: %v", err)
	}

	// 9. Initialize Router & HTTP Server
	sessionOpts := websession.Options{
		Secret: cfg.SessionSecret,
		Secure: cfg.IsProduction(),
		MaxAge: cfg.SessionMaxAge,
	}
	router, err := api.NewRouter(api.Deps{
		DB:             db,
		Tokens:         tokens,
		Gate:           middleware.NewGate(authService, cfg.IsProduction()),
		Renderer:       renderer,
		Static:         http.FS(web.Static()),
		SessionStore:   websession.NewRedisStore(rdb, sessionKeyPrefix, cfg.SessionMaxAge),
		SessionOptions: sessionOpts,

		AuthService: authService,
		PostService: postService,
		UserService: userService,

		Cookies:           handler.CookieOptions{MaxAge: cfg.SessionMaxAge, Secure: cfg.IsProduction()},
		PasswordMinLength: cfg.PasswordMinLength,
	})
	if err != nil {
		log.Fatalf("Could not build router: %v", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s (env=%s, version=%s)", cfg.APIPort, cfg.AppEnv, cfg.AppVersion)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal sweeper to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and sweeper stopped gracefully.")
}
