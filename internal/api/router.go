package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/handler"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/middleware"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/view"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common/security"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/websession"
)

// Deps is everything the router wires into its handlers.
type Deps struct {
	DB       *sqlx.DB
	Tokens   *security.TokenAuth
	Gate     *middleware.Gate
	Renderer *view.Renderer
	Static   http.FileSystem

	// SessionStore and SessionOptions back the flash and CSRF web session.
	SessionStore   websession.Store
	SessionOptions websession.Options

	AuthService *service.AuthService
	PostService *service.PostService
	UserService *service.UserService

	Cookies           handler.CookieOptions
	PasswordMinLength int
}

// NewRouter builds the HTTP handler. Static assets and /health bypass the
// web session; every other route runs with it and with the CSRF check.
func NewRouter(deps Deps) (http.Handler, error) {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Decodes the token cookie once per request; the gate reads the result.
	r.Use(deps.Tokens.Verifier())

	base := handler.NewBase(deps.Renderer, deps.Gate)
	errorHandler := handler.NewErrorHandler(base)

	sessionOpts := deps.SessionOptions
	if sessionOpts.OnError == nil {
		sessionOpts.OnError = errorHandler.Internal
	}
	sessions, err := websession.NewManager(deps.SessionStore, sessionOpts)
	if err != nil {
		return nil, err
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.PingContext(ctx); err != nil {
			log.Printf("WARN: health check: %v", err)
			common.RespondWithError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(deps.Static)))
	}

	r.Group(func(web chi.Router) {
		web.Use(sessions.Middleware)
		web.Use(sessions.CSRF(errorHandler.CSRFFailure))

		errorHandler.RegisterRoutes(web)
		handler.NewUserHandler(base, deps.AuthService, deps.Cookies, deps.PasswordMinLength).RegisterRoutes(web)
		handler.NewBlogHandler(base, deps.PostService).RegisterRoutes(web)
		handler.NewAdminHandler(base, deps.UserService).RegisterRoutes(web)
	})

	r.NotFound(errorHandler.NotFound)

	return r, nil
}
