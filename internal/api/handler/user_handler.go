package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/middleware"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common/security"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/websession"
)

const (
	registerPath = "/usuario/registro"
	loginAction  = "/usuario/autenticar"
)

type UserHandler struct {
	*Base
	authService       *service.AuthService
	cookieMaxAge      time.Duration
	secureCookies     bool
	passwordMinLength int
}

// CookieOptions controls the token cookie set at login.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

func NewUserHandler(base *Base, authService *service.AuthService, cookies CookieOptions, passwordMinLength int) *UserHandler {
	return &UserHandler{
		Base:              base,
		authService:       authService,
		cookieMaxAge:      cookies.MaxAge,
		secureCookies:     cookies.Secure,
		passwordMinLength: passwordMinLength,
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get(registerPath, h.registerForm)
	r.Post(registerPath, h.register)
	r.Post("/usuario", h.register)
	r.Get("/usuario/logout", h.logout)

	r.Group(func(guest chi.Router) {
		guest.Use(h.gate.RedirectIfAuthenticated)
		guest.Get(middleware.LoginPath, h.loginForm)
		guest.Post(loginAction, h.login)
	})
}

func (h *UserHandler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "user/register", "Registro de Usuario", registerPath, h.passwordMinLength)
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	websession.FromContext(r.Context()).ResetFlashes()

	req := service.RegisterRequest{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		Password2: r.PostFormValue("password2"),
	}
	if _, err := h.authService.Register(r.Context(), req); err != nil {
		flashError(r, err)
		common.Redirect(w, r, registerPath)
		return
	}

	websession.FromContext(r.Context()).AddSuccess(service.MsgUserRegistered)
	common.Redirect(w, r, registerPath)
}

func (h *UserHandler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "user/login", "Inicio de Sesión", loginAction, nil)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	websession.FromContext(r.Context()).ResetFlashes()

	resp, err := h.authService.Login(r.Context(), service.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		flashError(r, err)
		common.Redirect(w, r, middleware.LoginPath)
		return
	}

	middleware.SetTokenCookie(w, resp.Token, int(h.cookieMaxAge/time.Second), h.secureCookies)
	log.Printf("INFO: user %q logged in (session=%s)", resp.User.Name, resp.Session.SessionID)
	common.Redirect(w, r, middleware.HomePath)
}

// logout revokes the session named by the token, if any, and always drops
// the cookie.
func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	if claims, err := security.ClaimsFromContext(r.Context()); err == nil {
		if err := h.authService.Logout(r.Context(), claims); err != nil {
			log.Printf("ERROR: logout of session %s failed: %v", claims.SessionID, err)
		}
	}
	middleware.ClearTokenCookie(w, h.secureCookies)
	common.Redirect(w, r, middleware.LoginPath)
}
