package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/middleware"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/websession"
)

const (
	usersPath      = "/admin/usuarios"
	roleChangePath = "/usuario/rol"
)

type AdminHandler struct {
	*Base
	userService *service.UserService
}

func NewAdminHandler(base *Base, userService *service.UserService) *AdminHandler {
	return &AdminHandler{Base: base, userService: userService}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(admin chi.Router) {
		admin.Use(h.gate.AuthVerify)
		admin.Use(h.gate.VerifyAdmin)
		admin.Get(usersPath, h.listUsers)
		admin.Post(roleChangePath, h.changeRoles)
	})
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "admin/users", "Gestión de roles de usuario", roleChangePath, users)
}

func (h *AdminHandler) changeRoles(w http.ResponseWriter, r *http.Request) {
	state := websession.FromContext(r.Context())
	state.ResetFlashes()

	if err := r.ParseForm(); err != nil {
		flashError(r, common.NewUserError(common.ErrBadRequest, service.MsgRequestFailed))
		common.Redirect(w, r, usersPath)
		return
	}

	updated, err := h.userService.UpdateRoles(r.Context(), service.RoleChangesFromForm(r.PostForm))
	if err != nil {
		flashError(r, err)
		common.Redirect(w, r, usersPath)
		return
	}
	if updated > 0 {
		if identity, ok := middleware.GetIdentityFromContext(r.Context()); ok {
			log.Printf("INFO: %s updated the role of %d user(s)", identity.Username, updated)
		}
		state.AddSuccess(service.MsgRolesSaved)
	}
	common.Redirect(w, r, usersPath)
}
