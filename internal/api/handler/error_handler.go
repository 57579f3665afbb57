package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/websession"
)

type ErrorHandler struct {
	*Base
}

func NewErrorHandler(base *Base) *ErrorHandler {
	return &ErrorHandler{Base: base}
}

func (h *ErrorHandler) RegisterRoutes(r chi.Router) {
	r.Get(NotFoundPath, h.NotFound)
}

func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, http.StatusNotFound, "errors/not_found", h.page(r, "No encontrado", "", nil))
}

// Internal renders the generic error page for failures outside a handler,
// such as an unreachable session store.
func (h *ErrorHandler) Internal(w http.ResponseWriter, r *http.Request, err error) {
	h.serverError(w, r, err)
}

// CSRFFailure sends the client back where it came from with a flash.
func (h *ErrorHandler) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	err := fmt.Errorf("%w: %v", common.ErrCSRF, websession.CSRFFailureReason(r))
	log.Printf("WARN: %s %s from %s: %v", r.Method, r.URL.Path, r.RemoteAddr, err)
	state := websession.FromContext(r.Context())
	state.ResetFlashes()
	state.AddError(service.MsgCSRFFailed)
	common.RedirectBack(w, r, "/")
}
