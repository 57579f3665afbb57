package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/middleware"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/view"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/websession"
)

const NotFoundPath = "/not-found"

// Base holds what every HTML handler needs to build a page.
type Base struct {
	view *view.Renderer
	gate *middleware.Gate
}

func NewBase(renderer *view.Renderer, gate *middleware.Gate) *Base {
	return &Base{view: renderer, gate: gate}
}

// page fills the per-request part of a view: identity, pending flashes and
// the CSRF token. Taking the flashes consumes them.
func (b *Base) page(r *http.Request, title, action string, data any) view.Page {
	state := websession.FromContext(r.Context())
	errs, success := state.TakeFlashes()
	return view.Page{
		Title:     title,
		Action:    action,
		IsAdmin:   b.gate.IsAdmin(r),
		IsLogged:  b.gate.IsLogged(r),
		UserName:  b.gate.UserName(r),
		CSRFToken: websession.CSRFToken(r),
		Errors:    errs,
		Success:   success,
		Data:      data,
	}
}

func (b *Base) render(w http.ResponseWriter, r *http.Request, name, title, action string, data any) {
	b.view.Render(w, http.StatusOK, name, b.page(r, title, action, data))
}

func (b *Base) notFound(w http.ResponseWriter, r *http.Request) {
	common.Redirect(w, r, NotFoundPath)
}

// serverError renders the error page with the status err maps to.
func (b *Base) serverError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
	} else {
		log.Printf("WARN: %s %s: %v", r.Method, r.URL.Path, err)
	}
	b.view.Render(w, status, "errors/error", b.page(r, "Error", "", nil))
}

// flashError queues the user-facing message of err. Errors without one are
// logged and reported with a generic message.
func flashError(r *http.Request, err error) {
	msg, ok := common.UserMessage(err)
	if !ok {
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
		msg = service.MsgRequestFailed
	}
	websession.FromContext(r.Context()).AddError(msg)
}

// parseID accepts positive decimal ids only.
func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
