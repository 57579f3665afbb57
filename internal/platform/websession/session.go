package websession

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common/security"
)

const CookieName = "blog_sid"

type contextKey string

const stateCtxKey contextKey = "webSession"

// State is the server-side data of one browser session.
type State struct {
	Errors  []string `json:"errors,omitempty"`
	Success []string `json:"success,omitempty"`

	dirty bool
}

func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
	s.dirty = true
}

func (s *State) AddSuccess(msg string) {
	s.Success = append(s.Success, msg)
	s.dirty = true
}

// ResetFlashes drops messages left over from earlier requests.
func (s *State) ResetFlashes() {
	if len(s.Errors) == 0 && len(s.Success) == 0 {
		return
	}
	s.Errors, s.Success = nil, nil
	s.dirty = true
}

// TakeFlashes returns the pending messages and clears them.
func (s *State) TakeFlashes() (errs, success []string) {
	errs, success = s.Errors, s.Success
	s.ResetFlashes()
	return errs, success
}

// FromContext returns the state attached by Manager.Middleware. Without the
// middleware it returns a throwaway state so callers never see nil.
func FromContext(ctx context.Context) *State {
	if s, ok := ctx.Value(stateCtxKey).(*State); ok {
		return s
	}
	return &State{}
}

func NewContext(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateCtxKey, s)
}

type Manager struct {
	store   Store
	codec   *securecookie.SecureCookie
	csrfKey []byte
	secure  bool
	maxAge  time.Duration
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

type Options struct {
	Secret []byte
	Secure bool
	MaxAge time.Duration
	// OnError renders the response when the store cannot be reached.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

func NewManager(store Store, opts Options) (*Manager, error) {
	idKey, err := security.DeriveKey(opts.Secret, "session-id")
	if err != nil {
		return nil, err
	}
	csrfKey, err := security.DeriveKey(opts.Secret, "csrf")
	if err != nil {
		return nil, err
	}
	codec := securecookie.New(idKey, nil)
	codec.MaxAge(int(opts.MaxAge / time.Second))

	onError := opts.OnError
	if onError == nil {
		onError = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	return &Manager{
		store:   store,
		codec:   codec,
		csrfKey: csrfKey,
		secure:  opts.Secure,
		maxAge:  opts.MaxAge,
		onError: onError,
	}, nil
}

// Middleware loads the browser's state, creating it on first visit, and
// persists it after the handler when it changed. The cookie is reissued on
// every request so an active browser keeps its session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		state, id, err := m.load(ctx, r)
		if err != nil {
			log.Printf("ERROR: websession: load: %v", err)
			m.onError(w, r, err)
			return
		}

		if id == "" {
			id = uuid.NewString()
			state.dirty = true
		}
		value, err := m.encodeID(id)
		if err != nil {
			log.Printf("ERROR: websession: encode cookie: %v", err)
			m.onError(w, r, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    value,
			Path:     "/",
			MaxAge:   int(m.maxAge / time.Second),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(NewContext(ctx, state)))

		if state.dirty {
			if err := m.store.Save(context.WithoutCancel(ctx), id, state); err != nil {
				log.Printf("ERROR: websession: save: %v", err)
			}
		}
	})
}

// load returns the stored state and its id, or a fresh state and an empty id
// when the browser has no usable session.
func (m *Manager) load(ctx context.Context, r *http.Request) (*State, string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return &State{}, "", nil
	}
	id, ok := m.decodeID(cookie.Value)
	if !ok {
		return &State{}, "", nil
	}

	state, err := m.store.Load(ctx, id)
	switch {
	case err == nil:
		return state, id, nil
	case errors.Is(err, ErrNoSession):
		return &State{}, "", nil
	case errors.Is(err, ErrCorruptState):
		log.Printf("WARN: websession: dropping unreadable session %s", id)
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, "", err
		}
		return &State{}, "", nil
	default:
		return nil, "", err
	}
}

func (m *Manager) encodeID(id string) (string, error) {
	value, err := m.codec.Encode(CookieName, id)
	if err != nil {
		return "", fmt.Errorf("websession: %w", err)
	}
	return value, nil
}

// decodeID rejects tampered, foreign and expired cookie values.
func (m *Manager) decodeID(value string) (string, bool) {
	var id string
	if err := m.codec.Decode(CookieName, value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}
