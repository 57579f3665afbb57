package view

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/web"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(web.Templates(), "1.2.3", "teal")
	require.NoError(t, err)
	return r
}

func TestRendererLoadsEveryPage(t *testing.T) {
	r := newTestRenderer(t)
	for _, name := range []string{
		"blog/index", "blog/new", "blog/message", "blog/edit",
		"user/register", "user/login", "admin/users",
		"errors/not_found", "errors/error",
	} {
		assert.Contains(t, r.pages, name)
	}
	assert.NotContains(t, r.pages, "layout")
}

func TestRenderLayoutAndFlashes(t *testing.T) {
	r := newTestRenderer(t)
	rr := httptest.NewRecorder()

	r.Render(rr, http.StatusOK, "user/login", Page{
		Title:     "Inicio de Sesión",
		Action:    "/usuario/autenticar",
		CSRFToken: "tok",
		Errors:    []string{"¡Usuario y/o contraseña invalidos!"},
	})

	body := rr.Body.String()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Inicio de Sesión</title>")
	assert.Contains(t, body, `action="/usuario/autenticar"`)
	assert.Contains(t, body, `name="formid" value="tok"`)
	assert.Contains(t, body, "¡Usuario y/o contraseña invalidos!")
	assert.Contains(t, body, `class="theme-teal"`)
	assert.Contains(t, body, "v1.2.3")
}

func TestRenderStoredTextIsEscapedExactlyOnce(t *testing.T) {
	r := newTestRenderer(t)
	post := &model.Post{
		ID:        3,
		Title:     "&lt;b&gt;hola&lt;/b&gt;",
		Slug:      "b-hola-b",
		Body:      "a &amp; b",
		CreatedAt: time.Date(2025, 7, 2, 5, 47, 0, 0, time.Local),
	}

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, "blog/message", Page{Title: "hola", Data: post})
	body := rr.Body.String()
	assert.Contains(t, body, "<h1>&lt;b&gt;hola&lt;/b&gt;</h1>")
	assert.Contains(t, body, "a &amp; b")
	assert.NotContains(t, body, "&amp;lt;")
	assert.Contains(t, body, "02-07-2025 05:47")
	assert.NotContains(t, body, "Eliminar", "only admins see actions")

	rr = httptest.NewRecorder()
	r.Render(rr, http.StatusOK, "blog/edit", Page{Title: "editar", Action: "/blog/3/editar", IsAdmin: true, Data: post})
	body = rr.Body.String()
	assert.Contains(t, body, `value="&lt;b&gt;hola&lt;/b&gt;"`)
	assert.Contains(t, body, `name="postId" value="3"`)
}

func TestRenderStatusAndUnknownPage(t *testing.T) {
	r := newTestRenderer(t)

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusNotFound, "errors/not_found", Page{Title: "No encontrado"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "404")

	rr = httptest.NewRecorder()
	r.Render(rr, http.StatusOK, "nope", Page{})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
