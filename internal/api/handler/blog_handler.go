package handler

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/api/middleware"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/app/service"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/websession"
)

const (
	newPostPath    = "/blog/nuevo"
	editPostAction = "/blog/editar"
	deleteAction   = "/blog/eliminar"
	blogTitle      = "Blog"
)

type BlogHandler struct {
	*Base
	postService *service.PostService
}

func NewBlogHandler(base *Base, postService *service.PostService) *BlogHandler {
	return &BlogHandler{Base: base, postService: postService}
}

func (h *BlogHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(authed chi.Router) {
		authed.Use(h.gate.AuthVerify)
		authed.Get("/", h.listPosts)
		authed.Get(newPostPath, h.newPostForm)
		authed.Post(newPostPath, h.createPost)
		authed.Get("/blog/{id}", h.showPost)
		authed.Get("/blog/{id}/{slug}", h.showPost)

		authed.Group(func(admin chi.Router) {
			admin.Use(h.gate.VerifyAdmin)
			admin.Get("/blog/{id}/editar", h.editPostForm)
			admin.Post("/blog/{id}/editar", h.updatePost)
			admin.Post(editPostAction, h.updatePost)
			admin.Post(deleteAction, h.deletePost)
		})
	})
}

func editPath(id int64) string {
	return fmt.Sprintf("/blog/%d/editar", id)
}

func (h *BlogHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "blog/index", blogTitle, "", posts)
}

func (h *BlogHandler) newPostForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "blog/new", "Nueva Entrada", newPostPath, nil)
}

func (h *BlogHandler) createPost(w http.ResponseWriter, r *http.Request) {
	websession.FromContext(r.Context()).ResetFlashes()

	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		flashError(r, errors.New("create post without identity"))
		common.Redirect(w, r, newPostPath)
		return
	}

	_, err := h.postService.Create(r.Context(), identity.UserID, service.PostRequest{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	})
	if err != nil {
		flashError(r, err)
		common.Redirect(w, r, newPostPath)
		return
	}

	websession.FromContext(r.Context()).AddSuccess(service.MsgPostCreated)
	common.Redirect(w, r, newPostPath)
}

func (h *BlogHandler) showPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r)
		return
	}
	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "blog/message", html.UnescapeString(post.Title), deleteAction, post)
}

func (h *BlogHandler) editPostForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r)
		return
	}
	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "blog/edit", html.UnescapeString(post.Title), editPostAction, post)
}

// updatePost takes the id from the path, or from the postId field when the
// form posts to /blog/editar.
func (h *BlogHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	websession.FromContext(r.Context()).ResetFlashes()

	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.PostFormValue("postId")
	}
	id, ok := parseID(raw)
	if !ok {
		h.notFound(w, r)
		return
	}

	_, err := h.postService.Update(r.Context(), id, service.PostRequest{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	})
	switch {
	case errors.Is(err, common.ErrNotFound):
		h.notFound(w, r)
		return
	case err != nil:
		flashError(r, err)
		common.Redirect(w, r, editPath(id))
		return
	}

	websession.FromContext(r.Context()).AddSuccess(service.MsgPostUpdated)
	common.Redirect(w, r, editPath(id))
}

func (h *BlogHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	websession.FromContext(r.Context()).ResetFlashes()

	id, ok := parseID(r.PostFormValue("post"))
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := h.postService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	websession.FromContext(r.Context()).AddSuccess(service.MsgPostDeleted)
	common.Redirect(w, r, middleware.HomePath)
}
