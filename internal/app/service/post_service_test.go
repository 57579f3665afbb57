package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository/mock"
)

func TestPostService(t *testing.T) {
	ctx := context.Background()
	users := mock.NewUserRepository()
	author := &model.User{Name: "ana"}
	require.NoError(t, users.Create(ctx, author))
	svc := NewPostService(mock.NewPostRepository(users))

	t.Run("create escapes free text once", func(t *testing.T) {
		post, err := svc.Create(ctx, author.ID, PostRequest{
			Title: "  <b>Año</b> nuevo ",
			Body:  `<script>alert("x" & 'y')</script>`,
		})
		require.NoError(t, err)
		assert.Equal(t, "&lt;b&gt;Año&lt;/b&gt; nuevo", post.Title)
		assert.Equal(t, "&lt;script&gt;alert(&#34;x&#34; &amp; &#39;y&#39;)&lt;/script&gt;", post.Body)
		assert.Equal(t, "b-ano-b-nuevo", post.Slug)

		got, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana", got.AuthorName)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, author.ID, PostRequest{Title: "hola", Body: "   "})
		assert.ErrorIs(t, err, common.ErrValidation)
		assertUserMessage(t, err, MsgRequiredFields)

		_, err = svc.Create(ctx, author.ID, PostRequest{Title: strings.Repeat("x", 41), Body: "cuerpo"})
		assertUserMessage(t, err, MsgTitleTooLong)
	})

	t.Run("symbol-only titles get a fallback slug", func(t *testing.T) {
		post, err := svc.Create(ctx, author.ID, PostRequest{Title: "!!!", Body: "cuerpo"})
		require.NoError(t, err)
		assert.Equal(t, fallbackSlug, post.Slug)
	})

	t.Run("update and delete", func(t *testing.T) {
		post, err := svc.Create(ctx, author.ID, PostRequest{Title: "Hola", Body: "uno"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, post.ID, PostRequest{Title: "Hola mundo", Body: "dos"})
		require.NoError(t, err)
		got, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hola mundo", got.Title)
		assert.Equal(t, "hola-mundo", got.Slug)
		assert.Equal(t, "dos", got.Body)

		_, err = svc.Update(ctx, 999, PostRequest{Title: "x", Body: "y"})
		assert.ErrorIs(t, err, common.ErrNotFound)

		require.NoError(t, svc.Delete(ctx, post.ID))
		assert.ErrorIs(t, svc.Delete(ctx, post.ID), common.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		posts, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("slugs never match a route segment", func(t *testing.T) {
		post, err := svc.Create(ctx, author.ID, PostRequest{Title: "Editar", Body: "cuerpo"})
		require.NoError(t, err)
		assert.Equal(t, "editar-1", post.Slug)

		post, err = svc.Update(ctx, post.ID, PostRequest{Title: "¡EDITAR!", Body: "cuerpo"})
		require.NoError(t, err)
		assert.Equal(t, "editar-1", post.Slug)
	})
}

func TestRoleChangesFromForm(t *testing.T) {
	form := url.Values{
		"user-1-rol":  {"1"},
		"user-2-rol":  {"0"},
		"user-3-rol":  {"admin"},
		"xuser-4-rol": {"1"},
		"user-5-rolx": {"1"},
		"user--rol":   {"1"},
		"formid":      {"token"},
		"user-99-rol": {"1"},
	}

	assert.Equal(t, map[int64]bool{1: true, 2: false, 3: false, 99: true}, RoleChangesFromForm(form))
}

func TestUpdateRoles(t *testing.T) {
	ctx := context.Background()
	users := mock.NewUserRepository()
	ana := &model.User{Name: "ana"}
	bob := &model.User{Name: "bob", IsAdmin: true}
	require.NoError(t, users.Create(ctx, ana))
	require.NoError(t, users.Create(ctx, bob))
	svc := NewUserService(users)

	updated, err := svc.UpdateRoles(ctx, map[int64]bool{ana.ID: true, bob.ID: false, 42: true})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsAdmin)
	assert.False(t, list[1].IsAdmin)

	updated, err = svc.UpdateRoles(ctx, map[int64]bool{42: true})
	require.NoError(t, err)
	assert.Zero(t, updated)
}
