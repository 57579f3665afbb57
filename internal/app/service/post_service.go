package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository"
)

const fallbackSlug = "entrada"

// reservedSlugs are the static segments routed under /blog/{id}/. A post
// slug equal to one of them would shadow its own permalink.
var reservedSlugs = map[string]bool{
	"editar": true,
}

type PostService struct {
	postRepo repository.PostRepository
	validate *validator.Validate
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo, validate: newValidator()}
}

type PostRequest struct {
	Title string `validate:"required,max=40"`
	Body  string `validate:"required"`
}

// normalize validates req and returns the escaped title and body plus the
// slug of the raw title.
func (s *PostService) normalize(req PostRequest) (title, body, postSlug string, err error) {
	req.Title = strings.TrimSpace(req.Title)
	if strings.TrimSpace(req.Body) == "" {
		req.Body = ""
	}
	if err := s.validate.Struct(req); err != nil {
		return "", "", "", validationError(err)
	}

	postSlug = slug.MakeLang(req.Title, "es")
	if postSlug == "" {
		postSlug = fallbackSlug
	}
	if reservedSlugs[postSlug] {
		postSlug += "-1"
	}
	return html.EscapeString(req.Title), html.EscapeString(req.Body), postSlug, nil
}

func (s *PostService) Create(ctx context.Context, authorID int64, req PostRequest) (*model.Post, error) {
	title, body, postSlug, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	post := &model.Post{Title: title, Slug: postSlug, Body: body, UserID: authorID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.postRepo.FindByID(ctx, id)
}

func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	return s.postRepo.List(ctx)
}

// Update replaces title and body. A missing post yields common.ErrNotFound.
func (s *PostService) Update(ctx context.Context, id int64, req PostRequest) (*model.Post, error) {
	title, body, postSlug, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	post := &model.Post{ID: id, Title: title, Slug: postSlug, Body: body}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	return nil
}
