package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common/security"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository"
)

type AuthService struct {
	userRepo          repository.UserRepository
	sessionRepo       repository.SessionRepository
	tokens            *security.TokenAuth
	hasher            *security.PasswordHasher
	validate          *validator.Validate
	passwordMinLength int
	now               func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens *security.TokenAuth,
	hasher *security.PasswordHasher,
	passwordMinLength int,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		sessionRepo:       sessionRepo,
		tokens:            tokens,
		hasher:            hasher,
		validate:          newValidator(),
		passwordMinLength: passwordMinLength,
		now:               time.Now,
	}
}

type RegisterRequest struct {
	Username  string `validate:"required,max=40,nohtml"`
	Password  string `validate:"required,maxbytes=72"`
	Password2 string `validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type LoginResponse struct {
	User    *model.User
	Token   string
	Session *model.Session
}

// Register creates a non-admin user.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if len(req.Password) < s.passwordMinLength {
		return nil, common.NewUserError(common.ErrValidation, fmt.Sprintf(MsgPasswordMinLength, s.passwordMinLength))
	}

	if _, err := s.userRepo.FindByName(ctx, req.Username); err == nil {
		return nil, common.NewUserError(common.ErrConflict, MsgUsernameTaken)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Name: req.Username, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Lost a race with a concurrent registration.
			return nil, common.NewUserError(err, MsgUsernameTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("INFO: user %q registered (id=%d)", user.Name, user.ID)
	return user, nil
}

// Login checks the credentials, then issues a token bound to a new session
// row whose expiry equals the token's.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	invalid := common.NewUserError(common.ErrInvalidCredentials, MsgInvalidCredentials)
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid
	}

	user, err := s.userRepo.FindByName(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Check(req.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid
	}

	sessionID := uuid.NewString()
	token, claims, err := s.tokens.Issue(user.Name, sessionID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &model.Session{
		UserID:    user.ID,
		SessionID: sessionID,
		Token:     token,
		Active:    true,
		ExpireAt:  claims.ExpiresAt.Unix(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	user.PasswordHash = ""
	return &LoginResponse{User: user, Token: token, Session: session}, nil
}

// ResolveSession returns the live session named by claims, or
// common.ErrSessionNotLive when it was revoked or has expired.
func (s *AuthService) ResolveSession(ctx context.Context, claims *security.SessionClaims) (*model.Session, error) {
	session, err := s.sessionRepo.FindLive(ctx, claims.SessionID, s.now())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrSessionNotLive
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return session, nil
}

// Logout revokes the session named by claims. A nil claims value or a
// session that is already dead is not an error.
func (s *AuthService) Logout(ctx context.Context, claims *security.SessionClaims) error {
	if claims == nil {
		return nil
	}
	session, err := s.ResolveSession(ctx, claims)
	if err != nil {
		if errors.Is(err, common.ErrSessionNotLive) {
			return nil
		}
		return err
	}
	if err := s.sessionRepo.Deactivate(ctx, session.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	return nil
}

// SeedAdmin makes sure an administrator named name exists. It reports
// whether a user was created.
func (s *AuthService) SeedAdmin(ctx context.Context, name, password string) (*model.User, bool, error) {
	existing, err := s.userRepo.FindByName(ctx, name)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := s.userRepo.SetAdmin(ctx, existing.ID, true); err != nil {
				return nil, false, err
			}
			existing.IsAdmin = true
		}
		return existing, false, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, false, err
	}

	if len(password) < s.passwordMinLength {
		return nil, false, fmt.Errorf("admin password must have at least %d characters: %w", s.passwordMinLength, common.ErrValidation)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}
	admin := &model.User{Name: name, PasswordHash: hash, IsAdmin: true}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, true, nil
}
