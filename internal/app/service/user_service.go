package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository"
)

// roleField matches the role editor's per-user form fields, e.g. "user-7-rol".
var roleField = regexp.MustCompile(`^user-([0-9]+)-rol$`)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

// RoleChangesFromForm extracts the requested admin flag per user id. The
// value "1" means administrator, anything else a regular user.
func RoleChangesFromForm(form url.Values) map[int64]bool {
	changes := make(map[int64]bool)
	for key := range form {
		m := roleField.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		changes[id] = form.Get(key) == "1"
	}
	return changes
}

// UpdateRoles applies changes to existing users and returns how many were
// updated. Unknown ids are skipped.
func (s *UserService) UpdateRoles(ctx context.Context, changes map[int64]bool) (int, error) {
	ids := make([]int64, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	updated := 0
	for _, id := range ids {
		if err := s.userRepo.SetAdmin(ctx, id, changes[id]); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return updated, fmt.Errorf("failed to update role of user %d: %w", id, err)
		}
		updated++
	}
	return updated, nil
}
