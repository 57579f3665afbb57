// Package mock provides in-memory repositories for service and middleware tests.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository"
)

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.SessionRepository = (*SessionRepository)(nil)
	_ repository.PostRepository    = (*PostRepository)(nil)
)

type UserRepository struct {
	users  map[int64]model.User
	nextID int64
	mutex  sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int64]model.User),
		nextID: 1,
	}
}

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if u.Name == user.Name {
			return common.ErrConflict
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m *UserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *UserRepository) findByID(id int64) (*model.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	u, exists := m.users[id]
	if !exists {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (m *UserRepository) List(ctx context.Context) ([]model.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *UserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	u, exists := m.users[id]
	if !exists {
		return common.ErrNotFound
	}
	u.IsAdmin = isAdmin
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return nil
}

// Count returns the number of stored users.
func (m *UserRepository) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.users)
}

type SessionRepository struct {
	sessions map[int64]model.Session
	nextID   int64
	mutex    sync.RWMutex
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[int64]model.Session),
		nextID:   1,
	}
}

func (m *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, s := range m.sessions {
		if s.SessionID == session.SessionID {
			return common.ErrConflict
		}
	}
	session.ID = m.nextID
	m.nextID++
	m.sessions[session.ID] = *session
	return nil
}

func (m *SessionRepository) FindLive(ctx context.Context, sessionID string, now time.Time) (*model.Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, s := range m.sessions {
		if s.SessionID == sessionID && s.IsLive(now) {
			return &s, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *SessionRepository) Deactivate(ctx context.Context, id int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, exists := m.sessions[id]
	if !exists {
		return common.ErrNotFound
	}
	s.Active = false
	m.sessions[id] = s
	return nil
}

func (m *SessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.Active && s.ExpireAt <= now.Unix() {
			s.Active = false
			m.sessions[id] = s
			n++
		}
	}
	return n, nil
}

// All returns a snapshot of every stored session ordered by id.
func (m *SessionRepository) All() []model.Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sessions := make([]model.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions
}

type PostRepository struct {
	posts  map[int64]model.Post
	users  *UserRepository
	nextID int64
	mutex  sync.RWMutex
}

// NewPostRepository resolves author names through users when it is not nil.
func NewPostRepository(users *UserRepository) *PostRepository {
	return &PostRepository{
		posts:  make(map[int64]model.Post),
		users:  users,
		nextID: 1,
	}
}

func (m *PostRepository) Create(ctx context.Context, post *model.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	m.posts[post.ID] = *post
	return nil
}

func (m *PostRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	p, exists := m.posts[id]
	if !exists {
		return nil, common.ErrNotFound
	}
	m.withAuthor(ctx, &p)
	return &p, nil
}

func (m *PostRepository) List(ctx context.Context) ([]model.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		m.withAuthor(ctx, &p)
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (m *PostRepository) Update(ctx context.Context, post *model.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stored, exists := m.posts[post.ID]
	if !exists {
		return common.ErrNotFound
	}
	stored.Title = post.Title
	stored.Slug = post.Slug
	stored.Body = post.Body
	stored.UpdatedAt = time.Now()
	m.posts[post.ID] = stored
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return common.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) withAuthor(ctx context.Context, p *model.Post) {
	if m.users == nil {
		return
	}
	if u, err := m.users.findByID(p.UserID); err == nil {
		p.AuthorName = u.Name
	}
}
