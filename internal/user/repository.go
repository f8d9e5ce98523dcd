package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrEmailExists       = errors.New("email already exists")
	ErrUsernameExists    = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
)

type Repository interface {
	List(ctx context.Context, page pagination.Params) ([]User, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int) (User, error)
	// GetByLogin matches an active user by email or username, ignoring case.
	GetByLogin(ctx context.Context, emailOrUsername string) (User, error)
	// EmailExists and UsernameExists also see soft-deleted rows.
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id int, user User) (User, error)
	SoftDelete(ctx context.Context, id int, at time.Time) error
	Search(ctx context.Context, query string, limit int) ([]User, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int
	now    func() time.Time
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
		now:    time.Now,
	}

	maxID := 0
	for _, user := range seed {
		repo.users = append(repo.users, user)
		if user.ID > maxID {
			maxID = user.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

// active returns live users newest first.
func (r *InMemoryRepository) active() []User {
	out := make([]User, 0, len(r.users))
	for _, user := range r.users {
		if user.DeletedAt == nil {
			out = append(out, user)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context, page pagination.Params) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := r.active()
	start, end := page.Window(len(users))
	out := make([]User, end-start)
	copy(out, users[start:end])
	return out, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active()), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id && user.DeletedAt == nil {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByLogin(_ context.Context, emailOrUsername string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(user.Email, emailOrUsername) || strings.EqualFold(user.Username, emailOrUsername) {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTaken(email, 0), nil
}

func (r *InMemoryRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usernameTaken(username, 0), nil
}

func (r *InMemoryRepository) emailTaken(email string, exceptID int) bool {
	for _, user := range r.users {
		if user.ID != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) usernameTaken(username string, exceptID int) bool {
	for _, user := range r.users {
		if user.ID != exceptID && strings.EqualFold(user.Username, username) {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, 0) {
		return User{}, ErrEmailExists
	}
	if r.usernameTaken(user.Username, 0) {
		return User{}, ErrUsernameExists
	}

	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users = append(r.users, user)
	return user, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, userUpdate User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID != id || user.DeletedAt != nil {
			continue
		}
		if r.emailTaken(userUpdate.Email, id) {
			return User{}, ErrEmailExists
		}
		if r.usernameTaken(userUpdate.Username, id) {
			return User{}, ErrUsernameExists
		}

		userUpdate.ID = user.ID
		userUpdate.CreatedAt = user.CreatedAt
		userUpdate.UpdatedAt = r.now()
		if userUpdate.Password == "" {
			userUpdate.Password = user.Password
		}
		r.users[i] = userUpdate
		return userUpdate, nil
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID == id {
			if user.DeletedAt == nil {
				r.users[i].DeletedAt = &at
			}
			return nil
		}
	}

	return ErrNotFound
}

func (r *InMemoryRepository) Search(_ context.Context, query string, limit int) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	out := make([]User, 0)
	for _, user := range r.active() {
		if len(out) == limit {
			break
		}
		for _, field := range []string{user.FirstName, user.LastName, user.Email, user.Username} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, user)
				break
			}
		}
	}
	return out, nil
}
