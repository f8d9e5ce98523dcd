package category

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

var ErrNotFound = errors.New("category not found")

type Repository interface {
	List(ctx context.Context, filter Filter, page pagination.Params) ([]Category, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetByID(ctx context.Context, id int) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id int, category Category) (Category, error)
	SoftDelete(ctx context.Context, id int, at time.Time) error
}

type InMemoryRepository struct {
	mu         sync.RWMutex
	categories []Category
	nextID     int
	now        func() time.Time
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	repo := &InMemoryRepository{nextID: 1, now: time.Now}
	for _, c := range seed {
		repo.categories = append(repo.categories, c)
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) filtered(filter Filter) []Category {
	out := make([]Category, 0)
	for _, c := range r.categories {
		if filter.matches(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context, filter Filter, page pagination.Params) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := r.filtered(filter)
	start, end := page.Window(len(categories))
	return categories[start:end], nil
}

func (r *InMemoryRepository) Count(_ context.Context, filter Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filtered(filter)), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.ID == id && c.DeletedAt == nil {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, category Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category.ID = r.nextID
	r.nextID++
	category.CreatedAt = r.now()
	category.UpdatedAt = category.CreatedAt
	r.categories = append(r.categories, category)
	return category, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, category Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.categories {
		if existing.ID != id || existing.DeletedAt != nil {
			continue
		}
		category.ID = existing.ID
		category.CreatedAt = existing.CreatedAt
		category.UpdatedAt = r.now()
		category.Children = nil
		r.categories[i] = category
		return category, nil
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.categories {
		if c.ID == id {
			if c.DeletedAt == nil {
				r.categories[i].DeletedAt = &at
			}
			return nil
		}
	}
	return ErrNotFound
}
