package country

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

var ErrNotFound = errors.New("country not found")

type Repository interface {
	List(ctx context.Context, page pagination.Params) ([]Country, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int) (Country, error)
	Create(ctx context.Context, country Country) (Country, error)
	Update(ctx context.Context, id int, country Country) (Country, error)
	SoftDelete(ctx context.Context, id int, at time.Time) error
}

type InMemoryRepository struct {
	mu        sync.RWMutex
	countries []Country
	nextID    int
	now       func() time.Time
}

func NewInMemoryRepository(seed []Country) *InMemoryRepository {
	repo := &InMemoryRepository{nextID: 1, now: time.Now}
	for _, c := range seed {
		repo.countries = append(repo.countries, c)
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) active() []Country {
	out := make([]Country, 0, len(r.countries))
	for _, c := range r.countries {
		if c.DeletedAt == nil {
			out = append(out, withCities(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context, page pagination.Params) ([]Country, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	countries := r.active()
	start, end := page.Window(len(countries))
	return countries[start:end], nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active()), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Country, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.countries {
		if c.ID == id && c.DeletedAt == nil {
			return withCities(c), nil
		}
	}
	return Country{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, country Country) (Country, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	country.ID = r.nextID
	r.nextID++
	country.CreatedAt = r.now()
	country.UpdatedAt = country.CreatedAt
	r.countries = append(r.countries, country)
	return withCities(country), nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, country Country) (Country, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.countries {
		if existing.ID != id || existing.DeletedAt != nil {
			continue
		}
		existing.NameAr = country.NameAr
		existing.NameEn = country.NameEn
		existing.UpdatedAt = r.now()
		r.countries[i] = existing
		return withCities(existing), nil
	}
	return Country{}, ErrNotFound
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.countries {
		if c.ID == id {
			if c.DeletedAt == nil {
				r.countries[i].DeletedAt = &at
			}
			return nil
		}
	}
	return ErrNotFound
}

func withCities(c Country) Country {
	if c.Cities == nil {
		c.Cities = []CitySummary{}
	}
	return c
}
