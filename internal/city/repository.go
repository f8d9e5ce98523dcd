package city

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

var ErrNotFound = errors.New("city not found")

type Repository interface {
	List(ctx context.Context, page pagination.Params) ([]City, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int) (City, error)
	// CountryExists reports whether an active country has the id.
	CountryExists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, city City) (City, error)
	Update(ctx context.Context, id int, city City) (City, error)
	SoftDelete(ctx context.Context, id int, at time.Time) error
}

type InMemoryRepository struct {
	mu        sync.RWMutex
	cities    []City
	countries map[int]CountrySummary
	nextID    int
	now       func() time.Time
}

func NewInMemoryRepository(countries []CountrySummary, seed []City) *InMemoryRepository {
	repo := &InMemoryRepository{
		countries: make(map[int]CountrySummary, len(countries)),
		nextID:    1,
		now:       time.Now,
	}
	for _, c := range countries {
		repo.countries[c.ID] = c
	}
	for _, c := range seed {
		repo.cities = append(repo.cities, c)
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) withCountry(c City) City {
	if country, ok := r.countries[c.CountryID]; ok {
		c.Country = &country
	}
	return c
}

func (r *InMemoryRepository) active() []City {
	out := make([]City, 0, len(r.cities))
	for _, c := range r.cities {
		if c.DeletedAt == nil {
			out = append(out, r.withCountry(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context, page pagination.Params) ([]City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cities := r.active()
	start, end := page.Window(len(cities))
	return cities[start:end], nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active()), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cities {
		if c.ID == id && c.DeletedAt == nil {
			return r.withCountry(c), nil
		}
	}
	return City{}, ErrNotFound
}

func (r *InMemoryRepository) CountryExists(_ context.Context, id int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.countries[id]
	return ok, nil
}

func (r *InMemoryRepository) Create(_ context.Context, city City) (City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	city.ID = r.nextID
	r.nextID++
	city.CreatedAt = r.now()
	city.UpdatedAt = city.CreatedAt
	city.Country = nil
	r.cities = append(r.cities, city)
	return r.withCountry(city), nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, city City) (City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.cities {
		if existing.ID != id || existing.DeletedAt != nil {
			continue
		}
		existing.NameAr = city.NameAr
		existing.NameEn = city.NameEn
		existing.CountryID = city.CountryID
		existing.UpdatedAt = r.now()
		r.cities[i] = existing
		return r.withCountry(existing), nil
	}
	return City{}, ErrNotFound
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.cities {
		if c.ID == id {
			if c.DeletedAt == nil {
				r.cities[i].DeletedAt = &at
			}
			return nil
		}
	}
	return ErrNotFound
}
