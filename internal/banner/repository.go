package banner

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

var ErrNotFound = errors.New("banner not found")

type Repository interface {
	List(ctx context.Context, filter Filter, page pagination.Params) ([]Banner, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetByID(ctx context.Context, id int) (Banner, error)
	// ListByItem returns an item's banner history, newest first, without the
	// soft-deleted rows.
	ListByItem(ctx context.Context, itemID int) ([]Banner, error)
	Create(ctx context.Context, banner Banner) (Banner, error)
	HasActive(ctx context.Context, itemID int) (bool, error)
	// DeactivateByItem clears is_active on the item's active banners and
	// reports how many changed.
	DeactivateByItem(ctx context.Context, itemID int) (int, error)
	Update(ctx context.Context, id int, isActive bool, start, end *time.Time) (Banner, error)
	SoftDelete(ctx context.Context, id int, at time.Time) error
}

// ItemLookup resolves the promoted item of a banner. ok is false for a
// missing or soft-deleted item.
type ItemLookup func(itemID int) (summary ItemSummary, ok bool)

type InMemoryRepository struct {
	mu      sync.RWMutex
	banners []Banner
	nextID  int
	now     func() time.Time
	lookup  ItemLookup
}

func NewInMemoryRepository(seed []Banner) *InMemoryRepository {
	repo := &InMemoryRepository{nextID: 1, now: time.Now}
	for _, b := range seed {
		repo.banners = append(repo.banners, b)
		if b.ID >= repo.nextID {
			repo.nextID = b.ID + 1
		}
	}
	return repo
}

// SetItemLookup connects the repository to the item store it promotes.
func (r *InMemoryRepository) SetItemLookup(lookup ItemLookup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup = lookup
}

// Checkpoint captures the current rows; calling restore puts them back.
func (r *InMemoryRepository) Checkpoint() (restore func()) {
	r.mu.RLock()
	saved := slices.Clone(r.banners)
	nextID := r.nextID
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.banners = saved
		r.nextID = nextID
	}
}

func (r *InMemoryRepository) attach(b Banner) (Banner, bool) {
	if r.lookup == nil {
		return b, false
	}
	summary, ok := r.lookup(b.ItemID)
	if !ok {
		return b, false
	}
	b.Item = &summary
	return b, true
}

func (r *InMemoryRepository) filtered(filter Filter) []Banner {
	out := make([]Banner, 0)
	for _, b := range r.banners {
		if b.DeletedAt != nil {
			continue
		}
		if filter.Active != nil && b.IsActive != *filter.Active {
			continue
		}
		withItem, ok := r.attach(b)
		if !ok || !withItem.Item.IsBanner {
			continue
		}
		out = append(out, withItem)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context, filter Filter, page pagination.Params) ([]Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	banners := r.filtered(filter)
	start, end := page.Window(len(banners))
	return banners[start:end], nil
}

func (r *InMemoryRepository) Count(_ context.Context, filter Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filtered(filter)), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.banners {
		if b.ID == id && b.DeletedAt == nil {
			withItem, _ := r.attach(b)
			return withItem, nil
		}
	}
	return Banner{}, ErrNotFound
}

func (r *InMemoryRepository) ListByItem(_ context.Context, itemID int) ([]Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Banner, 0)
	for _, b := range r.banners {
		if b.ItemID == itemID && b.DeletedAt == nil {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, banner Banner) (Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	banner.ID = r.nextID
	r.nextID++
	banner.CreatedAt = r.now()
	banner.UpdatedAt = banner.CreatedAt
	banner.Item = nil
	r.banners = append(r.banners, banner)
	return banner, nil
}

func (r *InMemoryRepository) HasActive(_ context.Context, itemID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.banners {
		if b.ItemID == itemID && b.IsActive && b.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) DeactivateByItem(_ context.Context, itemID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for i, b := range r.banners {
		if b.ItemID == itemID && b.IsActive {
			r.banners[i].IsActive = false
			r.banners[i].UpdatedAt = r.now()
			changed++
		}
	}
	return changed, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, isActive bool, start, end *time.Time) (Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.banners {
		if b.ID != id || b.DeletedAt != nil {
			continue
		}
		b.IsActive = isActive
		b.StartDate = start
		b.EndDate = end
		b.UpdatedAt = r.now()
		r.banners[i] = b
		withItem, _ := r.attach(b)
		return withItem, nil
	}
	return Banner{}, ErrNotFound
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.banners {
		if b.ID == id {
			r.banners[i].IsActive = false
			if b.DeletedAt == nil {
				r.banners[i].DeletedAt = &at
			}
			return nil
		}
	}
	return ErrNotFound
}
