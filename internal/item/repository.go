package item

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/banner"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

var (
	ErrNotFound         = errors.New("item not found")
	ErrInvalidReference = errors.New("item references a missing row")
)

type Repository interface {
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]Item, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	// GetByID returns the item whether or not it is soft-deleted.
	GetByID(ctx context.Context, id int) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int, item Item) error
	SoftDelete(ctx context.Context, id int, at time.Time) error
	ImageURLs(ctx context.Context, itemID int) ([]string, error)
	AddImages(ctx context.Context, itemID int, urls []string) error
	RemoveImages(ctx context.Context, itemID int, urls []string) error
	// Banners is bound to the same connection or transaction as the
	// repository it came from.
	Banners() banner.Repository
	// WithinTx runs fn against a repository bound to one transaction,
	// committing when fn returns nil.
	WithinTx(ctx context.Context, fn func(Repository) error) error
}

type storedImage struct {
	Image
	ItemID int
}

type InMemoryRepository struct {
	txMu        sync.Mutex
	mu          sync.RWMutex
	items       []Item
	images      []storedImage
	nextID      int
	nextImageID int
	now         func() time.Time
	banners     *banner.InMemoryRepository
}

// NewInMemoryRepository links banners to the new store so banner listings can
// see item state. A nil banners gets a fresh empty store.
func NewInMemoryRepository(seed []Item, banners *banner.InMemoryRepository) *InMemoryRepository {
	if banners == nil {
		banners = banner.NewInMemoryRepository(nil)
	}
	repo := &InMemoryRepository{nextID: 1, nextImageID: 1, now: time.Now, banners: banners}
	for _, it := range seed {
		for _, img := range it.Images {
			if img.ID == 0 {
				img.ID = repo.nextImageID
			}
			if img.ID >= repo.nextImageID {
				repo.nextImageID = img.ID + 1
			}
			repo.images = append(repo.images, storedImage{Image: img, ItemID: it.ID})
		}
		it.Images = nil
		repo.items = append(repo.items, it)
		if it.ID >= repo.nextID {
			repo.nextID = it.ID + 1
		}
	}
	banners.SetItemLookup(repo.lookup)
	return repo
}

// lookup serves the banner store; it must not call back into banners.
func (r *InMemoryRepository) lookup(itemID int) (banner.ItemSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.ID == itemID && it.DeletedAt == nil {
			return r.withImages(it).summary(), true
		}
	}
	return banner.ItemSummary{}, false
}

func (r *InMemoryRepository) withImages(it Item) Item {
	it.Images = make([]Image, 0)
	for _, img := range r.images {
		if img.ItemID == it.ID {
			it.Images = append(it.Images, img.Image)
		}
	}
	return it
}

func (f ListFilter) matches(it Item) bool {
	if it.DeletedAt != nil {
		return false
	}
	if f.IsBanner != nil && it.IsBanner != *f.IsBanner {
		return false
	}
	if f.CategoryID != 0 && it.CategoryID != f.CategoryID {
		return false
	}
	if f.SubcategoryID != 0 && (it.SubcategoryID == nil || *it.SubcategoryID != f.SubcategoryID) {
		return false
	}
	if f.UserID != 0 && it.UserID != f.UserID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.Description), q)
	}
	return true
}

func (r *InMemoryRepository) filtered(filter ListFilter) []Item {
	out := make([]Item, 0)
	for _, it := range r.items {
		if filter.matches(it) {
			out = append(out, r.withImages(it))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context, filter ListFilter, page pagination.Params) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.filtered(filter)
	start, end := page.Window(len(items))
	return items[start:end], nil
}

func (r *InMemoryRepository) Count(_ context.Context, filter ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filtered(filter)), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.ID == id {
			return r.withImages(it), nil
		}
	}
	return Item{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.nextID
	r.nextID++
	item.CreatedAt = r.now()
	item.UpdatedAt = item.CreatedAt
	item.Images = nil
	item.Banners = nil
	r.items = append(r.items, item)

	item.Images = []Image{}
	return item, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.items {
		if existing.ID != id || existing.DeletedAt != nil {
			continue
		}
		item.ID = id
		item.CreatedAt = existing.CreatedAt
		item.UpdatedAt = r.now()
		item.Images = nil
		item.Banners = nil
		r.items[i] = item
		return nil
	}
	return ErrNotFound
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.ID == id {
			if it.DeletedAt == nil {
				r.items[i].DeletedAt = &at
			}
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) ImageURLs(_ context.Context, itemID int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]string, 0)
	for _, img := range r.images {
		if img.ItemID == itemID {
			urls = append(urls, img.ImageURL)
		}
	}
	return urls, nil
}

func (r *InMemoryRepository) AddImages(_ context.Context, itemID int, urls []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, url := range urls {
		if slices.ContainsFunc(r.images, func(img storedImage) bool {
			return img.ItemID == itemID && img.ImageURL == url
		}) {
			continue
		}
		r.images = append(r.images, storedImage{Image: Image{ID: r.nextImageID, ImageURL: url}, ItemID: itemID})
		r.nextImageID++
	}
	return nil
}

func (r *InMemoryRepository) RemoveImages(_ context.Context, itemID int, urls []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.images = slices.DeleteFunc(r.images, func(img storedImage) bool {
		return img.ItemID == itemID && slices.Contains(urls, img.ImageURL)
	})
	return nil
}

func (r *InMemoryRepository) Banners() banner.Repository {
	return r.banners
}

// WithinTx serialises in-memory transactions and restores both stores when
// fn fails.
func (r *InMemoryRepository) WithinTx(_ context.Context, fn func(Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	restoreBanners := r.banners.Checkpoint()
	r.mu.RLock()
	items := slices.Clone(r.items)
	images := slices.Clone(r.images)
	nextID, nextImageID := r.nextID, r.nextImageID
	r.mu.RUnlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.items, r.images = items, images
		r.nextID, r.nextImageID = nextID, nextImageID
		r.mu.Unlock()
		restoreBanners()
		return err
	}
	return nil
}
