package subscription

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

var ErrNotFound = errors.New("subscription not found")

type Repository interface {
	List(ctx context.Context, filter Filter, page pagination.Params) ([]Subscription, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetByID(ctx context.Context, id int) (Subscription, error)
	Create(ctx context.Context, sub Subscription) (Subscription, error)
	Update(ctx context.Context, id int, sub Subscription) error
	SoftDelete(ctx context.Context, id int, at time.Time) error
	// Options lists the active options of a subscription, oldest first.
	Options(ctx context.Context, subscriptionID int) ([]Option, error)
	CreateOptions(ctx context.Context, subscriptionID int, options []Option) error
	UpdateOption(ctx context.Context, option Option) error
	SoftDeleteOptions(ctx context.Context, subscriptionID int, ids []int, at time.Time) error
	WithinTx(ctx context.Context, fn func(Repository) error) error
}

type InMemoryRepository struct {
	txMu         sync.Mutex
	mu           sync.RWMutex
	subs         []Subscription
	options      []Option
	nextID       int
	nextOptionID int
	now          func() time.Time
}

func NewInMemoryRepository(seed []Subscription) *InMemoryRepository {
	repo := &InMemoryRepository{nextID: 1, nextOptionID: 1, now: time.Now}
	for _, sub := range seed {
		for _, opt := range sub.Options {
			opt.SubscriptionID = sub.ID
			repo.options = append(repo.options, opt)
			if opt.ID >= repo.nextOptionID {
				repo.nextOptionID = opt.ID + 1
			}
		}
		sub.Options = nil
		repo.subs = append(repo.subs, sub)
		if sub.ID >= repo.nextID {
			repo.nextID = sub.ID + 1
		}
	}
	return repo
}

func (f Filter) matches(sub Subscription) bool {
	if sub.DeletedAt != nil {
		return false
	}
	if f.Category != "" && sub.Category != f.Category {
		return false
	}
	return f.Status == "" || sub.Status == f.Status
}

func (r *InMemoryRepository) activeOptions(subscriptionID int) []Option {
	out := make([]Option, 0)
	for _, opt := range r.options {
		if opt.SubscriptionID == subscriptionID && opt.DeletedAt == nil {
			out = append(out, opt)
		}
	}
	return out
}

func (r *InMemoryRepository) filtered(filter Filter) []Subscription {
	out := make([]Subscription, 0)
	for _, sub := range r.subs {
		if filter.matches(sub) {
			sub.Options = r.activeOptions(sub.ID)
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context, filter Filter, page pagination.Params) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.filtered(filter)
	start, end := page.Window(len(subs))
	return subs[start:end], nil
}

func (r *InMemoryRepository) Count(_ context.Context, filter Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filtered(filter)), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sub := range r.subs {
		if sub.ID == id && sub.DeletedAt == nil {
			sub.Options = r.activeOptions(id)
			return sub, nil
		}
	}
	return Subscription{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, sub Subscription) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub.ID = r.nextID
	r.nextID++
	sub.CreatedAt = r.now()
	sub.UpdatedAt = sub.CreatedAt
	sub.Options = nil
	r.subs = append(r.subs, sub)

	sub.Options = []Option{}
	return sub, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, sub Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.subs {
		if existing.ID != id || existing.DeletedAt != nil {
			continue
		}
		sub.ID = id
		sub.CreatedAt = existing.CreatedAt
		sub.UpdatedAt = r.now()
		sub.Options = nil
		r.subs[i] = sub
		return nil
	}
	return ErrNotFound
}

func (r *InMemoryRepository) SoftDelete(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subs {
		if sub.ID == id {
			if sub.DeletedAt == nil {
				r.subs[i].DeletedAt = &at
			}
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Options(_ context.Context, subscriptionID int) ([]Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeOptions(subscriptionID), nil
}

func (r *InMemoryRepository) CreateOptions(_ context.Context, subscriptionID int, options []Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, opt := range options {
		opt.ID = r.nextOptionID
		r.nextOptionID++
		opt.SubscriptionID = subscriptionID
		opt.CreatedAt, opt.UpdatedAt = now, now
		r.options = append(r.options, opt)
	}
	return nil
}

func (r *InMemoryRepository) UpdateOption(_ context.Context, option Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, opt := range r.options {
		if opt.ID == option.ID && opt.SubscriptionID == option.SubscriptionID && opt.DeletedAt == nil {
			r.options[i].NameAr = option.NameAr
			r.options[i].NameEn = option.NameEn
			r.options[i].UpdatedAt = r.now()
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) SoftDeleteOptions(_ context.Context, subscriptionID int, ids []int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, opt := range r.options {
		if opt.SubscriptionID == subscriptionID && opt.DeletedAt == nil && slices.Contains(ids, opt.ID) {
			r.options[i].DeletedAt = &at
		}
	}
	return nil
}

// WithinTx serialises in-memory transactions and restores the store when fn
// fails.
func (r *InMemoryRepository) WithinTx(_ context.Context, fn func(Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	subs, options := slices.Clone(r.subs), slices.Clone(r.options)
	nextID, nextOptionID := r.nextID, r.nextOptionID
	r.mu.RUnlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.subs, r.options = subs, options
		r.nextID, r.nextOptionID = nextID, nextOptionID
		r.mu.Unlock()
		return err
	}
	return nil
}
