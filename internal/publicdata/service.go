// Package publicdata serves the read-only views visitors see without
// signing in. It composes the resource services and never writes.
package publicdata

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/tabdil-hub-backend/internal/banner"
	"github.com/wichananm65/tabdil-hub-backend/internal/category"
	"github.com/wichananm65/tabdil-hub-backend/internal/item"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/subscription"
	"github.com/wichananm65/tabdil-hub-backend/internal/user"
)

const (
	// PopularCategories and PopularItems shape the home page grid.
	PopularCategories = 5
	PopularItems      = 5
	DefaultListLimit  = 10
)

type Items interface {
	List(ctx context.Context, filter item.ListFilter, page pagination.Params) (item.ListResult, error)
	Search(ctx context.Context, query string, page pagination.Params) (item.ListResult, error)
	GetActive(ctx context.Context, id int) (item.Item, error)
}

type Banners interface {
	List(ctx context.Context, filter banner.Filter, page pagination.Params) (banner.ListResult, error)
}

type Categories interface {
	List(ctx context.Context, filter category.Filter, page pagination.Params) (category.ListResult, error)
	Tree(ctx context.Context) ([]category.Category, error)
}

type Plans interface {
	Plans(ctx context.Context) (subscription.ListResult, error)
}

type Users interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

type PopularCategory struct {
	Category category.Category `json:"category"`
	Items    []item.Item       `json:"items"`
}

type UserProfile struct {
	user.Profile
	ItemCount int `json:"itemCount"`
}

type Service struct {
	items      Items
	banners    Banners
	categories Categories
	plans      Plans
	users      Users
	log        *slog.Logger
}

func NewService(items Items, banners Banners, categories Categories, plans Plans, users Users, log *slog.Logger) *Service {
	return &Service{
		items:      items,
		banners:    banners,
		categories: categories,
		plans:      plans,
		users:      users,
		log:        log,
	}
}

func (s *Service) Search(ctx context.Context, query string, page pagination.Params) (item.ListResult, error) {
	return s.items.Search(ctx, query, page)
}

// Banners lists the active banners of live, flagged items.
func (s *Service) Banners(ctx context.Context, page pagination.Params) (banner.ListResult, error) {
	active := true
	return s.banners.List(ctx, banner.Filter{Active: &active}, page)
}

func (s *Service) Categories(ctx context.Context) ([]category.Category, error) {
	return s.categories.Tree(ctx)
}

func (s *Service) Subscriptions(ctx context.Context) (subscription.ListResult, error) {
	return s.plans.Plans(ctx)
}

// Popular returns the newest top-level categories, each with its newest
// items. The per-category queries run concurrently.
func (s *Service) Popular(ctx context.Context) ([]PopularCategory, error) {
	top, err := s.categories.List(ctx, category.Filter{Scope: category.ScopeTopLevel},
		pagination.New(PopularCategories, 0, PopularCategories))
	if err != nil {
		return nil, err
	}

	out := make([]PopularCategory, len(top.Categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(PopularCategories)
	for i, c := range top.Categories {
		g.Go(func() error {
			result, err := s.items.List(gctx, item.ListFilter{CategoryID: c.ID}, pagination.New(PopularItems, 0, PopularItems))
			if err != nil {
				return err
			}
			out[i] = PopularCategory{Category: c, Items: result.Items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "built popular items", slog.Int("categories", len(out)))
	return out, nil
}

func (s *Service) Items(ctx context.Context, categoryID, subcategoryID int, page pagination.Params) (item.ListResult, error) {
	return s.items.List(ctx, item.ListFilter{CategoryID: categoryID, SubcategoryID: subcategoryID}, page)
}

func (s *Service) Item(ctx context.Context, id int) (item.Item, error) {
	return s.items.GetActive(ctx, id)
}

// User returns a public profile with the number of live items the user
// lists.
func (s *Service) User(ctx context.Context, id int) (UserProfile, error) {
	var (
		u     user.User
		count item.ListResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		u, err = s.users.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.items.List(gctx, item.ListFilter{UserID: id}, pagination.New(1, 0, 1))
		return err
	})
	if err := g.Wait(); err != nil {
		return UserProfile{}, err
	}
	return UserProfile{Profile: u.Public(), ItemCount: count.Total}, nil
}

func (s *Service) UserItems(ctx context.Context, id int, page pagination.Params) (item.ListResult, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return item.ListResult{}, err
	}
	return s.items.List(ctx, item.ListFilter{UserID: id}, page)
}
