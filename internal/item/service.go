package item

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/banner"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/sanitize"
)

const (
	DefaultListLimit = 10
	SearchLimit      = 10
)

type ListResult struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, filter ListFilter, page pagination.Params) (ListResult, error) {
	result, err := pagination.Fetch(ctx,
		func(ctx context.Context) ([]Item, error) { return s.repo.List(ctx, filter, page) },
		func(ctx context.Context) (int, error) { return s.repo.Count(ctx, filter) },
	)
	if err != nil {
		return ListResult{}, s.fail(ctx, "list items", apperror.CodeFindAllFailed, err)
	}
	s.log.DebugContext(ctx, "listed items", slog.Int("count", len(result.Rows)))
	return ListResult{Items: result.Rows, Total: result.Total}, nil
}

// Search matches title or description without regard to case.
func (s *Service) Search(ctx context.Context, query string, page pagination.Params) (ListResult, error) {
	result, err := s.List(ctx, ListFilter{Query: query}, page)
	if err != nil {
		return ListResult{}, apperror.As(err).WithCode(apperror.CodeSearchFailed)
	}
	return result, nil
}

// Get returns the item with its banner history, including a soft-deleted
// item.
func (s *Service) Get(ctx context.Context, id int) (Item, error) {
	it, err := s.detail(ctx, s.repo, id)
	if err != nil {
		return Item{}, s.fail(ctx, "get item", apperror.CodeFindOneFailed, err)
	}
	return it, nil
}

// GetActive is Get for listings: a soft-deleted item is not found.
func (s *Service) GetActive(ctx context.Context, id int) (Item, error) {
	it, err := s.detail(ctx, s.repo, id)
	if err == nil && it.DeletedAt != nil {
		err = ErrNotFound
	}
	if err != nil {
		return Item{}, s.fail(ctx, "get item", apperror.CodeFindOneFailed, err)
	}
	return it, nil
}

func (s *Service) detail(ctx context.Context, repo Repository, id int) (Item, error) {
	it, err := repo.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	it.Banners, err = repo.Banners().ListByItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

// Create stores the item with its images, and an active banner when the item
// is flagged, in one transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Item, error) {
	if req.UserID == 0 {
		return Item{}, apperror.Validation("userId is required", nil)
	}

	var start, end time.Time
	if req.IsBanner {
		var err error
		if start, end, err = banner.Window(s.now(), req.StartDate.Ptr(), req.EndDate.Ptr()); err != nil {
			return Item{}, err
		}
	}

	draft := Item{
		Title:         req.Title,
		Description:   sanitize.HTML(req.Description),
		TradeValue:    req.TradeValue,
		Condition:     req.Condition,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		CityID:        req.CityID,
		CountryID:     req.CountryID,
		UserID:        req.UserID,
		IsBanner:      req.IsBanner,
	}

	var created Item
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		var err error
		if created, err = tx.Create(ctx, draft); err != nil {
			return err
		}
		if err := tx.AddImages(ctx, created.ID, lo.Uniq(req.ImageURLs)); err != nil {
			return err
		}
		if req.IsBanner {
			_, err := tx.Banners().Create(ctx, banner.Banner{
				ItemID:    created.ID,
				IsActive:  true,
				StartDate: &start,
				EndDate:   &end,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return Item{}, s.fail(ctx, "create item", apperror.CodeCreateFailed, err)
	}

	s.log.InfoContext(ctx, "item created", slog.Int("item_id", created.ID), slog.Bool("banner", req.IsBanner))
	return s.reload(ctx, created.ID, apperror.CodeCreateFailed)
}

// Update merges req into the item. Images are reconciled only when
// req.ImageURLs is set. Flagging an item without an active banner opens a
// default one.
func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (Item, error) {
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		current, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.DeletedAt != nil {
			return ErrNotFound
		}

		if err := tx.Update(ctx, id, merge(current, req)); err != nil {
			return err
		}
		if req.ImageURLs != nil {
			if err := s.reconcileImages(ctx, tx, id, req.ImageURLs); err != nil {
				return err
			}
		}
		if req.IsBanner != nil && *req.IsBanner {
			return s.ensureBanner(ctx, tx, id)
		}
		return nil
	})
	if err != nil {
		return Item{}, s.fail(ctx, "update item", apperror.CodeUpdateFailed, err)
	}
	return s.reload(ctx, id, apperror.CodeUpdateFailed)
}

// Delete soft-deletes the item and deactivates its banners. Deleting twice
// keeps the first timestamp.
func (s *Service) Delete(ctx context.Context, id int) error {
	at := s.now().UTC()
	var deactivated int
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.SoftDelete(ctx, id, at); err != nil {
			return err
		}
		var err error
		deactivated, err = tx.Banners().DeactivateByItem(ctx, id)
		return err
	})
	if err != nil {
		return s.fail(ctx, "delete item", apperror.CodeDeleteFailed, err)
	}
	s.log.InfoContext(ctx, "item deleted", slog.Int("item_id", id), slog.Int("banners_deactivated", deactivated))
	return nil
}

// reconcileImages makes the item's image set equal to target, touching only
// the rows that differ.
func (s *Service) reconcileImages(ctx context.Context, repo Repository, id int, target []string) error {
	existing, err := repo.ImageURLs(ctx, id)
	if err != nil {
		return err
	}
	toCreate, toDelete := Diff(existing, target)
	if err := repo.RemoveImages(ctx, id, toDelete); err != nil {
		return err
	}
	if err := repo.AddImages(ctx, id, toCreate); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "images reconciled", slog.Int("item_id", id),
		slog.Int("created", len(toCreate)), slog.Int("deleted", len(toDelete)))
	return nil
}

func (s *Service) ensureBanner(ctx context.Context, repo Repository, id int) error {
	active, err := repo.Banners().HasActive(ctx, id)
	if err != nil || active {
		return err
	}
	start, end := banner.DefaultWindow(s.now())
	_, err = repo.Banners().Create(ctx, banner.Banner{ItemID: id, IsActive: true, StartDate: &start, EndDate: &end})
	return err
}

func (s *Service) reload(ctx context.Context, id int, code string) (Item, error) {
	it, err := s.detail(ctx, s.repo, id)
	if err != nil {
		return Item{}, s.fail(ctx, "reload item", code, err)
	}
	return it, nil
}

// Diff returns the URLs of target missing from existing and the URLs of
// existing missing from target. Duplicates in target count once.
func Diff(existing, target []string) (toCreate, toDelete []string) {
	return lo.Difference(lo.Uniq(target), existing)
}

func merge(it Item, req UpdateRequest) Item {
	if req.Title != nil {
		it.Title = *req.Title
	}
	if req.Description != nil {
		it.Description = sanitize.HTML(*req.Description)
	}
	if req.TradeValue != nil {
		it.TradeValue = *req.TradeValue
	}
	if req.Condition != nil {
		it.Condition = *req.Condition
	}
	if req.CategoryID != nil {
		it.CategoryID = *req.CategoryID
	}
	if req.SubcategoryID != nil {
		it.SubcategoryID = req.SubcategoryID
	}
	if req.CityID != nil {
		it.CityID = *req.CityID
	}
	if req.CountryID != nil {
		it.CountryID = *req.CountryID
	}
	if req.IsBanner != nil {
		it.IsBanner = *req.IsBanner
	}
	return it
}

func (s *Service) fail(ctx context.Context, op, code string, err error) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return apperror.NotFound(code, "Item not found")
	case errors.Is(err, ErrInvalidReference):
		return apperror.Validation("Item references a category, city, country or user that does not exist", nil)
	}
	s.log.ErrorContext(ctx, op, slog.Any("error", err))
	return apperror.Internal(code, "Failed to "+op, err)
}
