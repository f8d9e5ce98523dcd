package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/sanitize"
)

const DefaultListLimit = 5000

type ListResult struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Total         int            `json:"total"`
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, filter Filter, page pagination.Params) (ListResult, error) {
	result, err := pagination.Fetch(ctx,
		func(ctx context.Context) ([]Subscription, error) { return s.repo.List(ctx, filter, page) },
		func(ctx context.Context) (int, error) { return s.repo.Count(ctx, filter) },
	)
	if err != nil {
		return ListResult{}, s.fail(ctx, "list subscriptions", apperror.CodeFindAllFailed, err)
	}
	s.log.DebugContext(ctx, "listed subscriptions", slog.Int("count", len(result.Rows)))
	return ListResult{Subscriptions: result.Rows, Total: result.Total}, nil
}

// Plans lists the active regular subscriptions offered to visitors.
func (s *Service) Plans(ctx context.Context) (ListResult, error) {
	return s.List(ctx, Filter{Category: CategoryRegular, Status: StatusActive},
		pagination.New(0, 0, DefaultListLimit))
}

func (s *Service) GetByID(ctx context.Context, id int) (Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Subscription{}, s.fail(ctx, "get subscription", apperror.CodeFindOneFailed, err)
	}
	return sub, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Subscription, error) {
	draft := Subscription{
		TitleAr:       req.TitleAr,
		TitleEn:       req.TitleEn,
		DescriptionAr: sanitize.HTML(req.DescriptionAr),
		DescriptionEn: sanitize.HTML(req.DescriptionEn),
		ImageURL:      req.ImageURL,
		Price:         req.Price,
		OfferPrice:    req.OfferPrice,
		Category:      req.Category,
		Status:        req.Status,
	}
	plan, err := PlanOptions(0, nil, withoutIDs(req.Options))
	if err != nil {
		return Subscription{}, err
	}

	var id int
	err = s.repo.WithinTx(ctx, func(tx Repository) error {
		created, err := tx.Create(ctx, draft)
		if err != nil {
			return err
		}
		id = created.ID
		return tx.CreateOptions(ctx, id, plan.Create)
	})
	if err != nil {
		return Subscription{}, s.fail(ctx, "create subscription", apperror.CodeCreateFailed, err)
	}

	s.log.InfoContext(ctx, "subscription created", slog.Int("subscription_id", id), slog.Int("options", len(plan.Create)))
	return s.reload(ctx, id, apperror.CodeCreateFailed)
}

// Update merges req into the subscription and, when req.Options is set,
// reconciles the options by id.
func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (Subscription, error) {
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		current, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, id, merge(current, req)); err != nil {
			return err
		}
		if req.Options == nil {
			return nil
		}

		plan, err := PlanOptions(id, current.Options, req.Options)
		if err != nil {
			return err
		}
		return s.apply(ctx, tx, id, plan)
	})
	if err != nil {
		return Subscription{}, s.fail(ctx, "update subscription", apperror.CodeUpdateFailed, err)
	}
	return s.reload(ctx, id, apperror.CodeUpdateFailed)
}

// Delete soft-deletes the subscription together with its options.
func (s *Service) Delete(ctx context.Context, id int) error {
	at := s.now().UTC()
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if err := tx.SoftDelete(ctx, id, at); err != nil {
			return err
		}
		options, err := tx.Options(ctx, id)
		if err != nil {
			return err
		}
		ids := make([]int, len(options))
		for i, opt := range options {
			ids[i] = opt.ID
		}
		return tx.SoftDeleteOptions(ctx, id, ids, at)
	})
	if err != nil {
		return s.fail(ctx, "delete subscription", apperror.CodeDeleteFailed, err)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, repo Repository, id int, plan OptionPlan) error {
	if err := repo.CreateOptions(ctx, id, plan.Create); err != nil {
		return err
	}
	for _, opt := range plan.Update {
		if err := repo.UpdateOption(ctx, opt); err != nil {
			return err
		}
	}
	if err := repo.SoftDeleteOptions(ctx, id, plan.Remove, s.now().UTC()); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "options reconciled", slog.Int("subscription_id", id),
		slog.Int("created", len(plan.Create)), slog.Int("updated", len(plan.Update)), slog.Int("removed", len(plan.Remove)))
	return nil
}

func (s *Service) reload(ctx context.Context, id int, code string) (Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Subscription{}, s.fail(ctx, "reload subscription", code, err)
	}
	return sub, nil
}

// withoutIDs drops client ids from the options of a new subscription.
func withoutIDs(options []OptionInput) []OptionInput {
	out := make([]OptionInput, len(options))
	for i, opt := range options {
		opt.ID = nil
		out[i] = opt
	}
	return out
}

func merge(sub Subscription, req UpdateRequest) Subscription {
	if req.TitleAr != nil {
		sub.TitleAr = *req.TitleAr
	}
	if req.TitleEn != nil {
		sub.TitleEn = *req.TitleEn
	}
	if req.DescriptionAr != nil {
		sub.DescriptionAr = sanitize.HTML(*req.DescriptionAr)
	}
	if req.DescriptionEn != nil {
		sub.DescriptionEn = sanitize.HTML(*req.DescriptionEn)
	}
	if req.ImageURL != nil {
		sub.ImageURL = req.ImageURL
	}
	if req.Price != nil {
		sub.Price = *req.Price
	}
	if req.OfferPrice != nil {
		sub.OfferPrice = *req.OfferPrice
	}
	if req.Category != nil {
		sub.Category = *req.Category
	}
	if req.Status != nil {
		sub.Status = *req.Status
	}
	return sub
}

func (s *Service) fail(ctx context.Context, op, code string, err error) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return apperror.NotFound(code, "Subscription not found")
	}
	s.log.ErrorContext(ctx, op, slog.Any("error", err))
	return apperror.Internal(code, "Failed to "+op, err)
}
