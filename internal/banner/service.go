package banner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

const DefaultListLimit = 10

type ListResult struct {
	Banners []Banner `json:"banners"`
	Total   int      `json:"total"`
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
		func(ctx context.Context) ([]Banner, error) { return s.repo.List(ctx, filter, page) },
		func(ctx context.Context) (int, error) { return s.repo.Count(ctx, filter) },
	)
	if err != nil {
		return ListResult{}, s.fail(ctx, "list banners", apperror.CodeFindAllFailed, err)
	}
	s.log.DebugContext(ctx, "listed banners", slog.Int("count", len(result.Rows)))
	return ListResult{Banners: result.Rows, Total: result.Total}, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (Banner, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Banner{}, s.fail(ctx, "get banner", apperror.CodeFindOneFailed, err)
	}
	return b, nil
}

// Update replaces the banner's state and window. Dates left out of req are
// cleared.
func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (Banner, error) {
	start, end, err := normalise(req.StartDate.Ptr(), req.EndDate.Ptr())
	if err != nil {
		return Banner{}, err
	}

	b, err := s.repo.Update(ctx, id, *req.IsActive, start, end)
	if err != nil {
		return Banner{}, s.fail(ctx, "update banner", apperror.CodeUpdateFailed, err)
	}
	s.log.InfoContext(ctx, "banner updated", slog.Int("banner_id", id), slog.Bool("active", b.IsActive))
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return s.fail(ctx, "delete banner", apperror.CodeDeleteFailed, err)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op, code string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound(code, "Banner not found")
	}
	s.log.ErrorContext(ctx, op, slog.Any("error", err))
	return apperror.Internal(code, "Failed to "+op, err)
}
