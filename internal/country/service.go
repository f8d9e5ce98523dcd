package country

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
	Countries []Country `json:"countries"`
	Total     int       `json:"total"`
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, page pagination.Params) (ListResult, error) {
	result, err := pagination.Fetch(ctx,
		func(ctx context.Context) ([]Country, error) { return s.repo.List(ctx, page) },
		s.repo.Count,
	)
	if err != nil {
		return ListResult{}, s.fail(ctx, "list countries", apperror.CodeFindAllFailed, err)
	}
	s.log.DebugContext(ctx, "listed countries", slog.Int("count", len(result.Rows)))
	return ListResult{Countries: result.Rows, Total: result.Total}, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (Country, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Country{}, s.fail(ctx, "get country", apperror.CodeFindOneFailed, err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Country, error) {
	c, err := s.repo.Create(ctx, Country{NameAr: req.NameAr, NameEn: req.NameEn})
	if err != nil {
		return Country{}, s.fail(ctx, "create country", apperror.CodeCreateFailed, err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (Country, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Country{}, s.fail(ctx, "update country", apperror.CodeUpdateFailed, err)
	}
	if req.NameAr != nil {
		c.NameAr = *req.NameAr
	}
	if req.NameEn != nil {
		c.NameEn = *req.NameEn
	}

	updated, err := s.repo.Update(ctx, id, c)
	if err != nil {
		return Country{}, s.fail(ctx, "update country", apperror.CodeUpdateFailed, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return s.fail(ctx, "delete country", apperror.CodeDeleteFailed, err)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op, code string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound(code, "Country not found")
	}
	s.log.ErrorContext(ctx, op, slog.Any("error", err))
	return apperror.Internal(code, "Failed to "+op, err)
}
