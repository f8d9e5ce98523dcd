package city

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

const DefaultListLimit = 10

type ListResult struct {
	Cities []City `json:"cities"`
	Total  int    `json:"total"`
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
		func(ctx context.Context) ([]City, error) { return s.repo.List(ctx, page) },
		s.repo.Count,
	)
	if err != nil {
		return ListResult{}, s.fail(ctx, "list cities", apperror.CodeFindAllFailed, err)
	}
	s.log.DebugContext(ctx, "listed cities", slog.Int("count", len(result.Rows)))
	return ListResult{Cities: result.Rows, Total: result.Total}, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (City, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return City{}, s.fail(ctx, "get city", apperror.CodeFindOneFailed, err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (City, error) {
	if err := s.requireCountry(ctx, req.CountryID, apperror.CodeCreateFailed); err != nil {
		return City{}, err
	}

	c, err := s.repo.Create(ctx, City{NameAr: req.NameAr, NameEn: req.NameEn, CountryID: req.CountryID})
	if err != nil {
		return City{}, s.fail(ctx, "create city", apperror.CodeCreateFailed, err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (City, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return City{}, s.fail(ctx, "update city", apperror.CodeUpdateFailed, err)
	}
	if req.NameAr != nil {
		c.NameAr = *req.NameAr
	}
	if req.NameEn != nil {
		c.NameEn = *req.NameEn
	}
	if req.CountryID != nil && *req.CountryID != c.CountryID {
		if err := s.requireCountry(ctx, *req.CountryID, apperror.CodeUpdateFailed); err != nil {
			return City{}, err
		}
		c.CountryID = *req.CountryID
	}

	updated, err := s.repo.Update(ctx, id, c)
	if err != nil {
		return City{}, s.fail(ctx, "update city", apperror.CodeUpdateFailed, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return s.fail(ctx, "delete city", apperror.CodeDeleteFailed, err)
	}
	return nil
}

func (s *Service) requireCountry(ctx context.Context, countryID int, code string) error {
	ok, err := s.repo.CountryExists(ctx, countryID)
	if err != nil {
		return s.fail(ctx, "check country", code, err)
	}
	if !ok {
		return apperror.Validation("Country does not exist", []validation.FieldError{{Field: "countryId", Rule: "exists"}})
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op, code string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound(code, "City not found")
	}
	s.log.ErrorContext(ctx, op, slog.Any("error", err))
	return apperror.Internal(code, "Failed to "+op, err)
}
