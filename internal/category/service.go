package category

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/sanitize"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

const DefaultListLimit = 1000

type ListResult struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
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
		func(ctx context.Context) ([]Category, error) { return s.repo.List(ctx, filter, page) },
		func(ctx context.Context) (int, error) { return s.repo.Count(ctx, filter) },
	)
	if err != nil {
		return ListResult{}, s.fail(ctx, "list categories", apperror.CodeFindAllFailed, err)
	}
	s.log.DebugContext(ctx, "listed categories", slog.Int("count", len(result.Rows)))
	return ListResult{Categories: result.Rows, Total: result.Total}, nil
}

// Tree returns the top-level categories, each with its active children.
func (s *Service) Tree(ctx context.Context) ([]Category, error) {
	all := pagination.New(pagination.MaxLimit, 0, pagination.MaxLimit)

	top, err := s.repo.List(ctx, Filter{Scope: ScopeTopLevel}, all)
	if err != nil {
		return nil, s.fail(ctx, "list category tree", apperror.CodeFindAllFailed, err)
	}
	subs, err := s.repo.List(ctx, Filter{Scope: ScopeSub}, all)
	if err != nil {
		return nil, s.fail(ctx, "list category tree", apperror.CodeFindAllFailed, err)
	}

	children := make(map[int][]Category, len(top))
	for _, sub := range subs {
		children[*sub.ParentID] = append(children[*sub.ParentID], sub)
	}
	for i := range top {
		top[i].Children = children[top[i].ID]
		if top[i].Children == nil {
			top[i].Children = []Category{}
		}
	}
	return top, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, s.fail(ctx, "get category", apperror.CodeFindOneFailed, err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Category, error) {
	if req.ParentID != nil {
		if err := s.checkParent(ctx, 0, *req.ParentID, apperror.CodeCreateFailed); err != nil {
			return Category{}, err
		}
	}

	created, err := s.repo.Create(ctx, Category{
		NameAr:        req.NameAr,
		NameEn:        req.NameEn,
		DescriptionAr: sanitize.HTML(req.DescriptionAr),
		DescriptionEn: sanitize.HTML(req.DescriptionEn),
		ImageURL:      req.ImageURL,
		ParentID:      req.ParentID,
	})
	if err != nil {
		return Category{}, s.fail(ctx, "create category", apperror.CodeCreateFailed, err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, s.fail(ctx, "update category", apperror.CodeUpdateFailed, err)
	}

	if req.NameAr != nil {
		c.NameAr = *req.NameAr
	}
	if req.NameEn != nil {
		c.NameEn = *req.NameEn
	}
	if req.DescriptionAr != nil {
		c.DescriptionAr = sanitize.HTML(*req.DescriptionAr)
	}
	if req.DescriptionEn != nil {
		c.DescriptionEn = sanitize.HTML(*req.DescriptionEn)
	}
	if req.ImageURL != nil {
		c.ImageURL = req.ImageURL
	}
	if req.ParentID != nil {
		if *req.ParentID == 0 {
			c.ParentID = nil
		} else {
			if err := s.checkParent(ctx, id, *req.ParentID, apperror.CodeUpdateFailed); err != nil {
				return Category{}, err
			}
			c.ParentID = req.ParentID
		}
	}

	updated, err := s.repo.Update(ctx, id, c)
	if err != nil {
		return Category{}, s.fail(ctx, "update category", apperror.CodeUpdateFailed, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return s.fail(ctx, "delete category", apperror.CodeDeleteFailed, err)
	}
	return nil
}

// checkParent requires parentID to name an active top-level category other
// than id. Hierarchies are two levels deep.
func (s *Service) checkParent(ctx context.Context, id, parentID int, code string) error {
	invalid := func(rule string) error {
		return apperror.Validation("Invalid parent category", []validation.FieldError{{Field: "parentId", Rule: rule}})
	}

	if parentID == id {
		return invalid("not_self")
	}
	parent, err := s.repo.GetByID(ctx, parentID)
	if errors.Is(err, ErrNotFound) {
		return invalid("exists")
	}
	if err != nil {
		return s.fail(ctx, "check parent category", code, err)
	}
	if parent.ParentID != nil {
		return invalid("top_level")
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op, code string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound(code, "Category not found")
	}
	s.log.ErrorContext(ctx, op, slog.Any("error", err))
	return apperror.Internal(code, "Failed to "+op, err)
}
