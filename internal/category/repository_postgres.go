package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

const categorySelect = `
	SELECT id, name_ar, name_en, description_ar, description_en, image_url, parent_id,
		created_at, updated_at, deleted_at
	FROM categories
`

const (
	getCategoryQuery    = categorySelect + ` WHERE id = $1 AND deleted_at IS NULL`
	insertCategoryQuery = `
		INSERT INTO categories (name_ar, name_en, description_ar, description_en, image_url, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	updateCategoryQuery = `
		UPDATE categories
		SET name_ar = $1, name_en = $2, description_ar = $3, description_en = $4,
			image_url = $5, parent_id = $6, updated_at = now()
		WHERE id = $7 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`
	softDeleteCategoryQuery = `UPDATE categories SET deleted_at = COALESCE(deleted_at, $2) WHERE id = $1`
)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// where renders filter as a WHERE clause and its arguments.
func where(filter Filter) (string, []any) {
	switch filter.Scope {
	case ScopeSub:
		return ` WHERE deleted_at IS NULL AND parent_id IS NOT NULL`, nil
	case ScopeChildren:
		return ` WHERE deleted_at IS NULL AND parent_id = $1`, []any{filter.ParentID}
	default:
		return ` WHERE deleted_at IS NULL AND parent_id IS NULL`, nil
	}
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter, page pagination.Params) ([]Category, error) {
	clause, args := where(filter)
	query := fmt.Sprintf("%s%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		categorySelect, clause, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, filter Filter) (int, error) {
	clause, args := where(filter)
	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories"+clause, args...).Scan(&total)
	return total, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, getCategoryQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) Create(ctx context.Context, category Category) (Category, error) {
	err := r.db.QueryRowContext(ctx, insertCategoryQuery,
		category.NameAr, category.NameEn, category.DescriptionAr, category.DescriptionEn,
		category.ImageURL, category.ParentID,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	return category, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, category Category) (Category, error) {
	err := r.db.QueryRowContext(ctx, updateCategoryQuery,
		category.NameAr, category.NameEn, category.DescriptionAr, category.DescriptionEn,
		category.ImageURL, category.ParentID, id,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	category.ID = id
	return category, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, softDeleteCategoryQuery, id, at)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err != nil {
		return err
	} else if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(scanner rowScanner) (Category, error) {
	var (
		c         Category
		imageURL  sql.NullString
		parentID  sql.NullInt64
		deletedAt sql.NullTime
	)
	if err := scanner.Scan(&c.ID, &c.NameAr, &c.NameEn, &c.DescriptionAr, &c.DescriptionEn,
		&imageURL, &parentID, &c.CreatedAt, &c.UpdatedAt, &deletedAt); err != nil {
		return Category{}, err
	}
	if imageURL.Valid {
		c.ImageURL = &imageURL.String
	}
	if parentID.Valid {
		id := int(parentID.Int64)
		c.ParentID = &id
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return c, nil
}
