package banner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

const bannerSelect = `
	SELECT b.id, b.item_id, b.is_active, b.start_date, b.end_date,
		b.created_at, b.updated_at, b.deleted_at,
		i.id, i.title, i.description, i.trade_value, i.condition, i.is_banner
	FROM banners b
	LEFT JOIN items i ON i.id = b.item_id AND i.deleted_at IS NULL
`

const (
	getBannerQuery       = bannerSelect + ` WHERE b.id = $1 AND b.deleted_at IS NULL`
	listItemBannersQuery = bannerSelect + ` WHERE b.item_id = $1 AND b.deleted_at IS NULL ORDER BY b.created_at DESC, b.id DESC`
	imagesForItemsQuery  = `
		SELECT item_id, image_url
		FROM item_images
		WHERE item_id = ANY($1::int[])
		ORDER BY id
	`
	insertBannerQuery = `
		INSERT INTO banners (item_id, is_active, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	hasActiveBannerQuery = `
		SELECT EXISTS (
			SELECT 1 FROM banners WHERE item_id = $1 AND is_active AND deleted_at IS NULL
		)
	`
	deactivateBannersQuery = `
		UPDATE banners SET is_active = false, updated_at = now()
		WHERE item_id = $1 AND is_active
	`
	updateBannerQuery = `
		UPDATE banners SET is_active = $1, start_date = $2, end_date = $3, updated_at = now()
		WHERE id = $4 AND deleted_at IS NULL
	`
	softDeleteBannerQuery = `
		UPDATE banners SET is_active = false, deleted_at = COALESCE(deleted_at, $2), updated_at = now()
		WHERE id = $1
	`
)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// listable renders filter as a WHERE clause. Only banners of active items
// flagged is_banner are listable.
func listable(filter Filter) (string, []any) {
	clause := ` WHERE b.deleted_at IS NULL AND i.id IS NOT NULL AND i.is_banner`
	if filter.Active == nil {
		return clause, nil
	}
	return clause + ` AND b.is_active = $1`, []any{*filter.Active}
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter, page pagination.Params) ([]Banner, error) {
	clause, args := listable(filter)
	query := fmt.Sprintf("%s%s ORDER BY b.created_at DESC, b.id DESC LIMIT $%d OFFSET $%d",
		bannerSelect, clause, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)
	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) Count(ctx context.Context, filter Filter) (int, error) {
	clause, args := listable(filter)
	query := `SELECT COUNT(*) FROM banners b LEFT JOIN items i ON i.id = b.item_id AND i.deleted_at IS NULL` + clause

	var total int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Banner, error) {
	b, err := scanBanner(r.db.QueryRowContext(ctx, getBannerQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Banner{}, ErrNotFound
		}
		return Banner{}, err
	}

	banners := []Banner{b}
	if err := r.attachImages(ctx, banners); err != nil {
		return Banner{}, err
	}
	return banners[0], nil
}

func (r *PostgresRepository) ListByItem(ctx context.Context, itemID int) ([]Banner, error) {
	banners, err := r.query(ctx, listItemBannersQuery, itemID)
	if err != nil {
		return nil, err
	}
	for i := range banners {
		banners[i].Item = nil
	}
	return banners, nil
}

func (r *PostgresRepository) Create(ctx context.Context, banner Banner) (Banner, error) {
	err := r.db.QueryRowContext(ctx, insertBannerQuery,
		banner.ItemID, banner.IsActive, banner.StartDate, banner.EndDate,
	).Scan(&banner.ID, &banner.CreatedAt, &banner.UpdatedAt)
	if err != nil {
		return Banner{}, err
	}
	banner.Item = nil
	return banner, nil
}

func (r *PostgresRepository) HasActive(ctx context.Context, itemID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, hasActiveBannerQuery, itemID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) DeactivateByItem(ctx context.Context, itemID int) (int, error) {
	result, err := r.db.ExecContext(ctx, deactivateBannersQuery, itemID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *PostgresRepository) Update(ctx context.Context, id int, isActive bool, start, end *time.Time) (Banner, error) {
	result, err := r.db.ExecContext(ctx, updateBannerQuery, isActive, start, end, id)
	if err != nil {
		return Banner{}, err
	}
	if affected, err := result.RowsAffected(); err != nil {
		return Banner{}, err
	} else if affected == 0 {
		return Banner{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, softDeleteBannerQuery, id, at)
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

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Banner, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banners := make([]Banner, 0)
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachImages(ctx, banners); err != nil {
		return nil, err
	}
	return banners, nil
}

// attachImages loads the image URLs of every promoted item in one query.
func (r *PostgresRepository) attachImages(ctx context.Context, banners []Banner) error {
	ids := make([]int, 0, len(banners))
	byItem := make(map[int][]*ItemSummary)
	for i := range banners {
		item := banners[i].Item
		if item == nil {
			continue
		}
		if _, seen := byItem[item.ID]; !seen {
			ids = append(ids, item.ID)
		}
		byItem[item.ID] = append(byItem[item.ID], item)
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.QueryContext(ctx, imagesForItemsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int
		var url string
		if err := rows.Scan(&itemID, &url); err != nil {
			return err
		}
		for _, item := range byItem[itemID] {
			item.ImageURLs = append(item.ImageURLs, url)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBanner(scanner rowScanner) (Banner, error) {
	var (
		b           Banner
		start, end  sql.NullTime
		deletedAt   sql.NullTime
		itemID      sql.NullInt64
		title       sql.NullString
		description sql.NullString
		tradeValue  sql.NullFloat64
		condition   sql.NullString
		isBanner    sql.NullBool
	)
	if err := scanner.Scan(&b.ID, &b.ItemID, &b.IsActive, &start, &end,
		&b.CreatedAt, &b.UpdatedAt, &deletedAt,
		&itemID, &title, &description, &tradeValue, &condition, &isBanner); err != nil {
		return Banner{}, err
	}
	if start.Valid {
		b.StartDate = &start.Time
	}
	if end.Valid {
		b.EndDate = &end.Time
	}
	if deletedAt.Valid {
		b.DeletedAt = &deletedAt.Time
	}
	if itemID.Valid {
		b.Item = &ItemSummary{
			ID:          int(itemID.Int64),
			Title:       title.String,
			Description: description.String,
			TradeValue:  tradeValue.Float64,
			Condition:   condition.String,
			IsBanner:    isBanner.Bool,
			ImageURLs:   []string{},
		}
	}
	return b, nil
}
