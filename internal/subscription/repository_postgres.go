package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

const subscriptionSelect = `
	SELECT id, title_ar, title_en, description_ar, description_en, image_url, price, offer_price,
		category, status, created_at, updated_at, deleted_at
	FROM subscriptions
`

const (
	getSubscriptionQuery    = subscriptionSelect + ` WHERE id = $1 AND deleted_at IS NULL`
	insertSubscriptionQuery = `
		INSERT INTO subscriptions (title_ar, title_en, description_ar, description_en, image_url,
			price, offer_price, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	updateSubscriptionQuery = `
		UPDATE subscriptions
		SET title_ar = $1, title_en = $2, description_ar = $3, description_en = $4, image_url = $5,
			price = $6, offer_price = $7, category = $8, status = $9, updated_at = now()
		WHERE id = $10 AND deleted_at IS NULL
	`
	softDeleteSubscriptionQuery  = `UPDATE subscriptions SET deleted_at = COALESCE(deleted_at, $2) WHERE id = $1`
	optionsForSubscriptionsQuery = `
		SELECT id, subscription_id, name_ar, name_en, created_at, updated_at
		FROM subscription_options
		WHERE subscription_id = ANY($1::int[]) AND deleted_at IS NULL
		ORDER BY id
	`
	insertOptionsQuery = `
		INSERT INTO subscription_options (subscription_id, name_ar, name_en)
		SELECT $1, o.name_ar, o.name_en
		FROM unnest($2::text[], $3::text[]) AS o(name_ar, name_en)
	`
	updateOptionQuery = `
		UPDATE subscription_options SET name_ar = $1, name_en = $2, updated_at = now()
		WHERE id = $3 AND subscription_id = $4 AND deleted_at IS NULL
	`
	softDeleteOptionsQuery = `
		UPDATE subscription_options SET deleted_at = $3
		WHERE subscription_id = $1 AND id = ANY($2::int[]) AND deleted_at IS NULL
	`
)

type PostgresRepository struct {
	db   database.DBTX
	conn *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, conn: db}
}

// where renders filter as a WHERE clause and its arguments.
func where(filter Filter) (string, []any) {
	conds := []string{"deleted_at IS NULL"}
	var args []any
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter, page pagination.Params) ([]Subscription, error) {
	clause, args := where(filter)
	query := fmt.Sprintf("%s%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		subscriptionSelect, clause, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachOptions(ctx, subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter Filter) (int, error) {
	clause, args := where(filter)
	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscriptions"+clause, args...).Scan(&total)
	return total, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Subscription, error) {
	sub, err := scanSubscription(r.db.QueryRowContext(ctx, getSubscriptionQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, err
	}

	subs := []Subscription{sub}
	if err := r.attachOptions(ctx, subs); err != nil {
		return Subscription{}, err
	}
	return subs[0], nil
}

func (r *PostgresRepository) Create(ctx context.Context, sub Subscription) (Subscription, error) {
	err := r.db.QueryRowContext(ctx, insertSubscriptionQuery, subscriptionArgs(sub)...).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return Subscription{}, err
	}
	sub.Options = []Option{}
	return sub, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, sub Subscription) error {
	result, err := r.db.ExecContext(ctx, updateSubscriptionQuery, append(subscriptionArgs(sub), id)...)
	if err != nil {
		return err
	}
	return expectRow(result)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, softDeleteSubscriptionQuery, id, at)
	if err != nil {
		return err
	}
	return expectRow(result)
}

func (r *PostgresRepository) Options(ctx context.Context, subscriptionID int) ([]Option, error) {
	subs := []Subscription{{ID: subscriptionID}}
	if err := r.attachOptions(ctx, subs); err != nil {
		return nil, err
	}
	return subs[0].Options, nil
}

func (r *PostgresRepository) CreateOptions(ctx context.Context, subscriptionID int, options []Option) error {
	if len(options) == 0 {
		return nil
	}
	namesAr := make([]string, len(options))
	namesEn := make([]string, len(options))
	for i, opt := range options {
		namesAr[i], namesEn[i] = opt.NameAr, opt.NameEn
	}
	_, err := r.db.ExecContext(ctx, insertOptionsQuery, subscriptionID, pq.Array(namesAr), pq.Array(namesEn))
	return err
}

func (r *PostgresRepository) UpdateOption(ctx context.Context, option Option) error {
	result, err := r.db.ExecContext(ctx, updateOptionQuery, option.NameAr, option.NameEn, option.ID, option.SubscriptionID)
	if err != nil {
		return err
	}
	return expectRow(result)
}

func (r *PostgresRepository) SoftDeleteOptions(ctx context.Context, subscriptionID int, ids []int, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, softDeleteOptionsQuery, subscriptionID, pq.Array(ids), at)
	return err
}

// WithinTx joins the enclosing transaction when the repository is already
// bound to one.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}
	return database.RunInTransaction(ctx, r.conn, func(ctx context.Context, tx *sql.Tx) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// attachOptions loads the active options of every subscription in one query.
func (r *PostgresRepository) attachOptions(ctx context.Context, subs []Subscription) error {
	if len(subs) == 0 {
		return nil
	}

	ids := make([]int, len(subs))
	index := make(map[int]int, len(subs))
	for i := range subs {
		ids[i] = subs[i].ID
		index[subs[i].ID] = i
		subs[i].Options = []Option{}
	}

	rows, err := r.db.QueryContext(ctx, optionsForSubscriptionsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var opt Option
		if err := rows.Scan(&opt.ID, &opt.SubscriptionID, &opt.NameAr, &opt.NameEn, &opt.CreatedAt, &opt.UpdatedAt); err != nil {
			return err
		}
		if i, ok := index[opt.SubscriptionID]; ok {
			subs[i].Options = append(subs[i].Options, opt)
		}
	}
	return rows.Err()
}

func expectRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func subscriptionArgs(sub Subscription) []any {
	return []any{
		sub.TitleAr,
		sub.TitleEn,
		sub.DescriptionAr,
		sub.DescriptionEn,
		sub.ImageURL,
		sub.Price,
		sub.OfferPrice,
		string(sub.Category),
		string(sub.Status),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(scanner rowScanner) (Subscription, error) {
	var (
		sub              Subscription
		imageURL         sql.NullString
		category, status string
		deletedAt        sql.NullTime
	)
	if err := scanner.Scan(&sub.ID, &sub.TitleAr, &sub.TitleEn, &sub.DescriptionAr, &sub.DescriptionEn,
		&imageURL, &sub.Price, &sub.OfferPrice, &category, &status,
		&sub.CreatedAt, &sub.UpdatedAt, &deletedAt); err != nil {
		return Subscription{}, err
	}
	sub.Category = Category(category)
	sub.Status = Status(status)
	if imageURL.Valid {
		sub.ImageURL = &imageURL.String
	}
	if deletedAt.Valid {
		sub.DeletedAt = &deletedAt.Time
	}
	return sub, nil
}
