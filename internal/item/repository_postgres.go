package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/wichananm65/tabdil-hub-backend/internal/banner"
	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

const itemSelect = `
	SELECT it.id, it.title, it.description, it.trade_value, it.condition,
		it.category_id, it.subcategory_id, it.city_id, it.country_id, it.user_id, it.is_banner,
		it.created_at, it.updated_at, it.deleted_at,
		c.name_ar, c.name_en, sc.name_ar, sc.name_en,
		ci.name_ar, ci.name_en, co.name_ar, co.name_en,
		u.first_name, u.last_name, u.username, u.profile_picture
	FROM items it
	LEFT JOIN categories c ON c.id = it.category_id AND c.deleted_at IS NULL
	LEFT JOIN categories sc ON sc.id = it.subcategory_id AND sc.deleted_at IS NULL
	LEFT JOIN cities ci ON ci.id = it.city_id AND ci.deleted_at IS NULL
	LEFT JOIN countries co ON co.id = it.country_id AND co.deleted_at IS NULL
	LEFT JOIN users u ON u.id = it.user_id AND u.deleted_at IS NULL
`

const (
	getItemQuery       = itemSelect + ` WHERE it.id = $1`
	imagesForItemQuery = `
		SELECT id, item_id, image_url
		FROM item_images
		WHERE item_id = ANY($1::int[])
		ORDER BY id
	`
	insertItemQuery = `
		INSERT INTO items (title, description, trade_value, condition, category_id, subcategory_id,
			city_id, country_id, user_id, is_banner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	updateItemQuery = `
		UPDATE items
		SET title = $1, description = $2, trade_value = $3, condition = $4, category_id = $5,
			subcategory_id = $6, city_id = $7, country_id = $8, user_id = $9, is_banner = $10,
			updated_at = now()
		WHERE id = $11 AND deleted_at IS NULL
	`
	softDeleteItemQuery = `UPDATE items SET deleted_at = COALESCE(deleted_at, $2) WHERE id = $1`
	insertImagesQuery   = `
		INSERT INTO item_images (item_id, image_url)
		SELECT $1, url FROM unnest($2::text[]) AS url
		ON CONFLICT (item_id, image_url) DO NOTHING
	`
	deleteImagesQuery = `DELETE FROM item_images WHERE item_id = $1 AND image_url = ANY($2::text[])`
)

type PostgresRepository struct {
	db   database.DBTX
	conn *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, conn: db}
}

// where renders filter as a WHERE clause and its arguments.
func where(filter ListFilter) (string, []any) {
	conds := []string{"it.deleted_at IS NULL"}
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.IsBanner != nil {
		add("it.is_banner = $%d", *filter.IsBanner)
	}
	if filter.CategoryID != 0 {
		add("it.category_id = $%d", filter.CategoryID)
	}
	if filter.SubcategoryID != 0 {
		add("it.subcategory_id = $%d", filter.SubcategoryID)
	}
	if filter.UserID != 0 {
		add("it.user_id = $%d", filter.UserID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		add("(it.title ILIKE $%[1]d OR it.description ILIKE $%[1]d)", "%"+escapeLike(q)+"%")
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]Item, error) {
	clause, args := where(filter)
	query := fmt.Sprintf("%s%s ORDER BY it.created_at DESC, it.id DESC LIMIT $%d OFFSET $%d",
		itemSelect, clause, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachImages(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	clause, args := where(filter)
	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items it"+clause, args...).Scan(&total)
	return total, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, getItemQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}

	items := []Item{it}
	if err := r.attachImages(ctx, items); err != nil {
		return Item{}, err
	}
	return items[0], nil
}

func (r *PostgresRepository) Create(ctx context.Context, item Item) (Item, error) {
	err := r.db.QueryRowContext(ctx, insertItemQuery, itemArgs(item)...).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, mapConstraint(err)
	}
	item.Images = []Image{}
	return item, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, item Item) error {
	result, err := r.db.ExecContext(ctx, updateItemQuery, append(itemArgs(item), id)...)
	if err != nil {
		return mapConstraint(err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return err
	} else if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, softDeleteItemQuery, id, at)
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

func (r *PostgresRepository) ImageURLs(ctx context.Context, itemID int) ([]string, error) {
	items := []Item{{ID: itemID}}
	if err := r.attachImages(ctx, items); err != nil {
		return nil, err
	}
	return items[0].ImageURLs(), nil
}

func (r *PostgresRepository) AddImages(ctx context.Context, itemID int, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, insertImagesQuery, itemID, pq.Array(urls))
	return err
}

func (r *PostgresRepository) RemoveImages(ctx context.Context, itemID int, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, deleteImagesQuery, itemID, pq.Array(urls))
	return err
}

func (r *PostgresRepository) Banners() banner.Repository {
	return banner.NewPostgresRepository(r.db)
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

// attachImages loads the image sets of every item in one query.
func (r *PostgresRepository) attachImages(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int, len(items))
	index := make(map[int]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].Images = []Image{}
	}

	rows, err := r.db.QueryContext(ctx, imagesForItemQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var img Image
		var itemID int
		if err := rows.Scan(&img.ID, &itemID, &img.ImageURL); err != nil {
			return err
		}
		if i, ok := index[itemID]; ok {
			items[i].Images = append(items[i].Images, img)
		}
	}
	return rows.Err()
}

func itemArgs(item Item) []any {
	return []any{
		item.Title,
		item.Description,
		item.TradeValue,
		string(item.Condition),
		item.CategoryID,
		item.SubcategoryID,
		item.CityID,
		item.CountryID,
		item.UserID,
		item.IsBanner,
	}
}

func mapConstraint(err error) error {
	if constraint, ok := database.IsForeignKeyViolation(err); ok {
		return fmt.Errorf("%w: %s", ErrInvalidReference, constraint)
	}
	return err
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (Item, error) {
	var (
		it                     Item
		condition              string
		subcategoryID          sql.NullInt64
		deletedAt              sql.NullTime
		catAr, catEn           sql.NullString
		subAr, subEn           sql.NullString
		cityAr, cityEn         sql.NullString
		countryAr, countryEn   sql.NullString
		firstName, lastName    sql.NullString
		username, profilePhoto sql.NullString
	)
	if err := scanner.Scan(&it.ID, &it.Title, &it.Description, &it.TradeValue, &condition,
		&it.CategoryID, &subcategoryID, &it.CityID, &it.CountryID, &it.UserID, &it.IsBanner,
		&it.CreatedAt, &it.UpdatedAt, &deletedAt,
		&catAr, &catEn, &subAr, &subEn,
		&cityAr, &cityEn, &countryAr, &countryEn,
		&firstName, &lastName, &username, &profilePhoto); err != nil {
		return Item{}, err
	}
	it.Condition = Condition(condition)
	if subcategoryID.Valid {
		id := int(subcategoryID.Int64)
		it.SubcategoryID = &id
		it.Subcategory = summary(id, subAr, subEn)
	}
	if deletedAt.Valid {
		it.DeletedAt = &deletedAt.Time
	}
	it.Category = summary(it.CategoryID, catAr, catEn)
	it.City = summary(it.CityID, cityAr, cityEn)
	it.Country = summary(it.CountryID, countryAr, countryEn)
	if username.Valid {
		it.User = &Owner{
			ID:        it.UserID,
			FirstName: firstName.String,
			LastName:  lastName.String,
			Username:  username.String,
		}
		if profilePhoto.Valid {
			it.User.ProfilePicture = &profilePhoto.String
		}
	}
	return it, nil
}

func summary(id int, nameAr, nameEn sql.NullString) *Summary {
	if !nameEn.Valid && !nameAr.Valid {
		return nil
	}
	return &Summary{ID: id, NameAr: nameAr.String, NameEn: nameEn.String}
}
