package country

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

const (
	listCountriesQuery = `
		SELECT id, name_ar, name_en, created_at, updated_at, deleted_at
		FROM countries
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	countCountriesQuery = `SELECT COUNT(*) FROM countries WHERE deleted_at IS NULL`
	getCountryQuery     = `
		SELECT id, name_ar, name_en, created_at, updated_at, deleted_at
		FROM countries
		WHERE id = $1 AND deleted_at IS NULL
	`
	citiesForCountriesQuery = `
		SELECT id, name_ar, name_en, country_id
		FROM cities
		WHERE country_id = ANY($1::int[]) AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`
	insertCountryQuery = `
		INSERT INTO countries (name_ar, name_en)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	updateCountryQuery = `
		UPDATE countries SET name_ar = $1, name_en = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL
	`
	softDeleteCountryQuery = `UPDATE countries SET deleted_at = COALESCE(deleted_at, $2) WHERE id = $1`
)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, page pagination.Params) ([]Country, error) {
	rows, err := r.db.QueryContext(ctx, listCountriesQuery, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	countries := make([]Country, 0)
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachCities(ctx, countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, countCountriesQuery).Scan(&total)
	return total, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Country, error) {
	c, err := scanCountry(r.db.QueryRowContext(ctx, getCountryQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Country{}, ErrNotFound
		}
		return Country{}, err
	}

	countries := []Country{c}
	if err := r.attachCities(ctx, countries); err != nil {
		return Country{}, err
	}
	return countries[0], nil
}

func (r *PostgresRepository) Create(ctx context.Context, country Country) (Country, error) {
	err := r.db.QueryRowContext(ctx, insertCountryQuery, country.NameAr, country.NameEn).
		Scan(&country.ID, &country.CreatedAt, &country.UpdatedAt)
	if err != nil {
		return Country{}, err
	}
	country.Cities = []CitySummary{}
	return country, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, country Country) (Country, error) {
	result, err := r.db.ExecContext(ctx, updateCountryQuery, country.NameAr, country.NameEn, id)
	if err != nil {
		return Country{}, err
	}
	if affected, err := result.RowsAffected(); err != nil {
		return Country{}, err
	} else if affected == 0 {
		return Country{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, softDeleteCountryQuery, id, at)
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

// attachCities loads the active cities of every country in one query.
func (r *PostgresRepository) attachCities(ctx context.Context, countries []Country) error {
	if len(countries) == 0 {
		return nil
	}

	ids := make([]int, len(countries))
	index := make(map[int]int, len(countries))
	for i := range countries {
		ids[i] = countries[i].ID
		index[countries[i].ID] = i
		countries[i].Cities = []CitySummary{}
	}

	rows, err := r.db.QueryContext(ctx, citiesForCountriesQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var city CitySummary
		var countryID int
		if err := rows.Scan(&city.ID, &city.NameAr, &city.NameEn, &countryID); err != nil {
			return err
		}
		if i, ok := index[countryID]; ok {
			countries[i].Cities = append(countries[i].Cities, city)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountry(scanner rowScanner) (Country, error) {
	var c Country
	var deletedAt sql.NullTime
	if err := scanner.Scan(&c.ID, &c.NameAr, &c.NameEn, &c.CreatedAt, &c.UpdatedAt, &deletedAt); err != nil {
		return Country{}, err
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return c, nil
}
