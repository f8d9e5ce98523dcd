package city

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

const cityColumns = `
	SELECT ci.id, ci.name_ar, ci.name_en, ci.country_id, co.name_ar, co.name_en,
		ci.created_at, ci.updated_at, ci.deleted_at
	FROM cities ci
	LEFT JOIN countries co ON co.id = ci.country_id AND co.deleted_at IS NULL
`

const (
	listCitiesQuery = cityColumns + `
		WHERE ci.deleted_at IS NULL
		ORDER BY ci.created_at DESC, ci.id DESC
		LIMIT $1 OFFSET $2
	`
	countCitiesQuery   = `SELECT COUNT(*) FROM cities WHERE deleted_at IS NULL`
	getCityQuery       = cityColumns + ` WHERE ci.id = $1 AND ci.deleted_at IS NULL`
	countryExistsQuery = `SELECT EXISTS (SELECT 1 FROM countries WHERE id = $1 AND deleted_at IS NULL)`
	insertCityQuery    = `INSERT INTO cities (name_ar, name_en, country_id) VALUES ($1, $2, $3) RETURNING id`
	updateCityQuery    = `
		UPDATE cities SET name_ar = $1, name_en = $2, country_id = $3, updated_at = now()
		WHERE id = $4 AND deleted_at IS NULL
	`
	softDeleteCityQuery = `UPDATE cities SET deleted_at = COALESCE(deleted_at, $2) WHERE id = $1`
)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, page pagination.Params) ([]City, error) {
	rows, err := r.db.QueryContext(ctx, listCitiesQuery, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]City, 0)
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, countCitiesQuery).Scan(&total)
	return total, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (City, error) {
	c, err := scanCity(r.db.QueryRowContext(ctx, getCityQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return City{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) CountryExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, countryExistsQuery, id).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) Create(ctx context.Context, city City) (City, error) {
	var id int
	if err := r.db.QueryRowContext(ctx, insertCityQuery, city.NameAr, city.NameEn, city.CountryID).Scan(&id); err != nil {
		return City{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Update(ctx context.Context, id int, city City) (City, error) {
	result, err := r.db.ExecContext(ctx, updateCityQuery, city.NameAr, city.NameEn, city.CountryID, id)
	if err != nil {
		return City{}, err
	}
	if affected, err := result.RowsAffected(); err != nil {
		return City{}, err
	} else if affected == 0 {
		return City{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, softDeleteCityQuery, id, at)
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

func scanCity(scanner rowScanner) (City, error) {
	var (
		c                    City
		countryAr, countryEn sql.NullString
		deletedAt            sql.NullTime
	)
	if err := scanner.Scan(&c.ID, &c.NameAr, &c.NameEn, &c.CountryID, &countryAr, &countryEn,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt); err != nil {
		return City{}, err
	}
	if countryEn.Valid {
		c.Country = &CountrySummary{ID: c.CountryID, NameAr: countryAr.String, NameEn: countryEn.String}
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return c, nil
}
