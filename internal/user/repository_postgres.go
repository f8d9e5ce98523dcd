package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
)

type PostgresRepository struct {
	db database.DBTX
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `
	u.id, u.first_name, u.last_name, u.username, u.email, u.password, u.gender, u.role, u.status,
	u.phone_number, u.profile_picture, u.personal_identity_picture, u.address, u.birth_date,
	u.city_id, u.country_id, ci.name_ar, ci.name_en, co.name_ar, co.name_en,
	u.created_at, u.updated_at, u.deleted_at
`

const userJoins = `
	FROM users u
	LEFT JOIN cities ci ON ci.id = u.city_id AND ci.deleted_at IS NULL
	LEFT JOIN countries co ON co.id = u.country_id AND co.deleted_at IS NULL
`

const (
	listUsersQuery = `SELECT ` + userColumns + userJoins + `
		WHERE u.deleted_at IS NULL
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $1 OFFSET $2
	`
	countUsersQuery   = `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`
	getUserByIDQuery  = `SELECT ` + userColumns + userJoins + ` WHERE u.id = $1 AND u.deleted_at IS NULL`
	getUserByLoginSQL = `SELECT ` + userColumns + userJoins + `
		WHERE u.deleted_at IS NULL AND (lower(u.email) = lower($1) OR lower(u.username) = lower($1))
		LIMIT 1
	`
	emailExistsQuery    = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`
	usernameExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`
	searchUsersQuery    = `SELECT ` + userColumns + userJoins + `
		WHERE u.deleted_at IS NULL AND (
			u.first_name ILIKE $1 OR u.last_name ILIKE $1 OR u.email ILIKE $1 OR u.username ILIKE $1
		)
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $2
	`

	insertUserQuery = `
		INSERT INTO users (first_name, last_name, username, email, password, gender, role, status,
			phone_number, profile_picture, personal_identity_picture, address, birth_date, city_id, country_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`
	updateUserQuery = `
		UPDATE users
		SET first_name = $1,
			last_name = $2,
			username = $3,
			email = $4,
			password = $5,
			gender = $6,
			role = $7,
			status = $8,
			phone_number = $9,
			profile_picture = $10,
			personal_identity_picture = $11,
			address = $12,
			birth_date = $13,
			city_id = $14,
			country_id = $15,
			updated_at = now()
		WHERE id = $16 AND deleted_at IS NULL
	`
	softDeleteUserQuery = `UPDATE users SET deleted_at = COALESCE(deleted_at, $2) WHERE id = $1`
)

const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, page pagination.Params) ([]User, error) {
	return r.query(ctx, listUsersQuery, page.Limit, page.Offset)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, countUsersQuery).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.queryOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, emailOrUsername string) (User, error) {
	return r.queryOne(ctx, getUserByLoginSQL, emailOrUsername)
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, emailExistsQuery, email).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, usernameExistsQuery, username).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	err := r.db.QueryRowContext(ctx, insertUserQuery, userArgs(user)...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, mapConstraint(err)
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, userUpdate User) (User, error) {
	args := append(userArgs(userUpdate), id)
	result, err := r.db.ExecContext(ctx, updateUserQuery, args...)
	if err != nil {
		return User{}, mapConstraint(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, softDeleteUserQuery, id, at)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]User, error) {
	return r.query(ctx, searchUsersQuery, "%"+escapeLike(query)+"%", limit)
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) queryOne(ctx context.Context, q string, args ...any) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func userArgs(user User) []any {
	return []any{
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.Password,
		string(user.Gender),
		string(user.Role),
		string(user.Status),
		user.PhoneNumber,
		user.ProfilePicture,
		user.PersonalIdentityPicture,
		user.Address,
		user.BirthDate,
		user.CityID,
		user.CountryID,
	}
}

func mapConstraint(err error) error {
	constraint, ok := database.IsUniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case emailConstraint:
		return ErrEmailExists
	case usernameConstraint:
		return ErrUsernameExists
	}
	return err
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var (
		gender, role, status     string
		phone, picture, identity sql.NullString
		address                  sql.NullString
		birthDate, deletedAt     sql.NullTime
		cityID, countryID        sql.NullInt64
		cityAr, cityEn           sql.NullString
		countryAr, countryEn     sql.NullString
	)

	if err := scanner.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.Password,
		&gender,
		&role,
		&status,
		&phone,
		&picture,
		&identity,
		&address,
		&birthDate,
		&cityID,
		&countryID,
		&cityAr,
		&cityEn,
		&countryAr,
		&countryEn,
		&user.CreatedAt,
		&user.UpdatedAt,
		&deletedAt,
	); err != nil {
		return User{}, err
	}

	user.Gender = Gender(gender)
	user.Role = Role(role)
	user.Status = Status(status)
	user.PhoneNumber = nullString(phone)
	user.ProfilePicture = nullString(picture)
	user.PersonalIdentityPicture = nullString(identity)
	user.Address = nullString(address)
	if birthDate.Valid {
		user.BirthDate = &birthDate.Time
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	if cityID.Valid {
		id := int(cityID.Int64)
		user.CityID = &id
		if cityEn.Valid {
			user.City = &Place{ID: id, NameAr: cityAr.String, NameEn: cityEn.String}
		}
	}
	if countryID.Valid {
		id := int(countryID.Int64)
		user.CountryID = &id
		if countryEn.Valid {
			user.Country = &Place{ID: id, NameAr: countryAr.String, NameEn: countryEn.String}
		}
	}

	return user, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
