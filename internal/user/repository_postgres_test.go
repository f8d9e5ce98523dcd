package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userRowColumns = []string{
	"id", "first_name", "last_name", "username", "email", "password", "gender", "role", "status",
	"phone_number", "profile_picture", "personal_identity_picture", "address", "birth_date",
	"city_id", "country_id", "city_name_ar", "city_name_en", "country_name_ar", "country_name_en",
	"created_at", "updated_at", "deleted_at",
}

func TestPostgresGetByID_ScansJoinedPlaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(7, "Sara", "Ali", "sara", "sara@example.com", "hash", "FEMALE", "USER", "ACTIVE",
			"+100", nil, nil, "street", now, 3, 4, "مدينة", "City", "بلد", "Country", now, now, nil)
	mock.ExpectQuery("SELECT .* FROM users u").WithArgs(7).WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.City == nil || user.City.NameEn != "City" || user.Country == nil || user.Country.ID != 4 {
		t.Fatalf("places not scanned: city=%+v country=%+v", user.City, user.Country)
	}
	if user.ProfilePicture != nil || user.PhoneNumber == nil || *user.PhoneNumber != "+100" {
		t.Fatalf("nullable columns not mapped: %+v", user)
	}
	if user.DeletedAt != nil {
		t.Fatalf("expected nil deletedAt")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT .* FROM users u").WithArgs(9).WillReturnRows(sqlmock.NewRows(userRowColumns))

	if _, err := repo.GetByID(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresCreate_MapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err = repo.Create(context.Background(), User{Username: "dup", Email: "dup@example.com"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestPostgresSoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	at := time.Now()
	mock.ExpectExec("UPDATE users SET deleted_at = COALESCE").WithArgs(5, at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET deleted_at = COALESCE").WithArgs(6, at).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SoftDelete(context.Background(), 5, at); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := repo.SoftDelete(context.Background(), 6, at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSearch_EscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("ILIKE").WithArgs(`%50\%%`, 10).WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, err := repo.Search(context.Background(), "50%", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %d", len(users))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
