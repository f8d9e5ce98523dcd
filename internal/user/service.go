package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

const (
	DefaultListLimit = 5000
	searchLimit      = 10
)

type ListResult struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// Availability answers a check-username or check-email probe.
type Availability struct {
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
}

// dummyHash is compared against when a login matches no account, so both
// failure paths pay for one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)
	return hash
})

type Service struct {
	repo    Repository
	log     *slog.Logger
	now     func() time.Time
	compare func(hash, password []byte) error
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now, compare: bcrypt.CompareHashAndPassword}
}

func (s *Service) List(ctx context.Context, page pagination.Params) (ListResult, error) {
	result, err := pagination.Fetch(ctx,
		func(ctx context.Context) ([]User, error) { return s.repo.List(ctx, page) },
		s.repo.Count,
	)
	if err != nil {
		s.log.ErrorContext(ctx, "list users", slog.Any("error", err))
		return ListResult{}, apperror.Internal(apperror.CodeFindAllFailed, "Failed to fetch users", err)
	}

	s.log.DebugContext(ctx, "listed users", slog.Int("count", len(result.Rows)))
	return ListResult{Users: result.Rows, Total: result.Total}, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, s.translate(ctx, "get user", apperror.CodeFindOneFailed, err)
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	user := User{
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Username:                strings.TrimSpace(req.Username),
		Email:                   strings.TrimSpace(req.Email),
		Gender:                  req.Gender,
		Role:                    req.Role,
		Status:                  req.Status,
		PhoneNumber:             optional(req.PhoneNumber),
		ProfilePicture:          optional(req.ProfilePicture),
		PersonalIdentityPicture: optional(req.PersonalIdentityPicture),
		Address:                 optional(req.Address),
		CityID:                  req.CityID,
		CountryID:               req.CountryID,
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	if user.Status == "" {
		user.Status = StatusActive
	}

	return s.insert(ctx, user, req.Password, req.BirthDate)
}

// Register signs up a new account. Role and status always start as USER and
// ACTIVE.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return User{}, s.translate(ctx, "register user", apperror.CodeCreateFailed, err)
	}
	if taken {
		return User{}, usernameConflict(apperror.CodeCreateFailed)
	}

	taken, err = s.repo.EmailExists(ctx, email)
	if err != nil {
		return User{}, s.translate(ctx, "register user", apperror.CodeCreateFailed, err)
	}
	if taken {
		return User{}, emailConflict(apperror.CodeCreateFailed)
	}

	user := User{
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Username:                username,
		Email:                   email,
		Gender:                  req.Gender,
		Role:                    RoleUser,
		Status:                  StatusActive,
		PhoneNumber:             optional(req.PhoneNumber),
		ProfilePicture:          optional(req.ProfilePicture),
		PersonalIdentityPicture: optional(req.PersonalIdentityPicture),
		Address:                 optional(req.Address),
		CityID:                  req.CityID,
		CountryID:               req.CountryID,
	}
	return s.insert(ctx, user, req.Password, req.BirthDate)
}

func (s *Service) insert(ctx context.Context, user User, password, birthDate string) (User, error) {
	if birthDate != "" {
		parsed, err := time.Parse(birthDateLayout, birthDate)
		if err != nil {
			return User{}, apperror.Validation("Invalid birthDate", err.Error())
		}
		user.BirthDate = &parsed
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return User{}, apperror.Internal(apperror.CodeCreateFailed, "Failed to create user", err)
	}
	user.Password = hashed

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return User{}, s.translate(ctx, "create user", apperror.CodeCreateFailed, err)
	}

	s.log.InfoContext(ctx, "user created", slog.Int("user_id", created.ID))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, s.translate(ctx, "update user", apperror.CodeUpdateFailed, err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = optional(*req.PhoneNumber)
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = optional(*req.ProfilePicture)
	}
	if req.PersonalIdentityPicture != nil {
		user.PersonalIdentityPicture = optional(*req.PersonalIdentityPicture)
	}
	if req.Address != nil {
		user.Address = optional(*req.Address)
	}
	if req.BirthDate != nil {
		parsed, err := time.Parse(birthDateLayout, *req.BirthDate)
		if err != nil {
			return User{}, apperror.Validation("Invalid birthDate", err.Error())
		}
		user.BirthDate = &parsed
	}
	if req.CityID != nil {
		user.CityID = req.CityID
	}
	if req.CountryID != nil {
		user.CountryID = req.CountryID
	}
	if req.Password != nil {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return User{}, apperror.Internal(apperror.CodeUpdateFailed, "Failed to update user", err)
		}
		user.Password = hashed
	}

	updated, err := s.repo.Update(ctx, id, user)
	if err != nil {
		return User{}, s.translate(ctx, "update user", apperror.CodeUpdateFailed, err)
	}
	return updated, nil
}

// Delete soft-deletes the user. Deleting twice keeps the first timestamp.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return s.translate(ctx, "delete user", apperror.CodeDeleteFailed, err)
	}
	s.log.InfoContext(ctx, "user deleted", slog.Int("user_id", id))
	return nil
}

func (s *Service) Search(ctx context.Context, query string) ([]User, error) {
	users, err := s.repo.Search(ctx, strings.TrimSpace(query), searchLimit)
	if err != nil {
		return nil, s.translate(ctx, "search users", apperror.CodeSearchFailed, err)
	}
	return users, nil
}

// Authenticate resolves a login by email or username. A missing account and
// a wrong password produce the same error.
func (s *Service) Authenticate(ctx context.Context, emailOrUsername, password string) (User, error) {
	user, err := s.repo.GetByLogin(ctx, strings.TrimSpace(emailOrUsername))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = s.compare(dummyHash(), []byte(password))
			return User{}, apperror.Unauthorized("Invalid credentials")
		}
		return User{}, s.translate(ctx, "authenticate", apperror.CodeUnauthorized, err)
	}

	if s.compare([]byte(user.Password), []byte(password)) != nil {
		return User{}, apperror.Unauthorized("Invalid credentials")
	}

	return user, nil
}

func (s *Service) CheckUsername(ctx context.Context, username string) (Availability, error) {
	if strings.TrimSpace(username) == "" {
		return Availability{}, apperror.Validation("Username is required", "username must not be empty")
	}

	taken, err := s.repo.UsernameExists(ctx, strings.TrimSpace(username))
	if err != nil {
		return Availability{}, s.translate(ctx, "check username", apperror.CodeFindOneFailed, err)
	}
	return Availability{Username: username, IsAvailable: !taken}, nil
}

func (s *Service) CheckEmail(ctx context.Context, email string) (Availability, error) {
	if strings.TrimSpace(email) == "" {
		return Availability{}, apperror.Validation("Email is required", "email must not be empty")
	}
	if err := validation.Var("email", strings.TrimSpace(email), "email"); err != nil {
		return Availability{}, err
	}

	taken, err := s.repo.EmailExists(ctx, strings.TrimSpace(email))
	if err != nil {
		return Availability{}, s.translate(ctx, "check email", apperror.CodeFindOneFailed, err)
	}
	return Availability{Email: email, IsAvailable: !taken}, nil
}

func (s *Service) translate(ctx context.Context, op, code string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperror.NotFound(code, "User not found")
	case errors.Is(err, ErrEmailExists):
		return emailConflict(code)
	case errors.Is(err, ErrUsernameExists):
		return usernameConflict(code)
	}

	s.log.ErrorContext(ctx, op, slog.Any("error", err))
	return apperror.Internal(code, "Failed to "+op, err)
}

func emailConflict(code string) error {
	return apperror.Conflict(code, "Email already exists.", "The email provided is already in use.")
}

func usernameConflict(code string) error {
	return apperror.Conflict(code, "Username already exists.", "The username provided is already in use.")
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
