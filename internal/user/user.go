package user

import "time"

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleModerator  Role = "MODERATOR"
	RoleUser       Role = "USER"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Place is the id/name summary of the city or country a user lives in.
type Place struct {
	ID     int    `json:"id"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
}

// User maps to the `users` table. The password hash is never serialised.
type User struct {
	ID                      int        `json:"id"`
	FirstName               string     `json:"firstName"`
	LastName                string     `json:"lastName"`
	Username                string     `json:"username"`
	Email                   string     `json:"email"`
	Password                string     `json:"-"`
	Gender                  Gender     `json:"gender"`
	Role                    Role       `json:"role"`
	Status                  Status     `json:"status"`
	PhoneNumber             *string    `json:"phoneNumber,omitempty"`
	ProfilePicture          *string    `json:"profilePicture,omitempty"`
	PersonalIdentityPicture *string    `json:"personalIdentityPicture,omitempty"`
	Address                 *string    `json:"address,omitempty"`
	BirthDate               *time.Time `json:"birthDate,omitempty"`
	CityID                  *int       `json:"cityId,omitempty"`
	CountryID               *int       `json:"countryId,omitempty"`
	City                    *Place     `json:"city,omitempty"`
	Country                 *Place     `json:"country,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
	DeletedAt               *time.Time `json:"deletedAt,omitempty"`
}

// Profile is the public view of a user.
type Profile struct {
	ID             int       `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Username       string    `json:"username"`
	ProfilePicture *string   `json:"profilePicture"`
	City           *Place    `json:"city,omitempty"`
	Country        *Place    `json:"country,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (u User) Public() Profile {
	return Profile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		City:           u.City,
		Country:        u.Country,
		CreatedAt:      u.CreatedAt,
	}
}

const birthDateLayout = "2006-01-02"

type CreateRequest struct {
	FirstName               string `json:"firstName" validate:"required"`
	LastName                string `json:"lastName" validate:"required"`
	Username                string `json:"username" validate:"required,min=3,max=50"`
	Email                   string `json:"email" validate:"required,email"`
	Password                string `json:"password" validate:"required,min=6"`
	Gender                  Gender `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Role                    Role   `json:"role" validate:"omitempty,oneof=SUPER_ADMIN ADMIN MODERATOR USER"`
	Status                  Status `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	PhoneNumber             string `json:"phoneNumber" validate:"omitempty,e164"`
	ProfilePicture          string `json:"profilePicture" validate:"omitempty,url"`
	PersonalIdentityPicture string `json:"personalIdentityPicture" validate:"omitempty,url"`
	Address                 string `json:"address"`
	BirthDate               string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	CityID                  *int   `json:"cityId" validate:"omitempty,gt=0"`
	CountryID               *int   `json:"countryId" validate:"omitempty,gt=0"`
}

// RegisterRequest is the self-service sign-up payload. Role and status are
// not accepted from the client.
type RegisterRequest struct {
	FirstName               string `json:"firstName" validate:"required"`
	LastName                string `json:"lastName" validate:"required"`
	Username                string `json:"username" validate:"required,min=3,max=50"`
	Email                   string `json:"email" validate:"required,email"`
	Password                string `json:"password" validate:"required,min=6"`
	Gender                  Gender `json:"gender" validate:"required,oneof=MALE FEMALE"`
	PhoneNumber             string `json:"phoneNumber" validate:"required,e164"`
	ProfilePicture          string `json:"profilePicture" validate:"omitempty,url"`
	PersonalIdentityPicture string `json:"personalIdentityPicture" validate:"omitempty,url"`
	Address                 string `json:"address" validate:"required"`
	BirthDate               string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	CityID                  *int   `json:"cityId" validate:"required,gt=0"`
	CountryID               *int   `json:"countryId" validate:"required,gt=0"`
}

// UpdateRequest carries a partial update; nil fields are left untouched.
type UpdateRequest struct {
	FirstName               *string `json:"firstName" validate:"omitempty,min=1"`
	LastName                *string `json:"lastName" validate:"omitempty,min=1"`
	Username                *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email                   *string `json:"email" validate:"omitempty,email"`
	Password                *string `json:"password" validate:"omitempty,min=6"`
	Gender                  *Gender `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
	Role                    *Role   `json:"role" validate:"omitempty,oneof=SUPER_ADMIN ADMIN MODERATOR USER"`
	Status                  *Status `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	PhoneNumber             *string `json:"phoneNumber" validate:"omitempty,e164"`
	ProfilePicture          *string `json:"profilePicture" validate:"omitempty,url"`
	PersonalIdentityPicture *string `json:"personalIdentityPicture" validate:"omitempty,url"`
	Address                 *string `json:"address"`
	BirthDate               *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	CityID                  *int    `json:"cityId" validate:"omitempty,gt=0"`
	CountryID               *int    `json:"countryId" validate:"omitempty,gt=0"`
}

type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}
