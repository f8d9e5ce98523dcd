package city

import "time"

type CountrySummary struct {
	ID     int    `json:"id"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
}

// City maps to the `cities` table.
type City struct {
	ID        int             `json:"id"`
	NameAr    string          `json:"nameAr"`
	NameEn    string          `json:"nameEn"`
	CountryID int             `json:"countryId"`
	Country   *CountrySummary `json:"country,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *time.Time      `json:"deletedAt,omitempty"`
}

type CreateRequest struct {
	NameAr    string `json:"nameAr" validate:"required"`
	NameEn    string `json:"nameEn" validate:"required"`
	CountryID int    `json:"countryId" validate:"required,gt=0"`
}

type UpdateRequest struct {
	NameAr    *string `json:"nameAr" validate:"omitempty,min=1"`
	NameEn    *string `json:"nameEn" validate:"omitempty,min=1"`
	CountryID *int    `json:"countryId" validate:"omitempty,gt=0"`
}
