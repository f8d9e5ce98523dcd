package country

import "time"

type CitySummary struct {
	ID     int    `json:"id"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
}

// Country maps to the `countries` table. Cities lists only active cities.
type Country struct {
	ID        int           `json:"id"`
	NameAr    string        `json:"nameAr"`
	NameEn    string        `json:"nameEn"`
	Cities    []CitySummary `json:"cities"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	DeletedAt *time.Time    `json:"deletedAt,omitempty"`
}

type CreateRequest struct {
	NameAr string `json:"nameAr" validate:"required"`
	NameEn string `json:"nameEn" validate:"required"`
}

type UpdateRequest struct {
	NameAr *string `json:"nameAr" validate:"omitempty,min=1"`
	NameEn *string `json:"nameEn" validate:"omitempty,min=1"`
}
