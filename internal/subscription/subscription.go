package subscription

import "time"

type Category string

const (
	CategoryRegular   Category = "REGULAR"
	CategorySponsored Category = "SPONSORED"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

type Subscription struct {
	ID            int        `json:"id"`
	TitleAr       string     `json:"titleAr"`
	TitleEn       string     `json:"titleEn"`
	DescriptionAr string     `json:"descriptionAr"`
	DescriptionEn string     `json:"descriptionEn"`
	ImageURL      *string    `json:"imageUrl"`
	Price         float64    `json:"price"`
	OfferPrice    float64    `json:"offerPrice"`
	Category      Category   `json:"category"`
	Status        Status     `json:"status"`
	Options       []Option   `json:"options"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
}

type Option struct {
	ID             int        `json:"id"`
	SubscriptionID int        `json:"subscriptionId"`
	NameAr         string     `json:"nameAr"`
	NameEn         string     `json:"nameEn"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// Filter narrows a listing; empty fields match everything.
type Filter struct {
	Category Category
	Status   Status
}

// OptionInput is an option as submitted. Without an id it is new; with one
// it edits the existing option.
type OptionInput struct {
	ID     *int   `json:"id" validate:"omitempty,gt=0"`
	NameAr string `json:"nameAr" validate:"required"`
	NameEn string `json:"nameEn" validate:"required"`
}

type CreateRequest struct {
	TitleAr       string        `json:"titleAr" validate:"required"`
	TitleEn       string        `json:"titleEn" validate:"required"`
	DescriptionAr string        `json:"descriptionAr"`
	DescriptionEn string        `json:"descriptionEn"`
	ImageURL      *string       `json:"imageUrl" validate:"omitempty,url"`
	Price         float64       `json:"price" validate:"gte=0"`
	OfferPrice    float64       `json:"offerPrice" validate:"gte=0"`
	Category      Category      `json:"category" validate:"required,oneof=REGULAR SPONSORED"`
	Status        Status        `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
	Options       []OptionInput `json:"options" validate:"omitempty,dive"`
}

// UpdateRequest edits a subscription. A nil Options leaves the options alone;
// any option missing from a non-nil list is removed.
type UpdateRequest struct {
	TitleAr       *string       `json:"titleAr" validate:"omitempty,min=1"`
	TitleEn       *string       `json:"titleEn" validate:"omitempty,min=1"`
	DescriptionAr *string       `json:"descriptionAr"`
	DescriptionEn *string       `json:"descriptionEn"`
	ImageURL      *string       `json:"imageUrl" validate:"omitempty,url"`
	Price         *float64      `json:"price" validate:"omitempty,gte=0"`
	OfferPrice    *float64      `json:"offerPrice" validate:"omitempty,gte=0"`
	Category      *Category     `json:"category" validate:"omitempty,oneof=REGULAR SPONSORED"`
	Status        *Status       `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Options       []OptionInput `json:"options" validate:"omitempty,dive"`
}
