// Package item manages the exchange listings, their image sets and their
// banner promotions.
package item

import (
	"time"

	"github.com/wichananm65/tabdil-hub-backend/internal/banner"
)

type Condition string

const (
	ConditionNew        Condition = "NEW"
	ConditionLikeNew    Condition = "LIKE_NEW"
	ConditionGood       Condition = "GOOD"
	ConditionFair       Condition = "FAIR"
	ConditionDamaged    Condition = "DAMAGED"
	ConditionNotWorking Condition = "NOT_WORKING"
)

type Item struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TradeValue    float64         `json:"tradeValue"`
	Condition     Condition       `json:"condition"`
	CategoryID    int             `json:"categoryId"`
	SubcategoryID *int            `json:"subcategoryId"`
	CityID        int             `json:"cityId"`
	CountryID     int             `json:"countryId"`
	UserID        int             `json:"userId"`
	IsBanner      bool            `json:"isBanner"`
	Images        []Image         `json:"images"`
	Category      *Summary        `json:"category,omitempty"`
	Subcategory   *Summary        `json:"subcategory,omitempty"`
	City          *Summary        `json:"city,omitempty"`
	Country       *Summary        `json:"country,omitempty"`
	User          *Owner          `json:"user,omitempty"`
	Banners       []banner.Banner `json:"banners,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
}

// Image is one row of an item's image set. Rows are only ever inserted or
// removed, never edited.
type Image struct {
	ID       int    `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// Summary is the bilingual name of a category, city or country.
type Summary struct {
	ID     int    `json:"id"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
}

type Owner struct {
	ID             int     `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profilePicture"`
}

// ImageURLs returns the item's image set in insertion order.
func (i Item) ImageURLs() []string {
	urls := make([]string, len(i.Images))
	for n, img := range i.Images {
		urls[n] = img.ImageURL
	}
	return urls
}

func (i Item) summary() banner.ItemSummary {
	return banner.ItemSummary{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		TradeValue:  i.TradeValue,
		Condition:   string(i.Condition),
		IsBanner:    i.IsBanner,
		ImageURLs:   i.ImageURLs(),
	}
}

// ListFilter narrows item listings. Zero values match everything; Query is a
// case-insensitive match on title or description.
type ListFilter struct {
	Query         string
	IsBanner      *bool
	CategoryID    int
	SubcategoryID int
	UserID        int
}

type CreateRequest struct {
	Title         string       `json:"title" validate:"required,max=200"`
	Description   string       `json:"description"`
	TradeValue    float64      `json:"tradeValue" validate:"gte=0"`
	Condition     Condition    `json:"condition" validate:"required,oneof=NEW LIKE_NEW GOOD FAIR DAMAGED NOT_WORKING"`
	CategoryID    int          `json:"categoryId" validate:"required,gt=0"`
	SubcategoryID *int         `json:"subcategoryId" validate:"omitempty,gt=0"`
	CityID        int          `json:"cityId" validate:"required,gt=0"`
	CountryID     int          `json:"countryId" validate:"required,gt=0"`
	UserID        int          `json:"userId" validate:"omitempty,gt=0"`
	IsBanner      bool         `json:"isBanner"`
	ImageURLs     []string     `json:"imageUrls" validate:"omitempty,dive,required,url"`
	StartDate     *banner.Date `json:"startDate"`
	EndDate       *banner.Date `json:"endDate"`
}

// UpdateRequest edits an item. A nil ImageURLs leaves the images alone; an
// empty list removes them all.
type UpdateRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string    `json:"description"`
	TradeValue    *float64   `json:"tradeValue" validate:"omitempty,gte=0"`
	Condition     *Condition `json:"condition" validate:"omitempty,oneof=NEW LIKE_NEW GOOD FAIR DAMAGED NOT_WORKING"`
	CategoryID    *int       `json:"categoryId" validate:"omitempty,gt=0"`
	SubcategoryID *int       `json:"subcategoryId" validate:"omitempty,gt=0"`
	CityID        *int       `json:"cityId" validate:"omitempty,gt=0"`
	CountryID     *int       `json:"countryId" validate:"omitempty,gt=0"`
	IsBanner      *bool      `json:"isBanner"`
	ImageURLs     []string   `json:"imageUrls" validate:"omitempty,dive,required,url"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}
