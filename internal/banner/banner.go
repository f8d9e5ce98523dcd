package banner

import "time"

// Banner is a time-boxed promotion of an item, stored in `banners`. Each item
// keeps its full banner history; at most one is meant to be active.
type Banner struct {
	ID        int          `json:"id"`
	ItemID    int          `json:"itemId"`
	IsActive  bool         `json:"isActive"`
	StartDate *time.Time   `json:"startDate"`
	EndDate   *time.Time   `json:"endDate"`
	Item      *ItemSummary `json:"item,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	DeletedAt *time.Time   `json:"deletedAt,omitempty"`
}

// ItemSummary is the promoted item as shown in banner listings.
type ItemSummary struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TradeValue  float64  `json:"tradeValue"`
	Condition   string   `json:"condition"`
	IsBanner    bool     `json:"isBanner"`
	ImageURLs   []string `json:"imageUrls"`
}

// Filter narrows a listing. Banners of deleted or unflagged items are never
// listed.
type Filter struct {
	Active *bool
}

// UpdateRequest edits a banner. Omitted dates are stored as null.
type UpdateRequest struct {
	IsActive  *bool `json:"isActive" validate:"required"`
	StartDate *Date `json:"startDate"`
	EndDate   *Date `json:"endDate"`
}
