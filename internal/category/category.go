package category

import "time"

// Category maps to the `categories` table. A category with a parent is a
// subcategory.
type Category struct {
	ID            int        `json:"id"`
	NameAr        string     `json:"nameAr"`
	NameEn        string     `json:"nameEn"`
	DescriptionAr string     `json:"descriptionAr"`
	DescriptionEn string     `json:"descriptionEn"`
	ImageURL      *string    `json:"imageUrl,omitempty"`
	ParentID      *int       `json:"parentId"`
	Children      []Category `json:"children,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
}

// Summary is the id/name block embedded in item payloads.
type Summary struct {
	ID     int    `json:"id"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
}

// Scope selects which part of the hierarchy a listing covers.
type Scope int

const (
	ScopeTopLevel Scope = iota
	ScopeSub
	ScopeChildren
)

// Filter is shared by a listing's page and its count.
type Filter struct {
	Scope    Scope
	ParentID int
}

func (f Filter) matches(c Category) bool {
	if c.DeletedAt != nil {
		return false
	}
	switch f.Scope {
	case ScopeSub:
		return c.ParentID != nil
	case ScopeChildren:
		return c.ParentID != nil && *c.ParentID == f.ParentID
	default:
		return c.ParentID == nil
	}
}

type CreateRequest struct {
	NameAr        string  `json:"nameAr" validate:"required"`
	NameEn        string  `json:"nameEn" validate:"required"`
	DescriptionAr string  `json:"descriptionAr"`
	DescriptionEn string  `json:"descriptionEn"`
	ImageURL      *string `json:"imageUrl" validate:"omitempty,url"`
	ParentID      *int    `json:"parentId" validate:"omitempty,gt=0"`
}

// UpdateRequest is a partial update. Sending parentId 0 moves the category to
// the top level.
type UpdateRequest struct {
	NameAr        *string `json:"nameAr" validate:"omitempty,min=1"`
	NameEn        *string `json:"nameEn" validate:"omitempty,min=1"`
	DescriptionAr *string `json:"descriptionAr"`
	DescriptionEn *string `json:"descriptionEn"`
	ImageURL      *string `json:"imageUrl" validate:"omitempty,url"`
	ParentID      *int    `json:"parentId" validate:"omitempty,gte=0"`
}
