package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CategoryDTO struct {
	ID         uint64    `json:"id"`
	NameRu     string    `json:"name_ru"`
	NameHe     *string   `json:"name_he"`
	NameEn     *string   `json:"name_en"`
	Icon       string    `json:"icon"`
	SortOrder  int       `json:"sort_order"`
	PartsCount *int      `json:"parts_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateCategoryDTO struct {
	NameRu    string  `json:"name_ru" validate:"required,max=120"`
	NameHe    *string `json:"name_he" validate:"omitempty,max=120"`
	NameEn    *string `json:"name_en" validate:"omitempty,max=120"`
	Icon      string  `json:"icon" validate:"omitempty,max=10"`
	SortOrder int     `json:"sort_order"`
}

type UpdateCategoryDTO struct {
	NameRu    null.String `json:"name_ru" validate:"omitempty,min=1,max=120"`
	NameHe    null.String `json:"name_he" validate:"omitempty,max=120"`
	NameEn    null.String `json:"name_en" validate:"omitempty,max=120"`
	Icon      null.String `json:"icon" validate:"omitempty,max=10"`
	SortOrder null.Int    `json:"sort_order"`
}

type PartDTO struct {
	ID         uint64    `json:"id"`
	CategoryID uint64    `json:"category_id"`
	NameRu     string    `json:"name_ru"`
	NameHe     *string   `json:"name_he"`
	NameEn     *string   `json:"name_en"`
	IsCommon   bool      `json:"is_common"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreatePartDTO struct {
	CategoryID uint64  `json:"category_id" validate:"required,gt=0"`
	NameRu     string  `json:"name_ru" validate:"required,max=200"`
	NameHe     *string `json:"name_he" validate:"omitempty,max=200"`
	NameEn     *string `json:"name_en" validate:"omitempty,max=200"`
	IsCommon   *bool   `json:"is_common"`
	SortOrder  int     `json:"sort_order"`
}

type UpdatePartDTO struct {
	CategoryID null.Uint64 `json:"category_id" validate:"omitempty,gt=0"`
	NameRu     null.String `json:"name_ru" validate:"omitempty,min=1,max=200"`
	NameHe     null.String `json:"name_he" validate:"omitempty,max=200"`
	NameEn     null.String `json:"name_en" validate:"omitempty,max=200"`
	IsCommon   null.Bool   `json:"is_common"`
	SortOrder  null.Int    `json:"sort_order"`
}
