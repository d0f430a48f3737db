package entities

import "felix-hub/pkg/types"

type Category struct {
	ID        uint64
	NameRu    string
	NameHe    *string
	NameEn    *string
	Icon      string
	SortOrder int
	types.BaseEntity
}

type Part struct {
	ID         uint64
	CategoryID uint64
	NameRu     string
	NameHe     *string
	NameEn     *string
	IsCommon   bool
	SortOrder  int
	types.BaseEntity
}
