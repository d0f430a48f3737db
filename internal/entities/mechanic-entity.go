package entities

import "felix-hub/pkg/types"

type Mechanic struct {
	ID           uint64
	Email        string
	PasswordHash string
	Name         string
	Phone        *string
	Specialty    *string
	TelegramID   *string
	Active       bool
	types.BaseEntity
}
