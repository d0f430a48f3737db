package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type MechanicDTO struct {
	ID         uint64    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      *string   `json:"phone"`
	Specialty  *string   `json:"specialty"`
	TelegramID *string   `json:"telegram_id"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

type ShortMechanicDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type CreateMechanicDTO struct {
	Email      string  `json:"email" validate:"required,email,max=120"`
	Password   string  `json:"password" validate:"required,min=6,max=72"`
	Name       string  `json:"name" validate:"required,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,phone"`
	Specialty  *string `json:"specialty" validate:"omitempty,max=100"`
	TelegramID *string `json:"telegram_id" validate:"omitempty,max=50"`
	Active     *bool   `json:"active"`
}

type UpdateMechanicDTO struct {
	Email      null.String `json:"email" validate:"omitempty,email,max=120"`
	Name       null.String `json:"name" validate:"omitempty,min=1,max=100"`
	Phone      null.String `json:"phone" validate:"omitempty,phone"`
	Specialty  null.String `json:"specialty" validate:"omitempty,max=100"`
	TelegramID null.String `json:"telegram_id" validate:"omitempty,max=50"`
	Active     null.Bool   `json:"active"`
	// не поле сущности: хешируется отдельно
	Password null.String `json:"password" validate:"omitempty,min=6,max=72"`
}

type UpdateProfileDTO struct {
	Phone     null.String `json:"phone" validate:"omitempty,phone"`
	Specialty null.String `json:"specialty" validate:"omitempty,max=100"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72,nefield=CurrentPassword"`
}
