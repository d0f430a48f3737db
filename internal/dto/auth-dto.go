package dto

type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponseDTO struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	Mechanic     MechanicDTO `json:"mechanic"`
}
