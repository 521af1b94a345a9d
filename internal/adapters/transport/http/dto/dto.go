package dto

import "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"

type SignUpDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type SignInDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type CreateMessageDTO struct {
	Content string `json:"content" validate:"required,min=1,max=240"`
	Tag     string `json:"tag" validate:"omitempty,oneof=general announcement question idea feedback"`
}

// UpdateMessageDTO carries a partial update; nil fields are left untouched.
type UpdateMessageDTO struct {
	Content *string `json:"content" validate:"omitempty,min=1,max=240"`
	Tag     *string `json:"tag" validate:"omitempty,oneof=general announcement question idea feedback"`
}

type ListMessagesQuery struct {
	Tag      string `form:"tag" validate:"omitempty,oneof=general announcement question idea feedback"`
	AuthorID string `form:"authorId" validate:"omitempty,uuid"`
	FromDate string `form:"fromDate"`
	ToDate   string `form:"toDate"`
	Cursor   string `form:"cursor" validate:"omitempty,uuid"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=50"`
}

type AuthResponse struct {
	User         model.PublicUser `json:"user"`
	RefreshToken string           `json:"refreshToken"`
}

type RefreshResponse struct {
	RefreshToken string `json:"refreshToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
