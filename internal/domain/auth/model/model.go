package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the view of a user that may leave the service.
type PublicUser struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID.String(), Email: u.Email, Name: u.Name}
}

type TokenPair struct {
	AccessToken    string
	RefreshToken   string
	// AccessTTL is the access token's remaining lifetime at issue time.
	AccessTTL      time.Duration
	UserID         uuid.UUID
	RefreshTokenID string
}

type AuthResult struct {
	User PublicUser
	TokenPair
}

// ActiveUser is the identity the authorization gate attaches to a request.
type ActiveUser struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}
