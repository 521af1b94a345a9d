package jwt

import (
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
	RefreshTokenID string `json:"refreshTokenId"`
}

// Reason tags why a token was rejected.
type Reason string

const (
	ReasonMalformed Reason = "malformed"
	ReasonSignature Reason = "signature"
	ReasonExpired   Reason = "expired"
	ReasonIssuer    Reason = "issuer"
	ReasonAudience  Reason = "audience"
	ReasonClaims    Reason = "claims"
)

// VerifyError is returned by every failed verification. It always unwraps to
// ErrInvalidToken.
type VerifyError struct {
	Reason Reason
}

func (e *VerifyError) Error() string { return "invalid token: " + string(e.Reason) }

func (e *VerifyError) Unwrap() error { return customErrors.ErrInvalidToken }

// ReasonOf extracts the rejection reason, or "" when err is not a VerifyError.
func ReasonOf(err error) Reason {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}

type JWTUtil interface {
	SignAccess(user model.User) (token string, exp time.Time, err error)
	SignRefresh(userID uuid.UUID, refreshTokenID string) (token string, exp time.Time, err error)
	VerifyAccess(token string) (AccessClaims, error)
	VerifyRefresh(token string) (RefreshClaims, error)
}
