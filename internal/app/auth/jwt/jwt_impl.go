package jwt

import (
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JwtUtilImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
	now        func() time.Time
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewJWTUtil")
	}
	return &JwtUtilImpl{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy that reads the current time from now.
func (j *JwtUtilImpl) WithClock(now func() time.Time) *JwtUtilImpl {
	cp := *j
	cp.now = now
	return &cp
}

func (j *JwtUtilImpl) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := j.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{j.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (j *JwtUtilImpl) SignAccess(user model.User) (string, time.Time, error) {
	claims := jwt2.AccessClaims{
		RegisteredClaims: j.registered(user.ID.String(), j.accessTTL),
		Email:            user.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign access token")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) SignRefresh(userID uuid.UUID, refreshTokenID string) (string, time.Time, error) {
	claims := jwt2.RefreshClaims{
		RegisteredClaims: j.registered(userID.String(), j.refreshTTL),
		RefreshTokenID:   refreshTokenID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign refresh token")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) VerifyAccess(raw string) (jwt2.AccessClaims, error) {
	var claims jwt2.AccessClaims
	if err := j.parse(raw, &claims); err != nil {
		return jwt2.AccessClaims{}, err
	}
	// refresh tokens share the secret but never carry an email
	if claims.Subject == "" || claims.Email == "" {
		return jwt2.AccessClaims{}, &jwt2.VerifyError{Reason: jwt2.ReasonClaims}
	}
	return claims, nil
}

func (j *JwtUtilImpl) VerifyRefresh(raw string) (jwt2.RefreshClaims, error) {
	var claims jwt2.RefreshClaims
	if err := j.parse(raw, &claims); err != nil {
		return jwt2.RefreshClaims{}, err
	}
	if claims.Subject == "" || claims.RefreshTokenID == "" {
		return jwt2.RefreshClaims{}, &jwt2.VerifyError{Reason: jwt2.ReasonClaims}
	}
	return claims, nil
}

func (j *JwtUtilImpl) parse(raw string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return &jwt2.VerifyError{Reason: reasonFor(err)}
	}
	if !token.Valid {
		return &jwt2.VerifyError{Reason: jwt2.ReasonSignature}
	}
	return nil
}

func reasonFor(err error) jwt2.Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return jwt2.ReasonExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return jwt2.ReasonIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return jwt2.ReasonAudience
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return jwt2.ReasonSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return jwt2.ReasonMalformed
	default:
		return jwt2.ReasonClaims
	}
}
