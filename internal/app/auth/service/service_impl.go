package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/password"
	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	msgInvalidCredentials  = "invalid credentials"
	msgInvalidRefreshToken = "invalid refresh token"
	msgUserExists          = "user with this email already exists"
	msgUserNotFound        = "user not found"
)

type authService struct {
	userRepo repo.UserRepo
	registry repo.RefreshTokenRegistry
	jwtUtil  jwt.JWTUtil
	hasher   password.Hasher
	v        *validator.Validate
	log      *zap.Logger
}

type Service interface {
	SignUp(context.Context, dto.SignUpDTO) (model.AuthResult, error)
	SignIn(context.Context, dto.SignInDTO) (model.AuthResult, error)
	RefreshToken(context.Context, dto.RefreshTokenDTO) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string, userID string) error
	GetMe(ctx context.Context, userID string) (model.PublicUser, error)
	ListUsers(ctx context.Context) ([]model.PublicUser, error)
}

func New(
	ur repo.UserRepo,
	reg repo.RefreshTokenRegistry,
	jm jwt.JWTUtil,
	h password.Hasher,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo: ur, registry: reg, jwtUtil: jm, hasher: h, v: v, log: log,
	}
}

func (a *authService) SignUp(ctx context.Context, in dto.SignUpDTO) (model.AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := a.v.Struct(in); err != nil {
		return model.AuthResult{}, customErrors.NewInvalidArgument(err.Error())
	}
	email := in.Email

	_, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return model.AuthResult{}, customErrors.Conflict(msgUserExists)
	case !customErrors.IsNotFound(err):
		return model.AuthResult{}, customErrors.WrapInternal(err, "SignUp")
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.AuthResult{}, customErrors.WrapInternal(err, "SignUp")
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent sign-up for the same email
		if customErrors.IsConflict(err) {
			return model.AuthResult{}, customErrors.Conflict(msgUserExists)
		}
		return model.AuthResult{}, customErrors.WrapInternal(err, "SignUp")
	}

	pair, err := a.issue(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}
	a.log.Info("user signed up", zap.String("user_id", user.ID.String()), zap.String("email_sha256", emailDigest(email)))

	return model.AuthResult{User: user.Public(), TokenPair: pair}, nil
}

func (a *authService) SignIn(ctx context.Context, in dto.SignInDTO) (model.AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := a.v.Struct(in); err != nil {
		return model.AuthResult{}, customErrors.NewInvalidArgument(err.Error())
	}
	email := in.Email

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case customErrors.IsNotFound(err):
		a.log.Debug("sign-in for unknown email", zap.String("email_sha256", emailDigest(email)))
		return model.AuthResult{}, customErrors.Unauthorized(msgInvalidCredentials)
	case err != nil:
		return model.AuthResult{}, customErrors.WrapInternal(err, "SignIn")
	}

	ok, err := a.hasher.Compare(in.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResult{}, customErrors.WrapInternal(err, "SignIn")
	}
	if !ok {
		a.log.Debug("sign-in with wrong password", zap.String("user_id", user.ID.String()))
		return model.AuthResult{}, customErrors.Unauthorized(msgInvalidCredentials)
	}

	pair, err := a.issue(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{User: user.Public(), TokenPair: pair}, nil
}

// RefreshToken rotates a refresh token: the presented one is consumed and a
// fresh pair is issued. A token can be redeemed at most once.
func (a *authService) RefreshToken(ctx context.Context, in dto.RefreshTokenDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.VerifyRefresh(in.RefreshToken)
	if err != nil {
		a.log.Debug("refresh token rejected", zap.String("reason", string(jwt.ReasonOf(err))))
		return model.TokenPair{}, customErrors.Unauthorized(msgInvalidRefreshToken)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.Unauthorized(msgInvalidRefreshToken)
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case customErrors.IsNotFound(err):
		return model.TokenPair{}, customErrors.Unauthorized(msgInvalidRefreshToken)
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "RefreshToken")
	}

	if err := a.registry.Consume(ctx, user.ID.String(), claims.RefreshTokenID); err != nil {
		if customErrors.IsInvalidToken(err) {
			a.log.Debug("refresh token not redeemable", zap.String("user_id", user.ID.String()))
			return model.TokenPair{}, customErrors.Unauthorized(msgInvalidRefreshToken)
		}
		return model.TokenPair{}, customErrors.WrapInternal(err, "RefreshToken")
	}

	return a.issue(ctx, user)
}

func (a *authService) Logout(ctx context.Context, refreshToken string, userID string) error {
	if refreshToken == "" {
		return customErrors.NewInvalidArgument("refreshToken is required")
	}

	claims, err := a.jwtUtil.VerifyRefresh(refreshToken)
	if err != nil {
		a.log.Debug("logout token rejected", zap.String("reason", string(jwt.ReasonOf(err))))
		return customErrors.Unauthorized(msgInvalidRefreshToken)
	}

	if err := a.registry.Validate(ctx, userID, claims.RefreshTokenID); err != nil {
		if customErrors.IsInvalidToken(err) {
			return customErrors.Unauthorized(msgInvalidRefreshToken)
		}
		return customErrors.WrapInternal(err, "Logout")
	}
	if err := a.registry.Invalidate(ctx, userID, claims.RefreshTokenID); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func (a *authService) GetMe(ctx context.Context, userID string) (model.PublicUser, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return model.PublicUser{}, customErrors.Unauthorized(msgUserNotFound)
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case customErrors.IsNotFound(err):
		return model.PublicUser{}, customErrors.Unauthorized(msgUserNotFound)
	case err != nil:
		return model.PublicUser{}, customErrors.WrapInternal(err, "GetMe")
	}
	return user.Public(), nil
}

// ListUsers returns every user's public view, for author pickers.
func (a *authService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := a.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListUsers")
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (a *authService) issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	tokenID := uuid.NewString()

	var (
		pair         = model.TokenPair{UserID: user.ID, RefreshTokenID: tokenID}
		atExp, rtExp time.Time
		g            errgroup.Group
	)
	g.Go(func() error {
		var err error
		pair.AccessToken, atExp, err = a.jwtUtil.SignAccess(user)
		return err
	})
	g.Go(func() error {
		var err error
		pair.RefreshToken, rtExp, err = a.jwtUtil.SignRefresh(user.ID, tokenID)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue")
	}

	if err := a.registry.Insert(ctx, user.ID.String(), tokenID, rtExp); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue")
	}

	pair.AccessTTL = time.Until(atExp)
	return pair, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailDigest(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}
