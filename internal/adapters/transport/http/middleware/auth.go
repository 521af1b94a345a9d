package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie = "accessToken"
	ActiveUserKey     = "activeUser"
)

type activeUserCtxKey struct{}

// WithActiveUser returns a copy of ctx carrying u.
func WithActiveUser(ctx context.Context, u model.ActiveUser) context.Context {
	return context.WithValue(ctx, activeUserCtxKey{}, u)
}

// ActiveUserFrom reads the identity attached by Authenticate.
func ActiveUserFrom(ctx context.Context) (model.ActiveUser, bool) {
	u, ok := ctx.Value(activeUserCtxKey{}).(model.ActiveUser)
	return u, ok
}

// Authenticate rejects requests without a valid access token. The token is
// read from the accessToken cookie first, then from a Bearer Authorization
// header.
func Authenticate(verifier jwt.JWTUtil, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			unauthenticated(c)
			return
		}

		claims, err := verifier.VerifyAccess(raw)
		if err != nil {
			log.Debug("access token rejected",
				zap.String("reason", string(jwt.ReasonOf(err))),
				zap.String("path", c.Request.URL.Path),
			)
			unauthenticated(c)
			return
		}

		user := model.ActiveUser{Sub: claims.Subject, Email: claims.Email}
		c.Set(ActiveUserKey, user)
		c.Request = c.Request.WithContext(WithActiveUser(c.Request.Context(), user))
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if tok, err := c.Cookie(AccessTokenCookie); err == nil && tok != "" {
		return tok
	}
	return ExtractBearer(c.GetHeader("Authorization"))
}

func ExtractBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthenticated"})
}
