package http

import (
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type cookieSettings struct {
	domain string
	secure bool
}

func (s cookieSettings) setAccessToken(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, int(ttl.Round(time.Second).Seconds()), "/", s.domain, s.secure, true)
}

func (s cookieSettings) clearAccessToken(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", s.domain, s.secure, true)
}
