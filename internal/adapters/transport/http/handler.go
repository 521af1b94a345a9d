package http

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/middleware"
	authsvc "github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/service"
	msgsvc "github.com/Miraines/MoonyAndStarry/board-service/internal/app/message/service"
	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	auth     authsvc.Service
	messages msgsvc.Service
	cookies  cookieSettings
	log      *zap.Logger
}

func NewHandler(auth authsvc.Service, messages msgsvc.Service, cookieDomain string, secure bool, log *zap.Logger) *Handler {
	return &Handler{
		auth:     auth,
		messages: messages,
		cookies:  cookieSettings{domain: cookieDomain, secure: secure},
		log:      log,
	}
}

// Register mounts every API route on r. limit guards the credential
// endpoints and may be nil.
func (h *Handler) Register(r *Router, limit gin.HandlerFunc) {
	r.POST("/auth/sign-up", h.signUp, Public(), With(limit))
	r.POST("/auth/sign-in", h.signIn, Public(), With(limit))
	r.POST("/auth/refresh-token", h.refreshToken, Public())
	r.POST("/auth/logout", h.logout)
	r.GET("/auth/me", h.me)

	r.GET("/users", h.listUsers)

	r.GET("/messages", h.listMessages)
	r.GET("/messages/:id", h.getMessage)
	r.POST("/messages", h.createMessage)
	r.PATCH("/messages/:id", h.updateMessage)
	r.DELETE("/messages/:id", h.deleteMessage)
}

func (h *Handler) signUp(c *gin.Context) {
	var body dto.SignUpDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.auth.SignUp(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	h.cookies.setAccessToken(c, res.AccessToken, res.AccessTTL)
	c.JSON(http.StatusCreated, dto.AuthResponse{User: res.User, RefreshToken: res.RefreshToken})
}

func (h *Handler) signIn(c *gin.Context) {
	var body dto.SignInDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.auth.SignIn(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	h.cookies.setAccessToken(c, res.AccessToken, res.AccessTTL)
	c.JSON(http.StatusOK, dto.AuthResponse{User: res.User, RefreshToken: res.RefreshToken})
}

func (h *Handler) refreshToken(c *gin.Context) {
	var body dto.RefreshTokenDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	pair, err := h.auth.RefreshToken(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	h.cookies.setAccessToken(c, pair.AccessToken, pair.AccessTTL)
	c.JSON(http.StatusOK, dto.RefreshResponse{RefreshToken: pair.RefreshToken})
}

func (h *Handler) logout(c *gin.Context) {
	user, ok := middleware.ActiveUserFrom(c.Request.Context())
	if !ok {
		handleError(c, h.log, customErrors.ErrUnauthenticated)
		return
	}

	var body dto.LogoutDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), body.RefreshToken, user.Sub); err != nil {
		handleError(c, h.log, err)
		return
	}
	h.cookies.clearAccessToken(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *Handler) me(c *gin.Context) {
	user, ok := middleware.ActiveUserFrom(c.Request.Context())
	if !ok {
		handleError(c, h.log, customErrors.ErrUnauthenticated)
		return
	}

	me, err := h.auth.GetMe(c.Request.Context(), user.Sub)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) listMessages(c *gin.Context) {
	var q dto.ListMessagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	page, err := h.messages.List(c.Request.Context(), q)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getMessage(c *gin.Context) {
	m, err := h.messages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) createMessage(c *gin.Context) {
	user, _ := middleware.ActiveUserFrom(c.Request.Context())

	var body dto.CreateMessageDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	m, err := h.messages.Create(c.Request.Context(), user.Sub, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) updateMessage(c *gin.Context) {
	user, _ := middleware.ActiveUserFrom(c.Request.Context())

	var body dto.UpdateMessageDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	m, err := h.messages.Update(c.Request.Context(), c.Param("id"), user.Sub, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) deleteMessage(c *gin.Context) {
	user, _ := middleware.ActiveUserFrom(c.Request.Context())

	if err := h.messages.Delete(c.Request.Context(), c.Param("id"), user.Sub); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Message deleted successfully"})
}
