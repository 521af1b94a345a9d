package http

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusOf(err error) int {
	switch {
	case customErrors.IsInvalidArgument(err):
		return http.StatusBadRequest
	case customErrors.IsUnauthorized(err),
		customErrors.IsUnauthenticated(err),
		customErrors.IsInvalidToken(err):
		return http.StatusUnauthorized
	case customErrors.IsForbidden(err):
		return http.StatusForbidden
	case customErrors.IsNotFound(err):
		return http.StatusNotFound
	case customErrors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err as {"error": msg}. Internal failures are logged and
// replaced by a generic message.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, dto.ErrorResponse{Error: "internal server error"})
		return
	}

	msg := customErrors.PublicMessage(err)
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.JSON(status, dto.ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}
