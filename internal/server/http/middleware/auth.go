package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/cakeshop-checkout/internal/pkg/auth"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/dto"
)

// AdminRequired rejects requests without a valid admin bearer key.
func AdminRequired(verifier pkgAuth.KeyVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := verifier.Verify(extractBearer(c))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, pkgAuth.ErrInvalidKey), errors.Is(err, pkgAuth.ErrDisabled):
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		default:
			logger.Error("admin key verification failed", slog.String("error", err.Error()))
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
