package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"accounts-be/internal/entities"
	"accounts-be/internal/models"
	"accounts-be/internal/service"
)

// CurrentUserKey is the gin context key holding the authenticated *entities.User.
const CurrentUserKey = "current_user"

// Identifier resolves a bearer token to a user. Implemented by service.AuthService.
type Identifier interface {
	Identify(ctx context.Context, token string) (*entities.User, error)
}

// AuthMiddleware requires "Authorization: Bearer <token>" and stores the
// resolved user under CurrentUserKey.
func AuthMiddleware(identifier Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			challenge(c, "Not authenticated")
			return
		}

		user, err := identifier.Identify(c.Request.Context(), token)
		if errors.Is(err, service.ErrUnauthorized) {
			challenge(c, "Could not validate credentials")
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Internal server error"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*entities.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func challenge(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Detail: detail})
}
