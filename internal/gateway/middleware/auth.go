package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockbook/internal/domain"
)

const userContextKey = "currentUser"

// UserResolver turns a bearer token into the user it was issued to.
type UserResolver interface {
	CurrentUser(token string) (*domain.User, error)
}

func JWTAuth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" || token == header {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := resolver.CurrentUser(token)
		if err != nil || user == nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by JWTAuth, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// RequireSection allows the request when the user can fully access section.
func RequireSection(section string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !domain.CanAccess(CurrentUser(c), section) {
			abort(c, http.StatusForbidden, "no access to "+section)
			return
		}
		c.Next()
	}
}

// RequireView also accepts the read-only "<section>:view" permission.
func RequireView(section string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !domain.CanView(CurrentUser(c), section) {
			abort(c, http.StatusForbidden, "no access to "+section)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{
		"success": false,
		"message": message,
	})
}
