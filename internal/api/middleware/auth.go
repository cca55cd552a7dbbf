package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/purpleforest/purpleforest/internal/model"
	"github.com/purpleforest/purpleforest/internal/repository"
	"github.com/purpleforest/purpleforest/pkg/response"
	"github.com/purpleforest/purpleforest/pkg/token"
)

const currentUserKey = "currentUser"

// RequireAuth rejects requests without a valid bearer token and loads the
// token's user onto the context.
func RequireAuth(tokens *token.Manager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolveUser(c, tokens, users)
		if user == nil {
			response.Unauthorized(c, "missing or invalid token")
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and proceeds
// anonymously otherwise.
func OptionalAuth(tokens *token.Manager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := resolveUser(c, tokens, users); user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil on anonymous routes.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func resolveUser(c *gin.Context, tokens *token.Manager, users repository.UserRepository) *model.User {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil
	}
	username, err := tokens.Verify(raw)
	if err != nil {
		return nil
	}
	user, err := users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		return nil
	}
	return user
}
