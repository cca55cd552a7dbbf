package handler

import (
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/purpleforest/purpleforest/internal/api/middleware"
	"github.com/purpleforest/purpleforest/internal/repository"
	"github.com/purpleforest/purpleforest/pkg/response"
)

const profileRecentBlooms = 10

// SelfProfile returns the authenticated user's follow graph neighborhood.
func (h *Handler) SelfProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	follows, err := h.relations.ListFollowed(c.Request.Context(), user.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	followers, err := h.relations.ListFollowers(c.Request.Context(), user.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.JSON(c, gin.H{
		"username":  user.Username,
		"follows":   follows,
		"followers": followers,
	})
}

// Profile composes a public profile page: recent blooms newest-first,
// both follow directions, and the viewer's relationship to the subject
// when a token was supplied.
func (h *Handler) Profile(c *gin.Context) {
	username := c.Param("username")

	subject, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if subject == nil {
		response.NotFound(c, fmt.Sprintf("User %s not found", username))
		return
	}

	follows, err := h.relations.ListFollowed(c.Request.Context(), subject.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	followers, err := h.relations.ListFollowers(c.Request.Context(), subject.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	allBlooms, err := h.timelines.Profile(c.Request.Context(), username)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	recent := allBlooms
	if len(recent) > profileRecentBlooms {
		recent = recent[:profileRecentBlooms]
	}
	if recent == nil {
		recent = []repository.BloomView{}
	}

	viewer := middleware.CurrentUser(c)
	isFollowing := viewer != nil && slices.Contains(followers, viewer.Username)
	isSelf := viewer != nil && viewer.Username == username

	response.JSON(c, gin.H{
		"username":      username,
		"recent_blooms": recent,
		"follows":       follows,
		"followers":     followers,
		"is_following":  isFollowing,
		"is_self":       isSelf,
		"total_blooms":  len(allBlooms),
	})
}
