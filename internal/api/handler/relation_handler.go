package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/purpleforest/purpleforest/internal/api/middleware"
	"github.com/purpleforest/purpleforest/pkg/response"
)

type followRequest struct {
	FollowUsername string `json:"follow_username" binding:"required"`
}

func (h *Handler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}
	viewer := middleware.CurrentUser(c)

	followee, err := h.users.GetByUsername(c.Request.Context(), req.FollowUsername)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if followee == nil {
		response.NotFound(c, fmt.Sprintf("Cannot follow %s - user does not exist", req.FollowUsername))
		return
	}

	if err := h.relations.Follow(c.Request.Context(), viewer.ID, followee.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *Handler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	viewer := middleware.CurrentUser(c)

	followee, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if followee == nil {
		response.NotFound(c, fmt.Sprintf("Cannot unfollow %s - user does not exist", username))
		return
	}

	if err := h.relations.Unfollow(c.Request.Context(), viewer.ID, followee.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *Handler) SuggestedFollows(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil || limit < 1 {
		response.BadRequest(c, "Invalid limit")
		return
	}
	viewer := middleware.CurrentUser(c)

	names, err := h.users.SuggestedFollows(c.Request.Context(), viewer.ID, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	suggestions := make([]gin.H, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, gin.H{"username": name})
	}
	response.JSON(c, suggestions)
}
