package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/purpleforest/purpleforest/internal/api/middleware"
	"github.com/purpleforest/purpleforest/internal/service"
	"github.com/purpleforest/purpleforest/pkg/response"
)

type sendBloomRequest struct {
	Content string `json:"content" binding:"required"`
	// OriginalSender marks a rebloom of that user's content.
	OriginalSender *string `json:"original_sender"`
}

func (h *Handler) SendBloom(c *gin.Context) {
	var req sendBloomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}
	sender := middleware.CurrentUser(c)

	if _, err := h.blooms.Create(c.Request.Context(), sender, req.Content, req.OriginalSender); err != nil {
		if errors.Is(err, service.ErrContentTooLong) {
			response.BadRequest(c, "Too long!")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *Handler) GetBloom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid bloom id")
		return
	}

	bloom, err := h.blooms.Get(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if bloom == nil {
		response.NotFound(c, "Bloom not found")
		return
	}
	response.JSON(c, bloom)
}

// UserBlooms pages through one user's blooms newest-first. The cursor is
// a previously-seen bloom id; "before" is exclusive.
func (h *Handler) UserBlooms(c *gin.Context) {
	username := c.Param("username")

	var before *int64
	if raw := c.Query("before"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid before cursor")
			return
		}
		before = &v
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			response.BadRequest(c, "Invalid limit")
			return
		}
		limit = v
	}

	views, err := h.blooms.ListByUser(c.Request.Context(), username, before, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.JSON(c, gin.H{"blooms": views})
}

func (h *Handler) Hashtag(c *gin.Context) {
	views, err := h.timelines.Hashtag(c.Request.Context(), c.Param("hashtag"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.JSON(c, gin.H{"blooms": views})
}

func (h *Handler) HomeTimeline(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	views, err := h.timelines.Home(c.Request.Context(), viewer)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.JSON(c, gin.H{"blooms": views})
}
