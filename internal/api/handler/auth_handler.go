package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/purpleforest/purpleforest/internal/repository"
	"github.com/purpleforest/purpleforest/internal/service"
	"github.com/purpleforest/purpleforest/pkg/logger"
	"github.com/purpleforest/purpleforest/pkg/response"
)

const minimumPasswordLength = 5

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Register creates an account and immediately hands back a session token.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}
	if len(req.Password) < minimumPasswordLength {
		response.BadRequest(c, fmt.Sprintf("Password must be at least %d characters long", minimumPasswordLength))
		return
	}

	if _, err := h.credentials.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			response.BadRequest(c, err.Error())
			return
		}
		logger.Error("register failed", zap.String("username", req.Username), zap.Error(err))
		response.InternalError(c, err)
		return
	}

	h.issueToken(c, req.Username)
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}

	if _, err := h.credentials.Authenticate(c.Request.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			response.Forbidden(c, "Unknown user")
		case errors.Is(err, service.ErrIncorrectPassword):
			response.Forbidden(c, "Incorrect password")
		default:
			logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
			response.InternalError(c, err)
		}
		return
	}

	h.issueToken(c, req.Username)
}

func (h *Handler) issueToken(c *gin.Context, username string) {
	tok, err := h.tokens.Issue(username)
	if err != nil {
		logger.Error("issue token failed", zap.String("username", username), zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.JSON(c, tokenResponse{Success: true, Token: tok})
}

// bindErrorMessage turns validator failures into the field-oriented
// messages the boundary promises; other bind errors pass through as-is.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("missing or invalid field: %s", verrs[0].Field())
	}
	return err.Error()
}
