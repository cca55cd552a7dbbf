package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/purpleforest/purpleforest/internal/api/handler"
	"github.com/purpleforest/purpleforest/internal/api/middleware"
	"github.com/purpleforest/purpleforest/internal/repository"
	"github.com/purpleforest/purpleforest/pkg/token"
)

// NewRouter wires the route table. The surface mirrors the public API:
// credentials, profiles, the follow graph, blooms, and the three
// timelines.
func NewRouter(h *handler.Handler, tokens *token.Manager, users repository.UserRepository, serviceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware(serviceName))

	authed := middleware.RequireAuth(tokens, users)
	optional := middleware.OptionalAuth(tokens, users)

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	r.GET("/home", authed, h.HomeTimeline)

	r.GET("/profile", authed, h.SelfProfile)
	r.GET("/profile/:username", optional, h.Profile)
	r.POST("/follow", authed, h.Follow)
	r.POST("/unfollow/:username", authed, h.Unfollow)
	r.GET("/suggested-follows/:limit", authed, h.SuggestedFollows)

	r.POST("/bloom", authed, h.SendBloom)
	r.GET("/bloom/:id", h.GetBloom)
	r.GET("/blooms/:username", h.UserBlooms)
	r.GET("/hashtag/:hashtag", h.Hashtag)

	return r
}
