package handler

import (
	"github.com/purpleforest/purpleforest/internal/repository"
	"github.com/purpleforest/purpleforest/internal/service"
	"github.com/purpleforest/purpleforest/pkg/token"
)

// Handler carries the service handles every endpoint needs.
type Handler struct {
	credentials service.CredentialService
	relations   service.RelationshipService
	blooms      service.BloomService
	timelines   service.TimelineService
	users       repository.UserRepository
	tokens      *token.Manager
}

func New(
	credentials service.CredentialService,
	relations service.RelationshipService,
	blooms service.BloomService,
	timelines service.TimelineService,
	users repository.UserRepository,
	tokens *token.Manager,
) *Handler {
	return &Handler{
		credentials: credentials,
		relations:   relations,
		blooms:      blooms,
		timelines:   timelines,
		users:       users,
		tokens:      tokens,
	}
}
