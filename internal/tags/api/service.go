package api

import (
	"github.com/gin-gonic/gin"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/tags"
)

// Service provides the tag management API.
type Service struct {
	registry *tags.Registry
	store    storage.TransactionStore
	tagger   *tagging.Tagger
}

// NewService creates a new tag API service. store and tagger back the preview endpoint.
func NewService(reg *tags.Registry, store storage.TransactionStore, tagger *tagging.Tagger) *Service {
	return &Service{
		registry: reg,
		store:    store,
		tagger:   tagger,
	}
}

// RegisterRoutes registers the tag API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	handler := NewHandler(s.registry, s.store, s.tagger)

	group := r.Group("/v1/tags")
	{
		group.GET("", handler.HandleList)
		group.GET("/:name", handler.HandleGet)
		group.PUT("/:name", handler.HandlePut)
		group.DELETE("/:name", handler.HandleDelete)
		// dry run of a stored or draft rule over stored transactions
		group.POST("/:name/preview", handler.HandlePreview)
	}
}
