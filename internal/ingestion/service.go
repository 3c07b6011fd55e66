package ingestion

import (
	"github.com/gin-gonic/gin"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/tags"
)

// Service accepts normalized statement records and lists stored transactions.
type Service struct {
	store            storage.TransactionStore
	registry         *tags.Registry // nil disables tagging on ingest
	tagger           *tagging.Tagger
	maxBodySizeBytes int
}

func NewService(store storage.TransactionStore, reg *tags.Registry, tagger *tagging.Tagger, maxBodySizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if reg != nil && tagger == nil {
		panic("ingestion: tagger must not be nil when a registry is set")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	return &Service{
		store:            store,
		registry:         reg,
		tagger:           tagger,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/transactions", s.IngestHandler)
	r.GET("/v1/transactions", s.ListHandler)
}
