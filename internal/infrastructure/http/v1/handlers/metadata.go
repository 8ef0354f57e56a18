package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthops/internal/core/apperror"
	"healthops/internal/metadata"
)

type MetadataHandler struct {
	*BaseHandler
	registry *metadata.Registry
}

func NewMetadataHandler(base *BaseHandler, registry *metadata.Registry) *MetadataHandler {
	return &MetadataHandler{
		BaseHandler: base,
		registry:    registry,
	}
}

// ListEntities returns every registered entity.
// GET /api/v1/meta/entities
func (h *MetadataHandler) ListEntities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.registry.List()})
}

// GetEntity returns one entity by name or URL segment.
// GET /api/v1/meta/entities/:name
func (h *MetadataHandler) GetEntity(c *gin.Context) {
	name := c.Param("name")
	def, ok := h.registry.Get(name)
	if !ok {
		h.Error(c, apperror.NewNotFound("entity", name))
		return
	}
	c.JSON(http.StatusOK, def)
}
