package v1

import (
	"github.com/gin-gonic/gin"
)

// EntityRouteHandler defines the interface for audited entity handlers.
type EntityRouteHandler interface {
	List(c *gin.Context)
	Insert(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	SetActive(c *gin.Context)
	History(c *gin.Context)
}

// RegisterEntityRoutes registers the standard routes of an audited entity.
// Authorization happens in the service against the record's owner, so no
// route-level permission middleware is attached.
//
// Usage:
//
//	handler := handlers.NewEntityHandler[*payer.Payer](base, services.Payers, payer.New)
//	RegisterEntityRoutes(api.Group("/payers"), handler)
func RegisterEntityRoutes(group *gin.RouterGroup, handler EntityRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Insert)
	group.GET("/:pubId", handler.Get)
	group.PUT("/:pubId", handler.Update)
	group.POST("/:pubId/activation", handler.SetActive)
	group.GET("/:pubId/history", handler.History)
}
