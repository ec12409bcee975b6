package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolfin/voucher/internal/interfaces/http/middleware"
	"github.com/schoolfin/voucher/internal/interfaces/http/router"
)

// DocTypeRoutes creates the route group for variant metadata
func DocTypeRoutes(h *DocumentHandler) *router.DomainGroup {
	group := router.NewDomainGroup("/doc-types")
	group.GET("", h.ListDocTypes)
	group.GET("/:type/layout", h.GetLayout)
	return group
}

// DocumentRoutes creates the route group for stateless documents. PDF
// generation is bounded by generateTimeout.
func DocumentRoutes(h *DocumentHandler, generateTimeout time.Duration) *router.DomainGroup {
	group := router.NewDomainGroup("/documents")
	group.POST("/new", h.NewDocument)
	group.POST("/preview", h.Preview)
	group.POST("/pdf", middleware.Timeout(generateTimeout), h.GeneratePDF)
	return group
}

// DraftRoutes creates the route group for editing sessions
func DraftRoutes(h *DraftHandler, generateTimeout time.Duration) *router.DomainGroup {
	timeout := middleware.Timeout(generateTimeout)

	group := router.NewDomainGroup("/drafts")
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.POST("/:id/pull", h.Pull)
	group.POST("/:id/pdf", timeout, h.GeneratePDF)
	group.POST("/:id/submit", timeout, h.Submit)

	items := group.Group("/:id/items")
	items.POST("", h.AddItem)
	items.PUT("", h.ReplaceItems)
	items.PATCH("/:itemId", h.UpdateItem)
	items.DELETE("/:itemId", h.RemoveItem)
	return group
}

// GenerationRoutes creates the route group for the job history
func GenerationRoutes(h *GenerationHandler) *router.DomainGroup {
	group := router.NewDomainGroup("/generations")
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/download", h.Download)
	return group
}

// RegisterHealth mounts the health check outside the versioned API
func RegisterHealth(engine *gin.Engine, h *HealthHandler) {
	engine.GET("/health", h.Health)
}
