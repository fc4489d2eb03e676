package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hospitalops/cftflow/internal/catalog"
)

// CatalogHandler exposes the read-only reference lists.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) Drugs(c *gin.Context) {
	respondOK(c, h.catalog.Drugs())
}

func (h *CatalogHandler) Services(c *gin.Context) {
	respondOK(c, h.catalog.Services())
}

func (h *CatalogHandler) RequestTypes(c *gin.Context) {
	respondOK(c, h.catalog.RequestTypes())
}

// Meetings lists the committee slots still open for scheduling.
func (h *CatalogHandler) Meetings(c *gin.Context) {
	respondOK(c, h.catalog.UpcomingMeetings(time.Now()))
}
