package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetListingFacets handles GET /v1/listings/facets
// It returns the categories and brands used by published listings, so the
// marketplace can build its filter menus.
func (h *Handlers) GetListingFacets(c *gin.Context) {
	categories, brands, err := h.Store.ListingFacets(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Facets")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"brands":     brands,
	})
}
