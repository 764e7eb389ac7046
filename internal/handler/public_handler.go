package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-service/internal/service"
)

// PublicHandler serves the anonymous catalogue.
type PublicHandler struct {
	Listings *service.ListingService
}

func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/properties", h.List)
	rg.GET("/properties/:id", h.Get)
}

// GET /api/properties?propertyType=
func (h *PublicHandler) List(c *gin.Context) {
	list, err := h.Listings.Approved(c.Request.Context(), c.Query("propertyType"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/properties/:id
func (h *PublicHandler) Get(c *gin.Context) {
	l, err := h.Listings.GetApproved(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}
