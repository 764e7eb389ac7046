package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-service/internal/apperror"
	"realestate-service/internal/middleware"
	"realestate-service/internal/service"
)

// PhotoHandler stores listing photos and serves them back.
type PhotoHandler struct {
	Listings *service.ListingService
}

// POST /api/admin/properties/:id/photo
func (h *PhotoHandler) UploadAsAdmin(c *gin.Context) {
	h.upload(c, "")
}

// POST /api/seller/properties/:id/photo
func (h *PhotoHandler) UploadAsSeller(c *gin.Context) {
	h.upload(c, middleware.CurrentIdentity(c).ID)
}

func (h *PhotoHandler) upload(c *gin.Context, sellerID string) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperror.BadRequest("File is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperror.Internal(fmt.Errorf("open upload: %w", err)))
		return
	}
	defer file.Close()

	listingID := c.Param("id")
	filename := fmt.Sprintf("listing_%s_%s", listingID, fileHeader.Filename)

	l, err := h.Listings.AttachPhoto(c.Request.Context(), sellerID, listingID, filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GET /api/properties/:id/photo
func (h *PhotoHandler) Download(c *gin.Context) {
	data, err := h.Listings.Photo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
