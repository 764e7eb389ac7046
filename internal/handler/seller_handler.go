package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-service/internal/middleware"
	"realestate-service/internal/model"
	"realestate-service/internal/service"
)

// SellerHandler serves /api/seller. Every route runs behind RequireRole
// with a store lookup, so CurrentIdentity is always set.
type SellerHandler struct {
	Accounts     *service.AccountService
	Listings     *service.ListingService
	Appointments *service.AppointmentService
	Dashboards   *service.DashboardService
	Photos       *PhotoHandler
}

func (h *SellerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard-stats", h.Dashboard)

	rg.GET("/profile", h.Profile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.PUT("/change-password", h.ChangePassword)

	rg.GET("/properties", h.ListProperties)
	rg.GET("/properties/:id", h.GetProperty)
	rg.POST("/properties", h.CreateProperty)
	rg.PUT("/properties/:id", h.UpdateProperty)
	rg.DELETE("/properties/:id", h.DeleteProperty)
	rg.POST("/properties/:id/photo", h.Photos.UploadAsSeller)

	rg.GET("/appointments", h.ListAppointments)
	rg.GET("/appointments/:id", h.GetAppointment)
	rg.PUT("/appointments/:id", h.UpdateAppointment)
}

func sellerID(c *gin.Context) string {
	return middleware.CurrentIdentity(c).ID
}

// GET /api/seller/dashboard-stats
func (h *SellerHandler) Dashboard(c *gin.Context) {
	d, err := h.Dashboards.Seller(c.Request.Context(), sellerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/seller/profile
func (h *SellerHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentIdentity(c))
}

// PUT /api/seller/profile
func (h *SellerHandler) UpdateProfile(c *gin.Context) {
	var in model.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.Accounts.UpdateProfile(c.Request.Context(), model.RoleSeller, sellerID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// PUT /api/seller/change-password
func (h *SellerHandler) ChangePassword(c *gin.Context) {
	var in model.PasswordChange
	if !bindJSON(c, &in) {
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), model.RoleSeller, sellerID(c), in); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Password updated successfully")
}

// GET /api/seller/properties
func (h *SellerHandler) ListProperties(c *gin.Context) {
	list, err := h.Listings.Own(c.Request.Context(), sellerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/seller/properties/:id
func (h *SellerHandler) GetProperty(c *gin.Context) {
	l, err := h.Listings.GetOwn(c.Request.Context(), sellerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// POST /api/seller/properties
func (h *SellerHandler) CreateProperty(c *gin.Context) {
	var in model.ListingInput
	if !bindJSON(c, &in) {
		return
	}
	l, err := h.Listings.CreateAsSeller(c.Request.Context(), sellerID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// PUT /api/seller/properties/:id
func (h *SellerHandler) UpdateProperty(c *gin.Context) {
	var in model.ListingInput
	if !bindJSON(c, &in) {
		return
	}
	l, err := h.Listings.UpdateAsSeller(c.Request.Context(), sellerID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// DELETE /api/seller/properties/:id
func (h *SellerHandler) DeleteProperty(c *gin.Context) {
	l, err := h.Listings.DeleteAsSeller(c.Request.Context(), sellerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted successfully", "deletedProperty": l})
}

// GET /api/seller/appointments
func (h *SellerHandler) ListAppointments(c *gin.Context) {
	list, err := h.Appointments.ForSeller(c.Request.Context(), sellerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/seller/appointments/:id
func (h *SellerHandler) GetAppointment(c *gin.Context) {
	a, err := h.Appointments.GetForSeller(c.Request.Context(), sellerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// PUT /api/seller/appointments/:id
func (h *SellerHandler) UpdateAppointment(c *gin.Context) {
	var req model.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Appointments.SetStatus(c.Request.Context(), sellerID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
