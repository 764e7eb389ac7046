package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-service/internal/middleware"
	"realestate-service/internal/model"
	"realestate-service/internal/service"
)

type BuyerHandler struct {
	Accounts     *service.AccountService
	Listings     *service.ListingService
	Appointments *service.AppointmentService
}

func (h *BuyerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.Profile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.PUT("/change-password", h.ChangePassword)

	rg.GET("/properties", h.ListProperties)
	rg.GET("/properties/:id", h.GetProperty)
	rg.POST("/properties/:id/interested", h.Interest)

	rg.GET("/appointments", h.ListAppointments)
	rg.GET("/appointments/:id", h.GetAppointment)
	rg.POST("/appointments", h.RequestAppointment)
	rg.DELETE("/appointments/:id", h.CancelAppointment)
}

func buyerID(c *gin.Context) string {
	return middleware.CurrentIdentity(c).ID
}

// GET /api/buyer/profile
func (h *BuyerHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentIdentity(c))
}

// PUT /api/buyer/profile
func (h *BuyerHandler) UpdateProfile(c *gin.Context) {
	var in model.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.Accounts.UpdateProfile(c.Request.Context(), model.RoleBuyer, buyerID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/buyer/change-password
func (h *BuyerHandler) ChangePassword(c *gin.Context) {
	var in model.PasswordChange
	if !bindJSON(c, &in) {
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), model.RoleBuyer, buyerID(c), in); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Password updated successfully")
}

// GET /api/buyer/properties
func (h *BuyerHandler) ListProperties(c *gin.Context) {
	list, err := h.Listings.Approved(c.Request.Context(), c.Query("propertyType"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/buyer/properties/:id
func (h *BuyerHandler) GetProperty(c *gin.Context) {
	d, err := h.Listings.BuyerDetail(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// POST /api/buyer/properties/:id/interested
func (h *BuyerHandler) Interest(c *gin.Context) {
	var req model.InterestRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.Listings.SetInterest(c.Request.Context(), buyerID(c), c.Param("id"), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, msg)
}

// GET /api/buyer/appointments
func (h *BuyerHandler) ListAppointments(c *gin.Context) {
	list, err := h.Appointments.ForBuyer(c.Request.Context(), buyerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/buyer/appointments/:id
func (h *BuyerHandler) GetAppointment(c *gin.Context) {
	a, err := h.Appointments.GetForBuyer(c.Request.Context(), buyerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/buyer/appointments
func (h *BuyerHandler) RequestAppointment(c *gin.Context) {
	var req model.AppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Appointments.Request(c.Request.Context(), buyerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// DELETE /api/buyer/appointments/:id
func (h *BuyerHandler) CancelAppointment(c *gin.Context) {
	if err := h.Appointments.Cancel(c.Request.Context(), buyerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Appointment cancelled successfully")
}
