package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-service/internal/middleware"
	"realestate-service/internal/model"
	"realestate-service/internal/service"
)

// AdminHandler serves /api/admin. The admin id comes from the token; the
// record itself is looked up only by the profile endpoints.
type AdminHandler struct {
	Accounts   *service.AccountService
	Listings   *service.ListingService
	Dashboards *service.DashboardService
	Photos     *PhotoHandler
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)

	rg.GET("/profile", h.Profile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.PUT("/change-password", h.ChangePassword)

	rg.GET("/properties", h.ListProperties)
	rg.GET("/properties/:id", h.GetProperty)
	rg.POST("/properties", h.CreateProperty)
	rg.PUT("/properties/:id", h.UpdateProperty)
	rg.PUT("/properties/:id/approve", h.moderate(model.ListingApproved))
	rg.PUT("/properties/:id/reject", h.moderate(model.ListingRejected))
	rg.DELETE("/properties/:id", h.DeleteProperty)
	rg.POST("/properties/:id/photo", h.Photos.UploadAsAdmin)

	rg.GET("/buyers/all", h.listIdentities(model.RoleBuyer))
	rg.GET("/buyers/:id", h.getIdentity(model.RoleBuyer))
	rg.POST("/buyers/add", h.createIdentity(model.RoleBuyer))
	rg.PUT("/buyers/update/:id", h.updateIdentity(model.RoleBuyer))
	rg.DELETE("/buyers/delete/:id", h.deleteIdentity(model.RoleBuyer))

	rg.GET("/sellers", h.ListSellers)
	rg.GET("/sellers/:id", h.GetSeller)
	rg.POST("/sellers", h.createIdentity(model.RoleSeller))
	rg.PUT("/sellers/:id", h.updateIdentity(model.RoleSeller))
	rg.DELETE("/sellers/:id", h.deleteIdentity(model.RoleSeller))
	rg.GET("/seller/properties/:sellerId", h.SellerProperties)
}

func adminID(c *gin.Context) string {
	return middleware.CurrentClaims(c).ID
}

// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.Dashboards.Admin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/admin/profile
func (h *AdminHandler) Profile(c *gin.Context) {
	a, err := h.Accounts.Get(c.Request.Context(), model.RoleAdmin, adminID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// PUT /api/admin/profile
func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	var in model.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	a, err := h.Accounts.UpdateProfile(c.Request.Context(), model.RoleAdmin, adminID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// PUT /api/admin/change-password
func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var in model.PasswordChange
	if !bindJSON(c, &in) {
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), model.RoleAdmin, adminID(c), in); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Password updated successfully")
}

// GET /api/admin/properties?status=
func (h *AdminHandler) ListProperties(c *gin.Context) {
	list, err := h.Listings.All(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/admin/properties/:id
func (h *AdminHandler) GetProperty(c *gin.Context) {
	l, err := h.Listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// POST /api/admin/properties
func (h *AdminHandler) CreateProperty(c *gin.Context) {
	var in model.ListingInput
	if !bindJSON(c, &in) {
		return
	}
	l, err := h.Listings.CreateAsAdmin(c.Request.Context(), adminID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// PUT /api/admin/properties/:id
func (h *AdminHandler) UpdateProperty(c *gin.Context) {
	var in model.ListingInput
	if !bindJSON(c, &in) {
		return
	}
	l, err := h.Listings.UpdateAsAdmin(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// PUT /api/admin/properties/:id/approve and /reject
func (h *AdminHandler) moderate(status model.ListingStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := h.Listings.Moderate(c.Request.Context(), c.Param("id"), status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, l)
	}
}

// DELETE /api/admin/properties/:id
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	if err := h.Listings.DeleteAsAdmin(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Property deleted successfully")
}

func (h *AdminHandler) listIdentities(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := h.Accounts.List(c.Request.Context(), role, pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func (h *AdminHandler) getIdentity(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := h.Accounts.Get(c.Request.Context(), role, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ident)
	}
}

func (h *AdminHandler) createIdentity(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in model.IdentityInput
		if !bindJSON(c, &in) {
			return
		}
		ident, err := h.Accounts.Create(c.Request.Context(), role, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ident)
	}
}

func (h *AdminHandler) updateIdentity(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in model.IdentityInput
		if !bindJSON(c, &in) {
			return
		}
		ident, err := h.Accounts.Update(c.Request.Context(), role, c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ident)
	}
}

func (h *AdminHandler) deleteIdentity(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.Accounts.Delete(c.Request.Context(), role, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		message(c, role.Title()+" deleted successfully")
	}
}

// GET /api/admin/sellers
func (h *AdminHandler) ListSellers(c *gin.Context) {
	page, err := h.Accounts.ListSellers(c.Request.Context(), pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/admin/sellers/:id
func (h *AdminHandler) GetSeller(c *gin.Context) {
	s, err := h.Accounts.GetSeller(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GET /api/admin/seller/properties/:sellerId
func (h *AdminHandler) SellerProperties(c *gin.Context) {
	inv, err := h.Accounts.SellerInventory(c.Request.Context(), c.Param("sellerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
