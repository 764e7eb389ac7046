// Package server assembles the gin engine.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realestate-service/internal/auth"
	"realestate-service/internal/handler"
	"realestate-service/internal/metrics"
	"realestate-service/internal/middleware"
	"realestate-service/internal/model"
	"realestate-service/internal/repository"
	"realestate-service/internal/service"
)

// Deps is everything the router needs. Limiter may be nil to disable rate
// limiting of the auth endpoints.
type Deps struct {
	Store       *repository.Store
	Tokens      *auth.TokenManager
	Metrics     *metrics.Metrics
	Limiter     middleware.Limiter
	CORSOrigins []string
	Logger      *zap.Logger
}

const healthTimeout = 2 * time.Second

func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	st := d.Store

	var rec service.AuthRecorder
	if d.Metrics != nil {
		rec = d.Metrics
	}
	authSvc := service.NewAuthService(st.Identities, d.Tokens, rec, log)
	accounts := service.NewAccountService(st.Identities, st.Listings)
	listings := service.NewListingService(st.Listings, st.Identities, st.Photos)
	appointments := service.NewAppointmentService(st.Appointments, st.Listings, st.Identities)
	dashboards := service.NewDashboardService(st.Identities, st.Listings, st.Appointments)

	photos := &handler.PhotoHandler{Listings: listings}

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestID(), middleware.Logger(log))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	if d.Limiter != nil {
		authGroup.Use(middleware.RateLimit(d.Limiter, d.Metrics, log))
	}
	(&handler.AuthHandler{Auth: authSvc}).RegisterRoutes(authGroup)

	(&handler.PublicHandler{Listings: listings}).RegisterRoutes(api)
	api.GET("/properties/:id/photo", photos.Download)

	admin := api.Group("/admin", middleware.RequireRole(d.Tokens, model.RoleAdmin, nil, log))
	(&handler.AdminHandler{
		Accounts:   accounts,
		Listings:   listings,
		Dashboards: dashboards,
		Photos:     photos,
	}).RegisterRoutes(admin)

	seller := api.Group("/seller", middleware.RequireRole(d.Tokens, model.RoleSeller, st.Identities, log))
	(&handler.SellerHandler{
		Accounts:     accounts,
		Listings:     listings,
		Appointments: appointments,
		Dashboards:   dashboards,
		Photos:       photos,
	}).RegisterRoutes(seller)

	buyer := api.Group("/buyer", middleware.RequireRole(d.Tokens, model.RoleBuyer, st.Identities, log))
	(&handler.BuyerHandler{
		Accounts:     accounts,
		Listings:     listings,
		Appointments: appointments,
	}).RegisterRoutes(buyer)

	return r
}
