package routes

import (
	"time"

	"clinicbook/handlers"
	"clinicbook/middleware"
	"clinicbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers the unauthenticated liveness endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterBookingRoutes sets up availability and the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, validator utils.TokenValidator) {
	auth := middleware.SessionAuthMiddleware(validator)

	r.POST("/booking/availability", auth, hb.ComputeAvailability)

	bookings := r.Group("/bookings")
	{
		bookings.Use(auth)
		bookings.POST("", hb.CreateBooking)
		bookings.GET("", hb.ListBookings)
		bookings.GET("/:id", hb.GetBooking)
		bookings.PUT("/:id", hb.RescheduleBooking)
		bookings.DELETE("/:id", hb.CancelBooking)
	}
}

// RegisterCatalogRoutes sets up treatments, professionals, sites and the tenant profile.
// Role checks happen in the catalog service.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle, validator utils.TokenValidator) {
	api := r.Group("")
	{
		api.Use(middleware.SessionAuthMiddleware(validator))
		api.GET("/treatments", hb.ListTreatments)
		api.POST("/treatments", hb.CreateTreatment)
		api.GET("/professionals", hb.ListProfessionals)
		api.POST("/professionals", hb.CreateProfessional)
		api.GET("/sites", hb.ListSites)
		api.POST("/sites", hb.CreateSite)
		api.GET("/tenant", hb.GetTenant)
		api.PUT("/tenant", hb.UpsertTenant)
	}
}

// RegisterRoutes centralizes registration of all endpoints and global middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, validator utils.TokenValidator, origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.CorrelationHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.CorrelationHeader},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SecurityHeaders())

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb, validator)
	RegisterCatalogRoutes(r, hb, validator)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
