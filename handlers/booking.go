package handlers

import (
	"net/http"

	"clinicbook/middleware"
	"clinicbook/models"
	"clinicbook/services/booking"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// bindJSON decodes the body; malformed input answers 422 like any other validation failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, utils.Validation("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// ComputeAvailability handles POST /booking/availability.
func (h *BookingHandler) ComputeAvailability(c *gin.Context) {
	var req models.AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Service.ComputeAvailability(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.CreateBooking(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("booking created",
		zap.String("tenant_id", b.TenantID),
		zap.String("booking_id", b.ID),
		zap.String("professional_id", b.ProfessionalID),
		zap.Time("start", b.Start))
	c.JSON(http.StatusCreated, b)
}

// ListBookings handles GET /bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var q models.BookingListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, utils.Validation("invalid query: "+err.Error()))
		return
	}
	bookings, err := h.Service.ListBookings(c.Request.Context(), middleware.GetSession(c), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RescheduleBooking handles PUT /bookings/:id.
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	var req models.RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.RescheduleBooking(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles DELETE /bookings/:id and returns the cancelled booking.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	b, err := h.Service.CancelBooking(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
