package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/middleware"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/timezone"
	ucBooking "github.com/BruksfildServices01/barber-marketplace/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db *gorm.DB

	createUC   *ucBooking.CreateBooking
	updateUC   *ucBooking.UpdateBooking
	cancelUC   *ucBooking.CancelBooking
	completeUC *ucBooking.CompleteBooking
	listUC     *ucBooking.ListBookings
}

func NewBookingHandler(
	db *gorm.DB,
	createUC *ucBooking.CreateBooking,
	updateUC *ucBooking.UpdateBooking,
	cancelUC *ucBooking.CancelBooking,
	completeUC *ucBooking.CompleteBooking,
	listUC *ucBooking.ListBookings,
) *BookingHandler {
	return &BookingHandler{
		db:         db,
		createUC:   createUC,
		updateUC:   updateUC,
		cancelUC:   cancelUC,
		completeUC: completeUC,
		listUC:     listUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ServiceID uint `json:"service_id" binding:"required"`

	ClientID   *uint  `json:"client_id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`

	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
	Notes string `json:"notes"`
}

type UpdateBookingRequest struct {
	Date   *string `json:"date,omitempty"`
	Time   *string `json:"time,omitempty"`
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (h *BookingHandler) parseStart(barberID uint, date, clock string) (time.Time, error) {
	var barber models.User
	if err := h.db.First(&barber, barberID).Error; err != nil {
		return time.Time{}, httperr.ErrNotFound("barber")
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		date+" "+clock,
		timezone.Location(barber.Timezone),
	)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("date", "invalid_date_or_time")
	}
	return start, nil
}

// ======================================================
// CREATE (walk-in, settled in person)
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed booking payload.")
		return
	}

	start, err := h.parseStart(barberID, req.Date, req.Time)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	// Walk-ins are paid in person; no checkout session and no platform cut.
	zero := 0.0
	var svc models.Service
	if err := h.db.
		Where("id = ? AND barber_id = ?", req.ServiceID, barberID).
		First(&svc).Error; err != nil {
		httperr.WriteError(c, httperr.ErrNotFound("service"))
		return
	}

	booking, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		BarberID:        barberID,
		ServiceID:       req.ServiceID,
		ClientID:        req.ClientID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		Start:           start,
		PaymentIntentID: "manual_" + uuid.NewString(),
		Price:           svc.Price,
		PlatformFee:     &zero,
		BarberPayout:    &svc.Price,
		Notes:           req.Notes,
	})
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter date is required.")
		return
	}

	bookings, err := h.listUC.ByDate(c.Request.Context(), barberID, date)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	month := c.Query("month")
	if month == "" {
		httperr.BadRequest(c, "missing_month", "Query parameter month is required.")
		return
	}

	bookings, err := h.listUC.ByMonth(c.Request.Context(), barberID, month)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":    month,
		"bookings": bookings,
	})
}

// ======================================================
// UPDATE / CANCEL / COMPLETE
// ======================================================

func (h *BookingHandler) Update(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Booking id must be numeric.")
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed booking payload.")
		return
	}

	in := ucBooking.UpdateBookingInput{
		BookingID: uint(id),
		BarberID:  barberID,
		Status:    req.Status,
		Notes:     req.Notes,
	}

	if req.Date != nil && req.Time != nil {
		start, err := h.parseStart(barberID, *req.Date, *req.Time)
		if err != nil {
			httperr.WriteError(c, err)
			return
		}
		in.Start = &start
	} else if req.Date != nil || req.Time != nil {
		httperr.BadRequest(c, "invalid_request", "Rescheduling needs both date and time.")
		return
	}

	booking, err := h.updateUC.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Booking id must be numeric.")
		return
	}

	booking, err := h.cancelUC.Execute(c.Request.Context(), uint(id), barberID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Booking id must be numeric.")
		return
	}

	booking, err := h.completeUC.Execute(c.Request.Context(), uint(id), barberID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
