package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/config"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/middleware"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/payments"
	"github.com/BruksfildServices01/barber-marketplace/internal/settlement"
	"github.com/BruksfildServices01/barber-marketplace/internal/timezone"
	ucBooking "github.com/BruksfildServices01/barber-marketplace/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type PublicHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	provider payments.Provider

	createUC       *ucBooking.CreateBooking
	availabilityUC *ucBooking.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	cfg *config.Config,
	provider payments.Provider,
	createUC *ucBooking.CreateBooking,
	availabilityUC *ucBooking.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		db:             db,
		cfg:            cfg,
		provider:       provider,
		createUC:       createUC,
		availabilityUC: availabilityUC,
	}
}

// ======================================================
// BROWSE
// ======================================================

func (h *PublicHandler) ListBarbers(c *gin.Context) {
	query := c.Query("query")

	q := h.db.Model(&models.User{}).Where("role = ?", models.RoleBarber)
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(bio) LIKE LOWER(?)", like, like)
	}

	var barbers []models.User
	if err := q.Order("id ASC").Find(&barbers).Error; err != nil {
		httperr.Internal(c, "failed_to_list_barbers", "Could not list barbers.")
		return
	}

	out := make([]gin.H, 0, len(barbers))
	for _, b := range barbers {
		out = append(out, gin.H{
			"id":        b.ID,
			"name":      b.Name,
			"bio":       b.Bio,
			"photo_url": b.PhotoURL,
			"timezone":  b.Timezone,
		})
	}

	c.JSON(http.StatusOK, out)
}

func (h *PublicHandler) ListServices(c *gin.Context) {
	barberID, err := strconv.ParseUint(c.Param("barberId"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Barber id must be numeric.")
		return
	}

	var services []models.Service
	if err := h.db.
		Where("barber_id = ? AND active = ?", uint(barberID), true).
		Order("id ASC").
		Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *PublicHandler) Availability(c *gin.Context) {
	barberID, err := strconv.ParseUint(c.Param("barberId"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Barber id must be numeric.")
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Query parameter service_id is required.")
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter date is required.")
		return
	}

	slots, err := h.availabilityUC.Execute(
		c.Request.Context(),
		uint(barberID),
		uint(serviceID),
		date,
	)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date,
		"slots": slots,
	})
}

// ======================================================
// CHECKOUT BOOKING
// ======================================================

type CheckoutBookingRequest struct {
	BarberID  uint `json:"barber_id" binding:"required"`
	ServiceID uint `json:"service_id" binding:"required"`

	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`

	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
	Notes string `json:"notes"`
}

// CreateBooking reserves the slot and opens a hosted checkout. The booking
// stays pending until the payment webhook confirms or expires it.
func (h *PublicHandler) CreateBooking(c *gin.Context) {
	var req CheckoutBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed booking payload.")
		return
	}

	// An authenticated client books under their account; anyone else books
	// as a guest.
	var clientID *uint
	if v, ok := c.Get(middleware.ContextUserID); ok {
		id := v.(uint)
		clientID = &id
		req.GuestName, req.GuestEmail, req.GuestPhone = "", "", ""
	}

	var barber models.User
	if err := h.db.
		Where("id = ? AND role = ?", req.BarberID, models.RoleBarber).
		First(&barber).Error; err != nil {
		httperr.WriteError(c, httperr.ErrNotFound("barber"))
		return
	}

	var svc models.Service
	if err := h.db.
		Where("id = ? AND barber_id = ? AND active = ?", req.ServiceID, req.BarberID, true).
		First(&svc).Error; err != nil {
		httperr.WriteError(c, httperr.ErrNotFound("service"))
		return
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		req.Date+" "+req.Time,
		timezone.Location(barber.Timezone),
	)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid date or time.")
		return
	}

	fee, _ := settlement.ComputeSplit(svc.Price, h.cfg.PlatformFeePercent)

	meta := map[string]string{
		"barber_id":  fmt.Sprintf("%d", req.BarberID),
		"service_id": fmt.Sprintf("%d", req.ServiceID),
		"date":       start.Format(time.RFC3339),
		"price":      strconv.FormatFloat(svc.Price, 'f', 2, 64),
	}
	if clientID != nil {
		meta["client_id"] = fmt.Sprintf("%d", *clientID)
	} else {
		meta["guest_name"] = req.GuestName
		meta["guest_email"] = req.GuestEmail
		meta["guest_phone"] = req.GuestPhone
	}
	if req.Notes != "" {
		meta["notes"] = req.Notes
	}

	email := req.GuestEmail
	if clientID != nil {
		var client models.User
		if err := h.db.First(&client, *clientID).Error; err == nil {
			email = client.Email
		}
	}

	sess, err := h.provider.CreateCheckoutSession(c.Request.Context(), payments.CheckoutInput{
		ServiceName:    svc.Name,
		AmountCents:    int64(math.Round(svc.Price * 100)),
		FeeCents:       int64(math.Round(fee * 100)),
		Currency:       "usd",
		CustomerEmail:  email,
		PayoutAccount:  barber.PayoutAccountID,
		SuccessURL:     h.cfg.CheckoutSuccessURL,
		CancelURL:      h.cfg.CheckoutCancelURL,
		Metadata:       meta,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	// Hosted checkout only materializes the payment intent once the customer
	// pays; until then the session id is the booking's payment reference.
	paymentRef := sess.PaymentIntentID
	if paymentRef == "" {
		paymentRef = sess.SessionID
	}

	booking, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		BarberID:          req.BarberID,
		ServiceID:         req.ServiceID,
		ClientID:          clientID,
		GuestName:         req.GuestName,
		GuestEmail:        req.GuestEmail,
		GuestPhone:        req.GuestPhone,
		Start:             start,
		PaymentIntentID:   paymentRef,
		CheckoutSessionID: sess.SessionID,
		Price:             svc.Price,
		Notes:             req.Notes,
	})
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":      booking,
		"checkout_url": sess.URL,
	})
}
