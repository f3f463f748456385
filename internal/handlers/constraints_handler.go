package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-marketplace/internal/constraints"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/middleware"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type ConstraintsHandler struct {
	store *constraints.Store
}

func NewConstraintsHandler(store *constraints.Store) *ConstraintsHandler {
	return &ConstraintsHandler{store: store}
}

// ======================================================
// CONSTRAINTS
// ======================================================

func (h *ConstraintsHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	cons, err := h.store.GetConstraints(c.Request.Context(), barberID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, cons)
}

func (h *ConstraintsHandler) Update(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var patch constraints.ConstraintsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed constraints payload.")
		return
	}

	cons, err := h.store.UpdateConstraints(c.Request.Context(), barberID, patch)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, cons)
}

func (h *ConstraintsHandler) Reset(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	cons, err := h.store.ResetConstraints(c.Request.Context(), barberID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, cons)
}

// ======================================================
// SLOT TEMPLATES
// ======================================================

type SlotTemplateRequest struct {
	Weekday            int    `json:"weekday"`
	StartTime          string `json:"start_time" binding:"required"`
	EndTime            string `json:"end_time" binding:"required"`
	SlotDurationMin    int    `json:"slot_duration_min" binding:"required"`
	BufferBeforeMin    int    `json:"buffer_before_min"`
	BufferAfterMin     int    `json:"buffer_after_min"`
	MaxBookingsPerSlot uint   `json:"max_bookings_per_slot"`
	Active             *bool  `json:"active"`
}

func (r *SlotTemplateRequest) toModel(barberID uint) models.SlotTemplate {
	tpl := models.SlotTemplate{
		BarberID:           barberID,
		Weekday:            r.Weekday,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		SlotDurationMin:    r.SlotDurationMin,
		BufferBeforeMin:    r.BufferBeforeMin,
		BufferAfterMin:     r.BufferAfterMin,
		MaxBookingsPerSlot: r.MaxBookingsPerSlot,
		Active:             true,
	}
	if tpl.MaxBookingsPerSlot == 0 {
		tpl.MaxBookingsPerSlot = 1
	}
	if r.Active != nil {
		tpl.Active = *r.Active
	}
	return tpl
}

func (h *ConstraintsHandler) ListTemplates(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	tpls, err := h.store.ListSlotTemplates(c.Request.Context(), barberID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, tpls)
}

func (h *ConstraintsHandler) CreateTemplate(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var req SlotTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed template payload.")
		return
	}

	tpl := req.toModel(barberID)
	if err := h.store.CreateSlotTemplate(c.Request.Context(), &tpl); err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

func (h *ConstraintsHandler) UpdateTemplate(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Template id must be numeric.")
		return
	}

	var req SlotTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed template payload.")
		return
	}

	tpl := req.toModel(barberID)
	tpl.ID = uint(id)

	if err := h.store.UpdateSlotTemplate(c.Request.Context(), barberID, &tpl); err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, tpl)
}

func (h *ConstraintsHandler) DeleteTemplate(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Template id must be numeric.")
		return
	}

	if err := h.store.DeleteSlotTemplate(c.Request.Context(), barberID, uint(id)); err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ======================================================
// WEEKLY AVAILABILITY
// ======================================================

type AvailabilityDayRequest struct {
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
	Active     bool   `json:"active"`
}

func (h *ConstraintsHandler) GetAvailability(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	days, err := h.store.ListAvailability(c.Request.Context(), barberID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, days)
}

func (h *ConstraintsHandler) ReplaceAvailability(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var req []AvailabilityDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed availability payload.")
		return
	}

	days := make([]models.Availability, 0, len(req))
	for _, d := range req {
		days = append(days, models.Availability{
			BarberID:   barberID,
			Weekday:    d.Weekday,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			LunchStart: d.LunchStart,
			LunchEnd:   d.LunchEnd,
			Active:     d.Active,
		})
	}

	if err := h.store.ReplaceAvailability(c.Request.Context(), barberID, days); err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
