package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/middleware"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/payments"
	"github.com/BruksfildServices01/barber-marketplace/internal/retry"
)

type PayoutHandler struct {
	db       *gorm.DB
	provider payments.Provider
}

func NewPayoutHandler(db *gorm.DB, provider payments.Provider) *PayoutHandler {
	return &PayoutHandler{db: db, provider: provider}
}

// Connect provisions the barber's payout account with the payment provider.
// Provisioning is eventually consistent, so the status is polled a few times
// before giving up and reporting pending.
func (h *PayoutHandler) Connect(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var barber models.User
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.WriteError(c, httperr.ErrNotFound("barber"))
		return
	}

	if barber.PayoutAccountID == "" {
		accountID, err := h.provider.CreateConnectedAccount(c.Request.Context(), barber.Email)
		if err != nil {
			httperr.WriteError(c, err)
			return
		}

		barber.PayoutAccountID = accountID
		barber.PayoutAccountStatus = models.PayoutAccountPending
		if err := h.db.Save(&barber).Error; err != nil {
			httperr.Internal(c, "failed_to_save_account", "Could not persist payout account.")
			return
		}
	}

	status, err := retry.Poll(
		c.Request.Context(),
		5,
		500*time.Millisecond,
		func(ctx context.Context) (payments.AccountStatus, bool, error) {
			st, err := h.provider.GetAccountStatus(ctx, barber.PayoutAccountID)
			if err != nil {
				return payments.AccountStatus{}, false, err
			}
			return st, st.ChargesEnabled && st.PayoutsEnabled, nil
		},
	)
	if err != nil && !errors.Is(err, retry.ErrExhausted) {
		httperr.WriteError(c, err)
		return
	}

	h.syncStatus(&barber, status)

	c.JSON(http.StatusOK, gin.H{
		"payout_account_id":     barber.PayoutAccountID,
		"payout_account_status": barber.PayoutAccountStatus,
	})
}

func (h *PayoutHandler) Status(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var barber models.User
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.WriteError(c, httperr.ErrNotFound("barber"))
		return
	}

	if barber.PayoutAccountID == "" {
		c.JSON(http.StatusOK, gin.H{"payout_account_status": models.PayoutAccountNone})
		return
	}

	status, err := h.provider.GetAccountStatus(c.Request.Context(), barber.PayoutAccountID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	h.syncStatus(&barber, status)

	c.JSON(http.StatusOK, gin.H{
		"payout_account_id":     barber.PayoutAccountID,
		"payout_account_status": barber.PayoutAccountStatus,
		"charges_enabled":       status.ChargesEnabled,
		"payouts_enabled":       status.PayoutsEnabled,
	})
}

func (h *PayoutHandler) syncStatus(barber *models.User, status payments.AccountStatus) {
	next := models.PayoutAccountPending
	if status.ChargesEnabled && status.PayoutsEnabled {
		next = models.PayoutAccountActive
	}
	// Deauthorization only arrives via webhook; never downgrade it here.
	if barber.PayoutAccountStatus == models.PayoutAccountDeauthorized {
		return
	}
	if barber.PayoutAccountStatus != next {
		barber.PayoutAccountStatus = next
		h.db.Save(barber)
	}
}
