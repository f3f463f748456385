package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/middleware"
	"github.com/BruksfildServices01/barber-marketplace/internal/models"
	"github.com/BruksfildServices01/barber-marketplace/internal/storage"
)

const maxPhotoBytes = 5 << 20

type ProfileHandler struct {
	db    *gorm.DB
	store *storage.ObjectStore
}

func NewProfileHandler(db *gorm.DB, store *storage.ObjectStore) *ProfileHandler {
	return &ProfileHandler{db: db, store: store}
}

// UploadPhoto accepts a multipart "photo" file, normalizes it and stores it
// as the user's profile picture.
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	file, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "Multipart field photo is required.")
		return
	}
	if file.Size > maxPhotoBytes {
		httperr.BadRequest(c, "photo_too_large", "Photo exceeds the 5MB limit.")
		return
	}

	f, err := file.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_photo", "Could not read the upload.")
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		httperr.Internal(c, "failed_to_read_photo", "Could not read the upload.")
		return
	}

	encoded, err := storage.NormalizePhoto(raw)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	key := fmt.Sprintf("profiles/%d/%d.webp", userID, time.Now().Unix())
	url, err := h.store.Put(c.Request.Context(), key, "image/webp", encoded)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	if err := h.db.
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("photo_url", url).Error; err != nil {
		httperr.Internal(c, "failed_to_save_photo", "Could not persist the photo URL.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
