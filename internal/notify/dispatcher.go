package notify

import (
	"log"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-marketplace/internal/models"
)

// Notification message types.
const (
	TypeBooking = "booking"
	TypePayment = "payment"
	TypeAccount = "account"
)

// Dispatcher persists notifications off the request path. Fire-and-forget:
// a full queue drops the notification, never the booking state change.
type Dispatcher struct {
	db    *gorm.DB
	queue chan models.Notification
}

func NewDispatcher(db *gorm.DB) *Dispatcher {
	d := &Dispatcher{
		db:    db,
		queue: make(chan models.Notification, 256),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for n := range d.queue {
		if err := d.db.Create(&n).Error; err != nil {
			log.Println("notify error:", err)
		}
	}
}

func (d *Dispatcher) Push(n models.Notification) {
	select {
	case d.queue <- n:
	default:
		log.Println("notify queue full, dropping notification")
	}
}
