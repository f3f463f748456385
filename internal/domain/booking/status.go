package booking

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
	StatusFailed            Status = "failed"
	StatusExpired           Status = "expired"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

// Terminal statuses never transition further; they are also the deletion
// surrogate, rows are never physically removed.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded, StatusExpired:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending:           {StatusConfirmed, StatusFailed, StatusExpired, StatusCancelled},
	StatusConfirmed:         {StatusCompleted, StatusCancelled, StatusRefunded, StatusPartiallyRefunded},
	StatusFailed:            {},
	StatusPartiallyRefunded: {StatusCompleted, StatusCancelled, StatusRefunded},
}

func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ===============================
// Payment Status
// ===============================

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentSucceeded         PaymentStatus = "succeeded"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentFailed || s == PaymentRefunded
}
