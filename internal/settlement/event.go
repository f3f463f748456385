package settlement

import (
	"encoding/json"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
)

// The provider's webhook payloads arrive as one loosely typed envelope; here
// they become a closed set of event kinds, each with its own payload, so the
// reconciler dispatches over types instead of strings.

type Event interface {
	ProviderEventID() string
	EventType() string
}

type eventHeader struct {
	ID   string
	Type string
}

func (h eventHeader) ProviderEventID() string { return h.ID }
func (h eventHeader) EventType() string       { return h.Type }

// BookingMetadata is what the checkout flow attached to the session; it is
// the reconciler's only input when the booking row does not exist yet.
type BookingMetadata struct {
	BarberID   uint
	ServiceID  uint
	ClientID   *uint
	GuestName  string
	GuestEmail string
	GuestPhone string
	Date       string // RFC 3339
	Price      float64
	Notes      string
}

type CheckoutCompleted struct {
	eventHeader
	SessionID       string
	PaymentIntentID string
	AmountTotal     int64
	Metadata        BookingMetadata
}

type CheckoutExpired struct {
	eventHeader
	SessionID       string
	PaymentIntentID string
}

type PaymentSucceeded struct {
	eventHeader
	PaymentIntentID string
	AmountReceived  int64
}

type PaymentFailed struct {
	eventHeader
	PaymentIntentID string
	FailureMessage  string
}

type ChargeRefunded struct {
	eventHeader
	ChargeID        string
	PaymentIntentID string
	AmountCharged   int64
	AmountRefunded  int64
}

type AccountUpdated struct {
	eventHeader
	AccountID      string
	ChargesEnabled bool
	PayoutsEnabled bool
}

type AccountDeauthorized struct {
	eventHeader
	AccountID string
}

// UnknownEvent covers kinds this core does not settle; they are acknowledged
// untouched.
type UnknownEvent struct {
	eventHeader
}

// VerifyAndParse checks the delivery's signature against the endpoint secret
// and maps the envelope into the event union. A bad signature is a
// SignatureError; nothing else is looked at first.
func VerifyAndParse(payload []byte, sigHeader, secret string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, httperr.SignatureError{}
	}
	return mapEvent(&ev)
}

func mapEvent(ev *stripe.Event) (Event, error) {
	header := eventHeader{ID: ev.ID, Type: string(ev.Type)}

	switch ev.Type {

	case "checkout.session.completed":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, httperr.ErrValidation("payload", "malformed_checkout_session")
		}
		out := CheckoutCompleted{
			eventHeader: header,
			SessionID:   s.ID,
			AmountTotal: s.AmountTotal,
			Metadata:    parseMetadata(s.Metadata),
		}
		if s.PaymentIntent != nil {
			out.PaymentIntentID = s.PaymentIntent.ID
		}
		return out, nil

	case "checkout.session.expired":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, httperr.ErrValidation("payload", "malformed_checkout_session")
		}
		out := CheckoutExpired{
			eventHeader: header,
			SessionID:   s.ID,
		}
		if s.PaymentIntent != nil {
			out.PaymentIntentID = s.PaymentIntent.ID
		}
		return out, nil

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, httperr.ErrValidation("payload", "malformed_payment_intent")
		}
		return PaymentSucceeded{
			eventHeader:     header,
			PaymentIntentID: pi.ID,
			AmountReceived:  pi.AmountReceived,
		}, nil

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, httperr.ErrValidation("payload", "malformed_payment_intent")
		}
		out := PaymentFailed{
			eventHeader:     header,
			PaymentIntentID: pi.ID,
		}
		if pi.LastPaymentError != nil {
			out.FailureMessage = pi.LastPaymentError.Msg
		}
		return out, nil

	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return nil, httperr.ErrValidation("payload", "malformed_charge")
		}
		out := ChargeRefunded{
			eventHeader:    header,
			ChargeID:       ch.ID,
			AmountCharged:  ch.Amount,
			AmountRefunded: ch.AmountRefunded,
		}
		if ch.PaymentIntent != nil {
			out.PaymentIntentID = ch.PaymentIntent.ID
		}
		return out, nil

	case "account.updated", "account.created":
		var acct stripe.Account
		if err := json.Unmarshal(ev.Data.Raw, &acct); err != nil {
			return nil, httperr.ErrValidation("payload", "malformed_account")
		}
		return AccountUpdated{
			eventHeader:    header,
			AccountID:      acct.ID,
			ChargesEnabled: acct.ChargesEnabled,
			PayoutsEnabled: acct.PayoutsEnabled,
		}, nil

	case "account.application.deauthorized":
		out := AccountDeauthorized{eventHeader: header}
		if ev.Account != "" {
			out.AccountID = ev.Account
		}
		return out, nil

	default:
		return UnknownEvent{eventHeader: header}, nil
	}
}

func parseMetadata(md map[string]string) BookingMetadata {
	meta := BookingMetadata{
		GuestName:  md["guest_name"],
		GuestEmail: md["guest_email"],
		GuestPhone: md["guest_phone"],
		Date:       md["date"],
		Notes:      md["notes"],
	}
	meta.BarberID = parseUint(md["barber_id"])
	meta.ServiceID = parseUint(md["service_id"])
	if id := parseUint(md["client_id"]); id != 0 {
		meta.ClientID = &id
	}
	if v := md["price"]; v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			meta.Price = f
		}
	}
	return meta
}

func parseUint(s string) uint {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
