package payments

import "context"

// CheckoutInput describes the hosted checkout the booking flow requests
// before the booking row exists. Metadata travels back on the webhook and
// feeds the reconciler's late-creation fallback.
type CheckoutInput struct {
	ServiceName    string
	AmountCents    int64
	FeeCents       int64
	Currency       string
	CustomerEmail  string
	PayoutAccount  string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	IdempotencyKey string
}

type CheckoutSession struct {
	SessionID       string
	PaymentIntentID string
	URL             string
}

type AccountStatus struct {
	ChargesEnabled bool
	PayoutsEnabled bool
}

// Provider is the outbound face of the payment processor. The inbound face
// (webhooks) lives in the settlement package.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error)
	CreateConnectedAccount(ctx context.Context, email string) (string, error)
	GetAccountStatus(ctx context.Context, accountID string) (AccountStatus, error)
}
