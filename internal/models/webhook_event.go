package models

import "time"

// WebhookEvent is the durable dedupe record for provider deliveries. The
// unique (provider, provider_event_id) index makes a replayed delivery fail
// the insert, which the reconciler treats as "already processed".
type WebhookEvent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Provider        string `gorm:"size:20;not null;uniqueIndex:ux_webhook_events_provider_event,priority:1" json:"provider"`
	ProviderEventID string `gorm:"size:191;not null;uniqueIndex:ux_webhook_events_provider_event,priority:2" json:"provider_event_id"`
	EventType       string `gorm:"size:100;not null;index" json:"event_type"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
