// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

// Webhook event types emitted by the billing provider.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// Provider-side subscription statuses carried in event payloads.
const (
	ProviderStatusActive  = "active"
	ProviderStatusPastDue = "past_due"
)

// Event is the signed webhook envelope delivered by the billing provider.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject is the provider object the event refers to: a checkout session,
// a subscription or an invoice, all sharing the identifier fields we consume.
type EventObject struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

// CheckoutSession is the provider response to a checkout-session creation.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PortalSession is the provider response to a billing-portal session creation.
type PortalSession struct {
	URL string `json:"url"`
}
