package domain

import (
	"time"
)

// InvoiceRecord is a minimal local mirror of a provider invoice.
type InvoiceRecord struct {
	ID               string    `firestore:"id" json:"id"`
	Status           string    `firestore:"status" json:"status"`
	SubscriptionID   string    `firestore:"subscriptionId" json:"subscriptionId"`
	AmountDue        int64     `firestore:"amountDue" json:"amountDue"`
	AmountPaid       int64     `firestore:"amountPaid" json:"amountPaid"`
	Currency         string    `firestore:"currency" json:"currency"`
	HostedInvoiceURL string    `firestore:"hostedInvoiceUrl" json:"hostedInvoiceUrl"`
	UpdatedAt        time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// InvoiceSummary is the interactive-endpoint view of a proration
// invoice.
type InvoiceSummary struct {
	ID               string `json:"id,omitempty"`
	AmountDue        int64  `json:"amountDue"`
	Currency         string `json:"currency"`
	Status           string `json:"status,omitempty"`
	HostedInvoiceURL string `json:"hostedInvoiceUrl,omitempty"`
}
