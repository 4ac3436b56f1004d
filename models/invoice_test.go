package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceStatusTransitions(t *testing.T) {
	tests := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceStatusDraft, InvoiceStatusFinalized, true},
		{InvoiceStatusDraft, InvoiceStatusCancelled, true},
		{InvoiceStatusDraft, InvoiceStatusSent, false},
		{InvoiceStatusDraft, InvoiceStatusVoid, false},
		{InvoiceStatusFinalized, InvoiceStatusSent, true},
		{InvoiceStatusFinalized, InvoiceStatusVoid, true},
		{InvoiceStatusFinalized, InvoiceStatusDraft, false},
		{InvoiceStatusFinalized, InvoiceStatusCancelled, false},
		{InvoiceStatusSent, InvoiceStatusVoid, true},
		{InvoiceStatusSent, InvoiceStatusFinalized, false},
		{InvoiceStatusCancelled, InvoiceStatusDraft, false},
		{InvoiceStatusVoid, InvoiceStatusSent, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestInvoiceStatusValidate(t *testing.T) {
	assert.NoError(t, InvoiceStatusDraft.Validate())
	assert.NoError(t, InvoiceStatusVoid.Validate())
	assert.Error(t, InvoiceStatus("archived").Validate())
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		paid  float64
		want  PaymentStatus
	}{
		{"nothing paid", 1242, 0, PaymentStatusUnpaid},
		{"partially paid", 1242, 500, PaymentStatusPartial},
		{"exactly paid", 1242, 1242, PaymentStatusPaid},
		{"overpaid still reads paid", 1242, 1300, PaymentStatusPaid},
		{"zero-total invoice stays unpaid", 0, 0, PaymentStatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(tt.total, tt.paid))
		})
	}
}

func TestInvoiceIsEditable(t *testing.T) {
	inv := Invoice{Status: InvoiceStatusDraft}
	assert.True(t, inv.IsEditable())

	inv.Status = InvoiceStatusFinalized
	assert.False(t, inv.IsEditable())
}
