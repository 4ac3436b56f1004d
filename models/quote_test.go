package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuoteStatusTransitions(t *testing.T) {
	tests := []struct {
		from    QuoteStatus
		to      QuoteStatus
		allowed bool
	}{
		{QuoteStatusDraft, QuoteStatusSent, true},
		{QuoteStatusDraft, QuoteStatusAccepted, false},
		{QuoteStatusSent, QuoteStatusAccepted, true},
		{QuoteStatusSent, QuoteStatusDeclined, true},
		{QuoteStatusSent, QuoteStatusExpired, true},
		{QuoteStatusSent, QuoteStatusConverted, false},
		{QuoteStatusAccepted, QuoteStatusConverted, true},
		{QuoteStatusAccepted, QuoteStatusDeclined, false},
		{QuoteStatusDeclined, QuoteStatusSent, false},
		{QuoteStatusExpired, QuoteStatusAccepted, false},
		{QuoteStatusConverted, QuoteStatusSent, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestQuoteEffectiveStatus(t *testing.T) {
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	t.Run("sent quote past validity reads expired", func(t *testing.T) {
		q := Quote{Status: QuoteStatusSent, ValidUntil: &yesterday}
		assert.Equal(t, QuoteStatusExpired, q.EffectiveStatus(now))
		// stored status is untouched
		assert.Equal(t, QuoteStatusSent, q.Status)
	})

	t.Run("sent quote within validity stays sent", func(t *testing.T) {
		q := Quote{Status: QuoteStatusSent, ValidUntil: &tomorrow}
		assert.Equal(t, QuoteStatusSent, q.EffectiveStatus(now))
	})

	t.Run("no validity date never expires", func(t *testing.T) {
		q := Quote{Status: QuoteStatusSent}
		assert.Equal(t, QuoteStatusSent, q.EffectiveStatus(now))
	})

	t.Run("accepted quote does not expire", func(t *testing.T) {
		q := Quote{Status: QuoteStatusAccepted, ValidUntil: &yesterday}
		assert.Equal(t, QuoteStatusAccepted, q.EffectiveStatus(now))
	})

	t.Run("draft is unaffected by validity", func(t *testing.T) {
		q := Quote{Status: QuoteStatusDraft, ValidUntil: &yesterday}
		assert.Equal(t, QuoteStatusDraft, q.EffectiveStatus(now))
	})
}
