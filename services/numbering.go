// services/numbering.go
package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document numbers are sequential per salon and year, formatted as
// <prefix>-<year>-<zero-padded sequence>, e.g. INV-2026-00042. The
// caller holds the transaction; a unique index on the number column is
// the guard against two concurrent finalizations racing to the same
// sequence, and callers retry on a conflict.

// NextInvoiceNumber returns the next invoice number for the salon.
func NextInvoiceNumber(tx *gorm.DB, salonID uuid.UUID, prefix string, year int) (string, error) {
	return nextDocumentNumber(tx, "invoices", "invoice_number", salonID, prefix, year)
}

// NextQuoteNumber returns the next quote number for the salon.
func NextQuoteNumber(tx *gorm.DB, salonID uuid.UUID, prefix string, year int) (string, error) {
	return nextDocumentNumber(tx, "quotes", "quote_number", salonID, prefix, year)
}

func nextDocumentNumber(tx *gorm.DB, table, column string, salonID uuid.UUID, prefix string, year int) (string, error) {
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)

	// The sequence must be compared numerically: a string MAX would sort
	// 100000 below 99999 once the zero padding overflows.
	var numbers []string
	err := tx.Table(table).
		Where("salon_id = ? AND "+column+" LIKE ?", salonID, pattern).
		Pluck(column, &numbers).Error
	if err != nil {
		return "", err
	}

	seq := 0
	for _, number := range numbers {
		if n, err := parseSequence(number); err == nil && n > seq {
			seq = n
		}
	}

	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq+1), nil
}

func parseSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("malformed document number: %s", number)
	}
	return strconv.Atoi(number[idx+1:])
}

// IsUniqueViolation reports whether err is the SQLite unique-index
// conflict raised when two requests race for the same number.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
