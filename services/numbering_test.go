package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"salondesk-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Invoice{}, &models.Quote{}))
	return db
}

func seedInvoice(t *testing.T, db *gorm.DB, salonID uuid.UUID, number string) {
	t.Helper()
	inv := models.Invoice{
		SalonID:         salonID,
		CreatedByUserID: uuid.New(),
		CustomerID:      uuid.New(),
		StylistID:       uuid.New(),
		InvoiceNumber:   &number,
		ServiceDate:     time.Now(),
		Status:          models.InvoiceStatusFinalized,
	}
	require.NoError(t, db.Create(&inv).Error)
}

func TestNextInvoiceNumber(t *testing.T) {
	db := testDB(t)
	salonID := uuid.New()

	t.Run("first number of the year starts at one", func(t *testing.T) {
		got, err := NextInvoiceNumber(db, salonID, "INV", 2026)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00001", got)
	})

	t.Run("sequence continues from the highest assigned", func(t *testing.T) {
		seedInvoice(t, db, salonID, "INV-2026-00001")
		seedInvoice(t, db, salonID, "INV-2026-00041")

		got, err := NextInvoiceNumber(db, salonID, "INV", 2026)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00042", got)
	})

	t.Run("sequence resets per year", func(t *testing.T) {
		got, err := NextInvoiceNumber(db, salonID, "INV", 2027)
		require.NoError(t, err)
		assert.Equal(t, "INV-2027-00001", got)
	})

	t.Run("sequence past the padding width keeps counting", func(t *testing.T) {
		wide := uuid.New()
		// 100000 sorts below 99999 as a string; the numeric parse must win
		seedInvoice(t, db, wide, "INV-2026-99999")
		seedInvoice(t, db, wide, "INV-2026-100000")

		got, err := NextInvoiceNumber(db, wide, "INV", 2026)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-100001", got)
	})

	t.Run("sequence is scoped per salon", func(t *testing.T) {
		otherSalon := uuid.New()
		got, err := NextInvoiceNumber(db, otherSalon, "INV", 2026)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00001", got)
		// the same number already exists for the first salon
		seedInvoice(t, db, otherSalon, got)
	})
}

func TestNextQuoteNumber(t *testing.T) {
	db := testDB(t)
	salonID := uuid.New()

	got, err := NextQuoteNumber(db, salonID, "QUO", 2026)
	require.NoError(t, err)
	assert.Equal(t, "QUO-2026-00001", got)
}

func TestUniqueIndexGuardsDuplicateNumbers(t *testing.T) {
	db := testDB(t)
	salonID := uuid.New()
	seedInvoice(t, db, salonID, "INV-2026-00007")

	number := "INV-2026-00007"
	dup := models.Invoice{
		SalonID:         salonID,
		CreatedByUserID: uuid.New(),
		CustomerID:      uuid.New(),
		StylistID:       uuid.New(),
		InvoiceNumber:   &number,
		ServiceDate:     time.Now(),
		Status:          models.InvoiceStatusFinalized,
	}
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("database is locked")))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: invoices.invoice_number")))
}

func TestParseSequence(t *testing.T) {
	n, err := parseSequence("INV-2026-00042")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = parseSequence("garbage")
	assert.Error(t, err)
}
