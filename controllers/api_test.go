package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiClient struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func setupAPI(t *testing.T) *apiClient {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Salon{},
		&models.User{},
		&models.Customer{},
		&models.Stylist{},
		&models.Service{},
		&models.Product{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.Commission{},
		&models.Quote{},
		&models.QuoteItem{},
		&models.Booking{},
		&models.ReminderTemplate{},
		&models.ReminderLog{},
	))
	config.DB = db

	c := &apiClient{t: t, r: routes.SetupRouter()}

	w := c.do(http.MethodPost, "/auth/register", gin.H{
		"email":     "owner@example.com",
		"phone":     "0831234567",
		"name":      "Owner",
		"password":  "password123",
		"salonName": "Test Salon",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c.token, _ = decode(t, w)["token"].(string)
	require.NotEmpty(t, c.token)

	return c
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func payload(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := decode(t, w)["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return d
}

// seedCatalog registers a customer, stylist, one service at 1000 and
// one retail product at 200, and turns on tax at 15%.
func (c *apiClient) seedCatalog(t *testing.T) (customerID, stylistID, serviceID, productID string) {
	t.Helper()

	w := c.do(http.MethodPut, "/api/settings", gin.H{"taxRegistered": true, "taxRate": 15})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/customers", gin.H{"name": "Jane", "phone": "0839876543"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customerID = payload(t, w)["ID"].(string)

	w = c.do(http.MethodPost, "/api/stylists", gin.H{"name": "Sam"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stylistID = payload(t, w)["ID"].(string)

	w = c.do(http.MethodPost, "/api/services", gin.H{"name": "Full Colour", "price": 1000, "duration": 90})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	serviceID = payload(t, w)["ID"].(string)

	w = c.do(http.MethodPost, "/api/products", gin.H{"name": "Shampoo", "type": "retail", "price": 200, "stock": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productID = payload(t, w)["ID"].(string)

	return
}

func TestAuthRequired(t *testing.T) {
	c := setupAPI(t)
	c.token = ""
	w := c.do(http.MethodGet, "/api/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin(t *testing.T) {
	c := setupAPI(t)

	c.token = ""
	w := c.do(http.MethodPost, "/auth/login", gin.H{"identifier": "owner@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["token"])

	w = c.do(http.MethodPost, "/auth/login", gin.H{"identifier": "owner@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// phone works as the identifier too
	w = c.do(http.MethodPost, "/auth/login", gin.H{"identifier": "0831234567", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvoiceLifecycle(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, productID := c.seedCatalog(t)

	w := c.do(http.MethodPost, "/api/invoices", gin.H{
		"customerId":    customerID,
		"stylistId":     stylistID,
		"discountType":  "percentage",
		"discountValue": 10,
		"items": []gin.H{
			{"itemType": "service", "catalogId": serviceID, "quantity": 1},
			{"itemType": "product", "catalogId": productID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := payload(t, w)
	invoiceID := inv["ID"].(string)

	assert.Equal(t, "draft", inv["Status"])
	assert.Equal(t, 1000.0, inv["ServicesSubtotal"])
	assert.Equal(t, 200.0, inv["ProductsSubtotal"])
	assert.Equal(t, 1200.0, inv["Subtotal"])
	assert.Equal(t, 120.0, inv["DiscountAmount"])
	assert.Equal(t, 162.0, inv["TaxAmount"])
	assert.Equal(t, 1242.0, inv["Total"])
	assert.Nil(t, inv["InvoiceNumber"])

	// drafts carry no number and no commissions yet
	w = c.do(http.MethodGet, "/api/commissions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])

	// finalize assigns the number and cuts commissions
	w = c.do(http.MethodPut, "/api/invoices/"+invoiceID+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	finalized := payload(t, w)
	assert.Equal(t, "finalized", finalized["Status"])
	assert.Equal(t, fmt.Sprintf("INV-%d-00001", time.Now().Year()), finalized["InvoiceNumber"])
	// 10% of the 1000 service + 5% of the 200 retail product
	assert.Equal(t, 110.0, finalized["CommissionTotal"])

	// finalized invoices are frozen
	w = c.do(http.MethodPut, "/api/invoices/"+invoiceID, gin.H{"notes": "late edit"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = c.do(http.MethodDelete, "/api/invoices/"+invoiceID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = c.do(http.MethodPut, "/api/invoices/"+invoiceID+"/finalize", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// partial payment
	w = c.do(http.MethodPost, "/api/invoices/"+invoiceID+"/payments", gin.H{"amount": 500, "method": "cash"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	paid := payload(t, w)["invoice"].(map[string]any)
	assert.Equal(t, "partial", paid["PaymentStatus"])
	assert.Equal(t, 742.0, paid["AmountDue"])

	// settle the rest
	w = c.do(http.MethodPost, "/api/invoices/"+invoiceID+"/payments", gin.H{"amount": 742, "method": "card"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	paid = payload(t, w)["invoice"].(map[string]any)
	assert.Equal(t, "paid", paid["PaymentStatus"])
	assert.Equal(t, 0.0, paid["AmountDue"])

	// the ledger holds both entries
	w = c.do(http.MethodGet, "/api/invoices/"+invoiceID+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)
}

func TestDraftInvoiceCanBeDeleted(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, _ := c.seedCatalog(t)

	w := c.do(http.MethodPost, "/api/invoices", gin.H{
		"customerId": customerID,
		"stylistId":  stylistID,
		"items":      []gin.H{{"itemType": "service", "catalogId": serviceID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invoiceID := payload(t, w)["ID"].(string)

	w = c.do(http.MethodDelete, "/api/invoices/"+invoiceID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/api/invoices/"+invoiceID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommissionMarkPaidGatedOnInvoicePayment(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, _ := c.seedCatalog(t)

	w := c.do(http.MethodPost, "/api/invoices", gin.H{
		"customerId": customerID,
		"stylistId":  stylistID,
		"items":      []gin.H{{"itemType": "service", "catalogId": serviceID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invoiceID := payload(t, w)["ID"].(string)

	w = c.do(http.MethodPut, "/api/invoices/"+invoiceID+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/commissions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w)["data"].([]any)
	require.Len(t, records, 1)
	commissionID := records[0].(map[string]any)["ID"].(string)

	// the invoice is still unpaid, so the payout is skipped
	w = c.do(http.MethodPost, "/api/commissions/mark-paid", gin.H{"commissionIds": []string{commissionID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)
	assert.Equal(t, 0.0, result["updated"])
	assert.Equal(t, 1.0, result["skipped"])

	// settle the invoice, then the payout goes through
	w = c.do(http.MethodPost, "/api/invoices/"+invoiceID+"/payments", gin.H{"amount": 1150, "method": "cash"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/commissions/mark-paid", gin.H{"commissionIds": []string{commissionID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decode(t, w)
	assert.Equal(t, 1.0, result["updated"])
	assert.Equal(t, 0.0, result["skipped"])
	assert.NotEmpty(t, result["paymentReference"])
}

func TestQuoteFlow(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, productID := c.seedCatalog(t)

	validUntil := time.Now().AddDate(0, 0, 14)
	w := c.do(http.MethodPost, "/api/quotes", gin.H{
		"customerId":    customerID,
		"stylistId":     stylistID,
		"validUntil":    validUntil,
		"discountType":  "percentage",
		"discountValue": 10,
		"items": []gin.H{
			{"itemType": "service", "catalogId": serviceID, "quantity": 1},
			{"itemType": "product", "catalogId": productID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quote := payload(t, w)
	quoteID := quote["ID"].(string)
	assert.Equal(t, 1242.0, quote["Total"])

	// drafts cannot be accepted
	w = c.do(http.MethodPut, "/api/quotes/"+quoteID+"/accept", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPut, "/api/quotes/"+quoteID+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sent := payload(t, w)
	assert.Equal(t, fmt.Sprintf("QUO-%d-00001", time.Now().Year()), sent["QuoteNumber"])

	w = c.do(http.MethodPut, "/api/quotes/"+quoteID+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/quotes/"+quoteID+"/convert", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	converted := payload(t, w)
	invoice := converted["invoice"].(map[string]any)
	assert.Equal(t, "draft", invoice["Status"])
	assert.Equal(t, 1242.0, invoice["Total"])
	assert.Equal(t, quoteID, invoice["QuoteID"])
	assert.Equal(t, "converted", converted["quote"].(map[string]any)["Status"].(string))

	// a quote converts exactly once
	w = c.do(http.MethodPost, "/api/quotes/"+quoteID+"/convert", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuoteList(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, _ := c.seedCatalog(t)

	newQuote := func(validUntil time.Time) string {
		w := c.do(http.MethodPost, "/api/quotes", gin.H{
			"customerId": customerID,
			"stylistId":  stylistID,
			"validUntil": validUntil,
			"items":      []gin.H{{"itemType": "service", "catalogId": serviceID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return payload(t, w)["ID"].(string)
	}

	// an already-expired sent quote, then a fresh draft
	expiredID := newQuote(time.Now().AddDate(0, 0, -1))
	w := c.do(http.MethodPut, "/api/quotes/"+expiredID+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	draftID := newQuote(time.Now().AddDate(0, 0, 14))

	// newest first, and the sent row reads back expired
	w = c.do(http.MethodGet, "/api/quotes", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quotes := decode(t, w)["data"].([]any)
	require.Len(t, quotes, 2)
	first := quotes[0].(map[string]any)
	second := quotes[1].(map[string]any)
	assert.Equal(t, draftID, first["ID"])
	assert.Equal(t, "draft", first["Status"])
	assert.Equal(t, expiredID, second["ID"])
	assert.Equal(t, "expired", second["Status"])

	// the status filter matches the derived status, not the stored one
	w = c.do(http.MethodGet, "/api/quotes?status=expired", nil)
	require.Equal(t, http.StatusOK, w.Code)
	quotes = decode(t, w)["data"].([]any)
	require.Len(t, quotes, 1)
	assert.Equal(t, expiredID, quotes[0].(map[string]any)["ID"])

	w = c.do(http.MethodGet, "/api/quotes?status=sent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])
}

func TestExpiredQuote(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, _ := c.seedCatalog(t)

	validUntil := time.Now().AddDate(0, 0, -1)
	w := c.do(http.MethodPost, "/api/quotes", gin.H{
		"customerId": customerID,
		"stylistId":  stylistID,
		"validUntil": validUntil,
		"items":      []gin.H{{"itemType": "service", "catalogId": serviceID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quoteID := payload(t, w)["ID"].(string)

	w = c.do(http.MethodPut, "/api/quotes/"+quoteID+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the row still says sent, but it reads back expired
	w = c.do(http.MethodGet, "/api/quotes/"+quoteID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "expired", payload(t, w)["Status"])

	w = c.do(http.MethodPut, "/api/quotes/"+quoteID+"/accept", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoyaltyPointsDiscount(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, productID := c.seedCatalog(t)

	newInvoice := func(points float64) string {
		w := c.do(http.MethodPost, "/api/invoices", gin.H{
			"customerId":    customerID,
			"stylistId":     stylistID,
			"discountType":  "loyalty_points",
			"discountValue": points,
			"items":         []gin.H{{"itemType": "service", "catalogId": serviceID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return payload(t, w)["ID"].(string)
	}

	// customer has no points yet
	invoiceID := newInvoice(500)
	w := c.do(http.MethodPut, "/api/invoices/"+invoiceID+"/finalize", nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// top up and retry on a fresh draft
	w = c.do(http.MethodPut, "/api/customers/"+customerID, gin.H{"loyaltyPoints": 600})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	invoiceID = newInvoice(500)
	w = c.do(http.MethodPut, "/api/invoices/"+invoiceID+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	// 500 points redeem for 50 off the 1000 service, then 15% tax
	assert.Equal(t, 1092.5, payload(t, w)["Total"])

	// the redeemed points are burned
	w = c.do(http.MethodGet, "/api/customers/"+customerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100.0, payload(t, w)["LoyaltyPoints"])

	// a clamped discount burns only the points it redeemed: 5000 points
	// are worth 500 but the 200 product caps the discount at 200, so
	// 2000 points leave the balance
	w = c.do(http.MethodPut, "/api/customers/"+customerID, gin.H{"loyaltyPoints": 2500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/invoices", gin.H{
		"customerId":    customerID,
		"stylistId":     stylistID,
		"discountType":  "loyalty_points",
		"discountValue": 5000,
		"items":         []gin.H{{"itemType": "product", "catalogId": productID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clamped := payload(t, w)
	assert.Equal(t, 200.0, clamped["DiscountAmount"])
	assert.Equal(t, 0.0, clamped["Total"])

	w = c.do(http.MethodPut, "/api/invoices/"+clamped["ID"].(string)+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/customers/"+customerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 500.0, payload(t, w)["LoyaltyPoints"])
}

func TestBookingFlow(t *testing.T) {
	c := setupAPI(t)
	customerID, stylistID, serviceID, _ := c.seedCatalog(t)

	start := time.Now().Add(24 * time.Hour)
	w := c.do(http.MethodPost, "/api/bookings", gin.H{
		"customerId": customerID,
		"stylistId":  stylistID,
		"serviceId":  serviceID,
		"startTime":  start,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := payload(t, w)
	bookingID := booking["ID"].(string)
	assert.Equal(t, "scheduled", booking["Status"])
	// duration copied from the service
	assert.Equal(t, 90.0, booking["Duration"])

	w = c.do(http.MethodPut, "/api/bookings/"+bookingID, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", payload(t, w)["Status"])
}
