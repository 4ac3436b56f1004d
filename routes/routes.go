package routes

import (
	"salondesk-backend/config"
	"salondesk-backend/controllers"
	"salondesk-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Stylist routes
		stylists := api.Group("/stylists")
		{
			stylists.POST("", controllers.CreateStylist)
			stylists.GET("", controllers.GetStylists)
			stylists.GET("/:id", controllers.GetStylist)
			stylists.PUT("/:id", controllers.UpdateStylist)
			stylists.DELETE("/:id", controllers.DeleteStylist)
		}

		// Service routes
		services := api.Group("/services")
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id", controllers.UpdateService)
			services.DELETE("/:id", controllers.DeleteService)
		}

		// Product routes
		products := api.Group("/products")
		{
			products.POST("", controllers.CreateProduct)
			products.GET("", controllers.GetProducts)
			products.GET("/:id", controllers.GetProduct)
			products.PUT("/:id", controllers.UpdateProduct)
			products.DELETE("/:id", controllers.DeleteProduct)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", controllers.CreateInvoice)
			invoices.GET("", controllers.GetInvoices)
			invoices.GET("/export", controllers.ExportInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.PUT("/:id", controllers.UpdateInvoice)
			invoices.DELETE("/:id", controllers.DeleteInvoice)
			invoices.PUT("/:id/finalize", controllers.FinalizeInvoice)
			invoices.PUT("/:id/send", controllers.SendInvoice)
			invoices.PUT("/:id/cancel", controllers.CancelInvoice)
			invoices.PUT("/:id/void", controllers.VoidInvoice)
			invoices.POST("/:id/payments", controllers.RecordPayment)
			invoices.GET("/:id/payments", controllers.GetPayments)
			invoices.PUT("/:id/payment-status", controllers.SetInvoicePaymentStatus)
		}

		// Quote routes
		quotes := api.Group("/quotes")
		{
			quotes.POST("", controllers.CreateQuote)
			quotes.GET("", controllers.GetQuotes)
			quotes.GET("/:id", controllers.GetQuote)
			quotes.PUT("/:id", controllers.UpdateQuote)
			quotes.DELETE("/:id", controllers.DeleteQuote)
			quotes.PUT("/:id/send", controllers.SendQuote)
			quotes.PUT("/:id/accept", controllers.AcceptQuote)
			quotes.PUT("/:id/decline", controllers.DeclineQuote)
			quotes.POST("/:id/convert", controllers.ConvertQuote)
		}

		// Commission routes
		commissions := api.Group("/commissions")
		{
			commissions.GET("", controllers.GetCommissions)
			commissions.PUT("/:id/approve", controllers.ApproveCommission)
			commissions.POST("/mark-paid", controllers.MarkCommissionsPaid)
		}

		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.POST("", controllers.CreateBooking)
			bookings.GET("", controllers.GetBookings)
			bookings.GET("/export", controllers.ExportBookings)
			bookings.GET("/:id", controllers.GetBooking)
			bookings.PUT("/:id", controllers.UpdateBooking)
			bookings.DELETE("/:id", controllers.DeleteBooking)
		}

		// Pricelist import
		api.POST("/pricelist/import", controllers.ImportPricelist)

		//Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports", reportController.GetReportAnalytics)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Settings routes
		settings := api.Group("/settings")
		{
			settings.GET("", controllers.GetSettings)
			settings.PUT("", controllers.UpdateSettings)
			settings.PUT("/reminder-templates", controllers.UpdateReminderTemplate)
		}
	}

	return r
}
