package routes

import (
	"os"
	"strings"

	"cleanpro-backend/config"
	"cleanpro-backend/controllers"
	"cleanpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
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

	// Public endpoints: the webhook authenticates by signature, the gift
	// checkout is reachable from the marketing site without an account.
	r.POST("/webhooks/stripe", controllers.StripeWebhook)
	r.POST("/gift-certificates/checkout", controllers.CreateGiftCheckout)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer portal routes
		requests := api.Group("/service-requests")
		{
			requests.POST("", controllers.CreateServiceRequest)
			requests.GET("", controllers.GetMyServiceRequests)
		}

		addresses := api.Group("/addresses")
		{
			addresses.POST("", controllers.CreateAddress)
			addresses.GET("", controllers.GetAddresses)
			addresses.PUT("/:id", controllers.UpdateAddress)
			addresses.PUT("/:id/primary", controllers.SetPrimaryAddress)
		}

		api.GET("/appointments", controllers.GetMyAppointments)
		api.GET("/service-history", controllers.GetServiceHistory)

		invoices := api.Group("/invoices")
		{
			invoices.GET("", controllers.GetMyInvoices)
			invoices.GET("/:id", controllers.GetMyInvoice)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", controllers.GetMyNotifications)
			notifications.GET("/unread-count", controllers.GetUnreadCount)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
		}
	}

	admin := r.Group("/admin")
	admin.Use(utils.AuthMiddleware(), utils.AdminRequired())
	{
		customers := admin.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.PUT("/:id/approve", controllers.ApproveCustomer)
			customers.PUT("/:id/suspend", controllers.SuspendCustomer)
		}

		requests := admin.Group("/service-requests")
		{
			requests.GET("", controllers.GetServiceRequests)
			requests.POST("/:id/approve", controllers.ApproveServiceRequest)
			requests.POST("/:id/decline", controllers.DeclineServiceRequest)
		}

		appointments := admin.Group("/appointments")
		{
			appointments.POST("", controllers.CreateAppointment)
			appointments.GET("", controllers.GetAppointments)
			appointments.PUT("/:id", controllers.UpdateAppointment)
		}

		invoices := admin.Group("/invoices")
		{
			invoices.POST("", controllers.CreateInvoice)
			invoices.GET("", controllers.GetInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.PUT("/:id", controllers.UpdateInvoice)
			invoices.POST("/:id/send", controllers.SendInvoice)
		}

		admin.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
