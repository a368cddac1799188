package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/routes"
	"cleanpro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Profile{},
		&models.ServiceAddress{},
		&models.ServiceRequest{},
		&models.Appointment{},
		&models.ServiceHistory{},
		&models.Invoice{},
		&models.CustomerNotification{},
		&models.GiftCertificate{},
		&models.ReminderLog{},
	)

	services.InitStripe()
	services.InitMailer()
	seedAdmin()
}

func main() {

	reminders := services.NewReminderService(config.DB)
	reminders.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

// seedAdmin bootstraps the first back-office account from the environment
// when the profiles table has no admin yet.
func seedAdmin() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var existing models.Profile
	err := config.DB.Where("role = ?", models.RoleAdmin).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for admin account: %v", err)
		return
	}

	admin := models.Profile{
		Email:         email,
		Password:      password, // Hashed in BeforeCreate hook
		FullName:      "CleanPro Admin",
		Role:          models.RoleAdmin,
		AccountStatus: models.StatusActive,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin account: %v", err)
		return
	}
	log.Printf("Seeded admin account %s", email)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
