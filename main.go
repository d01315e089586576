package main

import (
	"fmt"
	"log"
	"os"

	"salonflow-backend/config"
	"salonflow-backend/models"
	"salonflow-backend/routes"
	"salonflow-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Employee{},
		&models.Service{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Feedback{},
	)
}

func main() {
	services.NewNotificationService(config.DB).StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
