package controllers

import (
	"net/http"
	"time"

	"salonflow-backend/config"
	"salonflow-backend/models"
	"salonflow-backend/utils"

	"github.com/gin-gonic/gin"
)

type TopService struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// GetDashboardOverview summarizes the day and the month for the front page
func GetDashboardOverview(c *gin.Context) {
	today := time.Now().Format(utils.DateLayout)

	// Today's income: completed appointments only
	var todayIncome float64
	config.DB.Model(&models.Appointment{}).
		Where("date = ? AND status = ?", today, models.StatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&todayIncome)

	// Today's bookings, whatever their state
	var todayAppointments int64
	config.DB.Model(&models.Appointment{}).
		Where("date = ?", today).Count(&todayAppointments)

	var pendingAppointments int64
	config.DB.Model(&models.Appointment{}).
		Where("status = ?", models.StatusPending).Count(&pendingAppointments)

	var totalCustomers int64
	config.DB.Model(&models.Customer{}).
		Where("is_active = ?", true).Count(&totalCustomers)

	// This month's billed revenue
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthlyRevenue float64
	config.DB.Model(&models.Invoice{}).
		Where("invoice_date >= ?", firstOfMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&monthlyRevenue)

	// Top services this month, by booked line items
	monthStart := firstOfMonth.Format(utils.DateLayout)
	var topServices []TopService
	config.DB.Table("appointment_services").
		Select("appointment_services.service_name as name, COUNT(*) as count, SUM(appointment_services.price) as revenue").
		Joins("JOIN appointments ON appointments.id = appointment_services.appointment_id").
		Where("appointments.date >= ? AND appointments.status = ? AND appointments.deleted_at IS NULL", monthStart, models.StatusCompleted).
		Group("appointment_services.service_name").
		Order("revenue DESC").
		Limit(5).
		Scan(&topServices)

	// Next upcoming appointments
	var upcoming []models.Appointment
	config.DB.Preload("Services").
		Where("date >= ? AND status IN ?", today, []string{models.StatusPending, models.StatusConfirmed}).
		Order("date ASC, time ASC").
		Limit(5).
		Find(&upcoming)

	c.JSON(http.StatusOK, gin.H{
		"todayIncome":          todayIncome,
		"todayAppointments":    todayAppointments,
		"pendingAppointments":  pendingAppointments,
		"totalCustomers":       totalCustomers,
		"monthlyRevenue":       monthlyRevenue,
		"topServices":          topServices,
		"upcomingAppointments": upcoming,
	})
}
