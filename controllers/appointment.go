// controllers/appointment.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"salonflow-backend/config"
	"salonflow-backend/models"
	"salonflow-backend/services"
	"salonflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentController wires the booking engine and the notifier into HTTP.
type AppointmentController struct {
	Bookings *services.BookingService
	Notifier *services.NotificationService
}

func NewAppointmentController(bookings *services.BookingService, notifier *services.NotificationService) *AppointmentController {
	return &AppointmentController{Bookings: bookings, Notifier: notifier}
}

// BookAppointmentInput defines the expected JSON structure for booking
type BookAppointmentInput struct {
	CustomerName  string     `json:"customerName" binding:"required"`
	CustomerPhone string     `json:"customerPhone" binding:"required"`
	CustomerEmail string     `json:"customerEmail"`
	Services      []string   `json:"services" binding:"required,min=1"`
	Date          string     `json:"date" binding:"required"`
	Time          string     `json:"time" binding:"required"`
	EmployeeID    *uuid.UUID `json:"employeeId"`
	Notes         string     `json:"notes"`
}

// UpdateAppointmentInput defines the expected JSON structure for updating an
// appointment. Status changes run through the lifecycle rules; schedule
// changes re-check slot availability excluding the appointment itself.
type UpdateAppointmentInput struct {
	Date       *string    `json:"date"`
	Time       *string    `json:"time"`
	EmployeeID *uuid.UUID `json:"employeeId"`
	Status     *string    `json:"status"`
	Notes      *string    `json:"notes"`
}

// CreateAppointment books a new appointment
func (ac *AppointmentController) CreateAppointment(c *gin.Context) {
	var input BookAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.CustomerPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if !utils.ValidateTime(input.Time) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid time format, expected HH:MM")
		return
	}
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}
	if date.Before(utils.BeginningOfDay(time.Now())) {
		utils.RespondWithError(c, http.StatusBadRequest, "Appointment date cannot be in the past")
		return
	}

	if input.EmployeeID != nil {
		var employee models.Employee
		if err := config.DB.First(&employee, "id = ?", *input.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Employee not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	appointment, discountApplied, err := ac.Bookings.BookAppointment(services.BookingInput{
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CustomerEmail: input.CustomerEmail,
		ServiceNames:  input.Services,
		Date:          input.Date,
		Time:          input.Time,
		EmployeeID:    input.EmployeeID,
		Notes:         input.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidService):
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrSlotConflict):
			utils.RespondWithError(c, http.StatusConflict, "Time slot is not available")
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		}
		return
	}

	ac.Notifier.SendBookingConfirmation(appointment)

	response := gin.H{
		"appointment":     appointment,
		"discountApplied": discountApplied,
	}
	if discountApplied {
		response["message"] = appointment.DiscountReason
	}

	c.JSON(http.StatusCreated, response)
}

// CheckAvailability reports whether a slot is free
func (ac *AppointmentController) CheckAvailability(c *gin.Context) {
	date := c.Query("date")
	timeStr := c.Query("time")
	if date == "" || timeStr == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "date and time query parameters are required")
		return
	}

	var employeeID *uuid.UUID
	if raw := c.Query("employeeId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
			return
		}
		employeeID = &parsed
	}

	available, err := ac.Bookings.IsSlotAvailable(date, timeStr, employeeID, nil)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to check availability")
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}

// GetAppointments retrieves appointments, optionally filtered by date, status
// or employee
func (ac *AppointmentController) GetAppointments(c *gin.Context) {
	query := config.DB.Preload("Services")

	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if raw := c.Query("employeeId"); raw != "" {
		employeeUUID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
			return
		}
		query = query.Where("employee_id = ?", employeeUUID)
	}

	var appointments []models.Appointment
	if err := query.Order("date DESC, time ASC").Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a specific appointment by ID
func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.Preload("Services").First(&appointment, "id = ?", appointmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointment reschedules an appointment and/or moves it through the
// lifecycle
func (ac *AppointmentController) UpdateAppointment(c *gin.Context) {
	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if appointment.Status == models.StatusCompleted && appointment.IsBilled {
		utils.RespondWithError(c, http.StatusConflict, "Completed and billed appointments cannot be modified")
		return
	}

	// Validate the status change before persisting anything, so a rejected
	// status never leaves a half-applied reschedule behind.
	statusChange := input.Status != nil && *input.Status != appointment.Status
	if statusChange {
		if !models.IsValidStatus(*input.Status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown appointment status: "+*input.Status)
			return
		}
		if err := services.ValidateTransition(appointment.Status, *input.Status); err != nil {
			utils.RespondWithError(c, http.StatusConflict, err.Error())
			return
		}
	}

	if input.Date != nil || input.Time != nil || input.EmployeeID != nil {
		if models.IsTerminalStatus(appointment.Status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Cannot reschedule a "+appointment.Status+" appointment")
			return
		}

		newDate := appointment.Date
		newTime := appointment.Time
		newEmployee := appointment.EmployeeID

		if input.Date != nil {
			if _, err := utils.ParseDate(*input.Date); err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
				return
			}
			newDate = *input.Date
		}
		if input.Time != nil {
			if !utils.ValidateTime(*input.Time) {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid time format, expected HH:MM")
				return
			}
			newTime = *input.Time
		}
		if input.EmployeeID != nil {
			var employee models.Employee
			if err := config.DB.First(&employee, "id = ?", *input.EmployeeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					utils.RespondWithError(c, http.StatusBadRequest, "Employee not found")
				} else {
					utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				}
				return
			}
			newEmployee = input.EmployeeID
		}

		available, err := ac.Bookings.IsSlotAvailable(newDate, newTime, newEmployee, &appointment.ID)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to check availability")
			return
		}
		if !available {
			utils.RespondWithError(c, http.StatusConflict, "Time slot is not available")
			return
		}

		appointment.Date = newDate
		appointment.Time = newTime
		appointment.EmployeeID = newEmployee
	}

	if input.Notes != nil {
		appointment.Notes = *input.Notes
	}

	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	if statusChange {
		if _, err := ac.Bookings.UpdateStatus(appointment.ID, *input.Status); err != nil {
			switch {
			case errors.Is(err, services.ErrUnknownStatus):
				utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			case errors.Is(err, services.ErrInvalidTransition):
				utils.RespondWithError(c, http.StatusConflict, err.Error())
			default:
				utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update status")
			}
			return
		}
	}

	config.DB.Preload("Services").First(&appointment, "id = ?", appointment.ID)
	c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment removes an appointment unless it is completed and billed
func (ac *AppointmentController) DeleteAppointment(c *gin.Context) {
	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	if err := ac.Bookings.DeleteAppointment(appointmentUUID); err != nil {
		switch {
		case errors.Is(err, services.ErrAppointmentBilled):
			utils.RespondWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete appointment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
