// controllers/invoice.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"salonflow-backend/config"
	"salonflow-backend/models"
	"salonflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateInvoiceInput bills a completed appointment
type CreateInvoiceInput struct {
	AppointmentID uuid.UUID `json:"appointmentId" binding:"required"`
	Tax           float64   `json:"tax" binding:"min=0"` // percent
	PaymentStatus string    `json:"paymentStatus" binding:"required,oneof=paid unpaid partial"`
	PaidAmount    float64   `json:"paidAmount" binding:"min=0"`
	PaymentMethod string    `json:"paymentMethod"`
	Notes         string    `json:"notes"`
}

// UpdateInvoiceInput updates payment details on an invoice. Line items come
// from the appointment snapshot and are not editable.
type UpdateInvoiceInput struct {
	PaymentStatus *string  `json:"paymentStatus" binding:"omitempty,oneof=paid unpaid partial"`
	PaidAmount    *float64 `json:"paidAmount" binding:"omitempty,min=0"`
	PaymentMethod *string  `json:"paymentMethod"`
	Notes         *string  `json:"notes"`
}

// CreateInvoice generates an invoice for a completed appointment and marks it
// billed
func CreateInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var appointment models.Appointment
	if err := config.DB.Preload("Services").First(&appointment, "id = ?", input.AppointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if appointment.Status != models.StatusCompleted {
		utils.RespondWithError(c, http.StatusBadRequest, "Only completed appointments can be billed")
		return
	}
	if appointment.IsBilled {
		utils.RespondWithError(c, http.StatusConflict, "Appointment is already billed")
		return
	}

	// Line items mirror the booking-time snapshot
	var subtotal float64
	var invoiceItems []models.InvoiceItem
	for _, item := range appointment.Services {
		subtotal += item.Price
		invoiceItems = append(invoiceItems, models.InvoiceItem{
			ServiceName: item.ServiceName,
			Quantity:    1,
			UnitPrice:   item.Price,
			TotalPrice:  item.Price,
		})
	}

	total := subtotal - appointment.DiscountAmount + (subtotal * input.Tax / 100)
	if total < 0 {
		total = 0
	}

	invoice := models.Invoice{
		InvoiceNumber: "INV-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6),
		AppointmentID: appointment.ID,
		CustomerID:    appointment.CustomerID,
		InvoiceDate:   time.Now(),
		Subtotal:      subtotal,
		Discount:      appointment.DiscountAmount,
		Tax:           input.Tax,
		Total:         total,
		PaymentStatus: input.PaymentStatus,
		PaidAmount:    input.PaidAmount,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
		Items:         invoiceItems,
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	// Customer stats were already updated when the appointment completed;
	// billing only flips the flag.
	if err := tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
		Update("is_billed", true).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to mark appointment billed")
		return
	}

	tx.Commit()

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices retrieves all invoices
func GetInvoices(c *gin.Context) {
	var invoices []models.Invoice
	if err := config.DB.Preload("Items").
		Order("invoice_date DESC").
		Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves a specific invoice by ID
func GetInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice models.Invoice
	if err := config.DB.Preload("Items").First(&invoice, "id = ?", invoiceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice updates payment details on an existing invoice
func UpdateInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var invoice models.Invoice
	if err := config.DB.Preload("Items").First(&invoice, "id = ?", invoiceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.PaymentStatus != nil {
		invoice.PaymentStatus = *input.PaymentStatus
	}
	if input.PaidAmount != nil {
		invoice.PaidAmount = *input.PaidAmount
	}
	if input.PaymentMethod != nil {
		invoice.PaymentMethod = *input.PaymentMethod
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}

	if err := config.DB.Save(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice removes an unpaid invoice and releases the appointment's
// billed flag
func DeleteInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice models.Invoice
	if err := config.DB.First(&invoice, "id = ?", invoiceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if invoice.PaymentStatus == "paid" {
		utils.RespondWithError(c, http.StatusConflict, "Paid invoices cannot be deleted")
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice items")
		return
	}

	if err := tx.Delete(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}

	if err := tx.Model(&models.Appointment{}).Where("id = ?", invoice.AppointmentID).
		Update("is_billed", false).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
