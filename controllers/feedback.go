// controllers/feedback.go
package controllers

import (
	"errors"
	"net/http"

	"salonflow-backend/config"
	"salonflow-backend/models"
	"salonflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateFeedbackInput struct {
	CustomerName   string     `json:"customerName" binding:"required"`
	CustomerPhone  string     `json:"customerPhone"`
	AppointmentID  *uuid.UUID `json:"appointmentId"`
	Rating         int        `json:"rating" binding:"required,min=1,max=5"`
	ServiceQuality int        `json:"serviceQuality" binding:"omitempty,min=1,max=5"`
	Comment        string     `json:"comment"`
}

type UpdateFeedbackInput struct {
	IsPublished *bool `json:"isPublished"`
}

// CreateFeedback records customer feedback. This endpoint is public; when a
// phone number matches a known customer the feedback is linked to them.
func CreateFeedback(c *gin.Context) {
	var input CreateFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	feedback := models.Feedback{
		CustomerName:   input.CustomerName,
		AppointmentID:  input.AppointmentID,
		Rating:         input.Rating,
		ServiceQuality: input.ServiceQuality,
		Comment:        input.Comment,
	}

	if input.CustomerPhone != "" {
		var customer models.Customer
		if err := config.DB.Where("phone = ?", input.CustomerPhone).First(&customer).Error; err == nil {
			feedback.CustomerID = &customer.ID
		}
	}

	if err := config.DB.Create(&feedback).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save feedback")
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

// GetFeedback retrieves all feedback entries
func GetFeedback(c *gin.Context) {
	query := config.DB.Order("created_at DESC")
	if c.Query("published") == "true" {
		query = query.Where("is_published = ?", true)
	}

	var feedback []models.Feedback
	if err := query.Find(&feedback).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve feedback")
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// UpdateFeedback toggles publication of a feedback entry
func UpdateFeedback(c *gin.Context) {
	feedbackUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid feedback ID format")
		return
	}

	var input UpdateFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var feedback models.Feedback
	if err := config.DB.First(&feedback, "id = ?", feedbackUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Feedback not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.IsPublished != nil {
		feedback.IsPublished = *input.IsPublished
	}

	if err := config.DB.Save(&feedback).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update feedback")
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// DeleteFeedback removes a feedback entry
func DeleteFeedback(c *gin.Context) {
	feedbackUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid feedback ID format")
		return
	}

	result := config.DB.Where("id = ?", feedbackUUID).Delete(&models.Feedback{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete feedback")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Feedback not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully"})
}
