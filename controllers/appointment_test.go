package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salonflow-backend/config"
	"salonflow-backend/models"
	"salonflow-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAppointmentRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Employee{},
		&models.Service{},
		&models.Appointment{},
		&models.AppointmentService{},
	))
	config.DB = db

	require.NoError(t, db.Create(&models.Service{
		Name: "Hair Cut", Price: 150, Duration: 30, IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&models.Service{
		Name: "Beard Trim", Price: 80, Duration: 15, IsActive: true,
	}).Error)

	ac := NewAppointmentController(services.NewBookingService(db), services.NewNotificationService(db))

	r := gin.New()
	r.POST("/api/appointments", ac.CreateAppointment)
	r.GET("/api/appointments", ac.GetAppointments)
	r.GET("/api/appointments/availability", ac.CheckAvailability)
	r.PUT("/api/appointments/:id", ac.UpdateAppointment)
	r.DELETE("/api/appointments/:id", ac.DeleteAppointment)
	return r, db
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestCreateAppointment_HTTP(t *testing.T) {
	r, db := setupAppointmentRouter(t)

	w := postJSON(t, r, "/api/appointments", gin.H{
		"customerName":  "Asha",
		"customerPhone": "+919876543210",
		"services":      []string{"Hair Cut", "Beard Trim"},
		"date":          futureDate(),
		"time":          "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		DiscountApplied bool `json:"discountApplied"`
		Appointment     struct {
			TotalAmount float64
			Status      string
		} `json:"appointment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.False(t, response.DiscountApplied)
	require.Equal(t, 230.0, response.Appointment.TotalAmount)
	require.Equal(t, models.StatusPending, response.Appointment.Status)

	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestCreateAppointment_HTTPValidation(t *testing.T) {
	r, _ := setupAppointmentRouter(t)

	// Unknown service
	w := postJSON(t, r, "/api/appointments", gin.H{
		"customerName":  "Asha",
		"customerPhone": "+919876543210",
		"services":      []string{"Dragon Taming"},
		"date":          futureDate(),
		"time":          "10:00",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Past date
	w = postJSON(t, r, "/api/appointments", gin.H{
		"customerName":  "Asha",
		"customerPhone": "+919876543210",
		"services":      []string{"Hair Cut"},
		"date":          "2020-01-01",
		"time":          "10:00",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Bad time format
	w = postJSON(t, r, "/api/appointments", gin.H{
		"customerName":  "Asha",
		"customerPhone": "+919876543210",
		"services":      []string{"Hair Cut"},
		"date":          futureDate(),
		"time":          "9am",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAppointment_HTTPSlotConflict(t *testing.T) {
	r, _ := setupAppointmentRouter(t)

	booking := gin.H{
		"customerName":  "Asha",
		"customerPhone": "+919876543210",
		"services":      []string{"Hair Cut"},
		"date":          futureDate(),
		"time":          "10:00",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/api/appointments", booking).Code)
	require.Equal(t, http.StatusConflict, postJSON(t, r, "/api/appointments", booking).Code)

	// Availability endpoint agrees
	path := fmt.Sprintf("/api/appointments/availability?date=%s&time=10:00", futureDate())
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.False(t, response.Available)
}

func putJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateAppointment_RejectedStatusKeepsSchedule(t *testing.T) {
	r, db := setupAppointmentRouter(t)

	w := postJSON(t, r, "/api/appointments", gin.H{
		"customerName":  "Asha",
		"customerPhone": "+919876543210",
		"services":      []string{"Hair Cut"},
		"date":          futureDate(),
		"time":          "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var appointment models.Appointment
	require.NoError(t, db.First(&appointment).Error)
	path := "/api/appointments/" + appointment.ID.String()

	// Unknown status rejects the whole update, reschedule included
	w = putJSON(t, r, path, gin.H{"time": "11:00", "status": "sleeping"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, db.First(&appointment, "id = ?", appointment.ID).Error)
	require.Equal(t, "10:00", appointment.Time)

	// Backward transition rejects the whole update too
	require.NoError(t, db.Model(&appointment).Update("status", models.StatusConfirmed).Error)
	w = putJSON(t, r, path, gin.H{"time": "12:00", "status": models.StatusPending})
	require.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, db.First(&appointment, "id = ?", appointment.ID).Error)
	require.Equal(t, "10:00", appointment.Time)

	// A legal combined update applies both halves
	w = putJSON(t, r, path, gin.H{"time": "11:00", "status": models.StatusInProgress})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&appointment, "id = ?", appointment.ID).Error)
	require.Equal(t, "11:00", appointment.Time)
	require.Equal(t, models.StatusInProgress, appointment.Status)
}

func TestDeleteAppointment_HTTPBilledGuard(t *testing.T) {
	r, db := setupAppointmentRouter(t)

	w := postJSON(t, r, "/api/appointments", gin.H{
		"customerName":  "Asha",
		"customerPhone": "+919876543210",
		"services":      []string{"Hair Cut"},
		"date":          futureDate(),
		"time":          "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var appointment models.Appointment
	require.NoError(t, db.First(&appointment).Error)
	require.NoError(t, db.Model(&appointment).Updates(map[string]interface{}{
		"status":    models.StatusCompleted,
		"is_billed": true,
	}).Error)

	req := httptest.NewRequest(http.MethodDelete, "/api/appointments/"+appointment.ID.String(), nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	require.Equal(t, http.StatusConflict, w2.Code)

	// Unbilled appointments go away fine
	require.NoError(t, db.Model(&appointment).Update("is_billed", false).Error)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodDelete, "/api/appointments/"+appointment.ID.String(), nil))
	require.Equal(t, http.StatusOK, w3.Code)
}
