package services

import (
	"errors"
	"fmt"
	"testing"

	"salonflow-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Employee{},
		&models.Service{},
		&models.Appointment{},
		&models.AppointmentService{},
	))

	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	catalog := []models.Service{
		{Name: "Hair Cut", Price: 150, Duration: 30, IsActive: true},
		{Name: "Beard Trim", Price: 80, Duration: 15, IsActive: true},
		{Name: "Hair Color", Price: 500, Duration: 90, IsActive: true},
	}
	for i := range catalog {
		require.NoError(t, db.Create(&catalog[i]).Error)
	}
}

func seedEmployee(t *testing.T, db *gorm.DB, name string) *models.Employee {
	t.Helper()

	employee := models.Employee{Name: name, IsActive: true}
	require.NoError(t, db.Create(&employee).Error)
	return &employee
}

func bookingFor(phone, date, timeStr string, names ...string) BookingInput {
	return BookingInput{
		CustomerName:  "Test Customer",
		CustomerPhone: phone,
		ServiceNames:  names,
		Date:          date,
		Time:          timeStr,
	}
}

func TestBookAppointment_NewCustomer(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	appointment, discountApplied, err := svc.BookAppointment(
		bookingFor("+919800000001", "2026-09-10", "10:00", "Hair Cut", "Beard Trim"))
	require.NoError(t, err)
	require.False(t, discountApplied)

	require.Equal(t, models.StatusPending, appointment.Status)
	require.Equal(t, 230.0, appointment.TotalAmount)
	require.Equal(t, models.DiscountNone, appointment.DiscountType)
	require.Equal(t, 0.0, appointment.DiscountAmount)
	require.Equal(t, 45, appointment.TotalDuration)
	require.Len(t, appointment.Services, 2)

	var customer models.Customer
	require.NoError(t, db.Where("phone = ?", "+919800000001").First(&customer).Error)
	require.Equal(t, 0, customer.TotalVisits)
	require.Equal(t, customer.ID, appointment.CustomerID)
}

func TestBookAppointment_LoyaltyDiscount(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	customer := models.Customer{Name: "Regular", Phone: "+919800000002", TotalVisits: 4, IsActive: true}
	require.NoError(t, db.Create(&customer).Error)

	appointment, discountApplied, err := svc.BookAppointment(
		bookingFor(customer.Phone, "2026-09-10", "11:00", "Hair Cut", "Beard Trim"))
	require.NoError(t, err)
	require.True(t, discountApplied)

	// The cheapest requested service is free on the 5th visit
	require.Equal(t, models.DiscountLoyalty, appointment.DiscountType)
	require.Equal(t, 80.0, appointment.DiscountAmount)
	require.Equal(t, 150.0, appointment.TotalAmount)
	require.NotEmpty(t, appointment.DiscountReason)
}

func TestBookAppointment_LoyaltyEligibility(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	cases := []struct {
		visits   int
		eligible bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{3, false},
		{4, true},
		{5, false},
		{8, false},
		{9, true},
		{10, false},
		{14, true},
	}

	for i, tc := range cases {
		phone := fmt.Sprintf("+9198000001%02d", i)
		customer := models.Customer{Name: "C", Phone: phone, TotalVisits: tc.visits, IsActive: true}
		require.NoError(t, db.Create(&customer).Error)

		timeStr := fmt.Sprintf("%02d:00", 8+i)
		appointment, discountApplied, err := svc.BookAppointment(
			bookingFor(phone, "2026-09-11", timeStr, "Hair Cut"))
		require.NoError(t, err, "visits=%d", tc.visits)
		require.Equal(t, tc.eligible, discountApplied, "visits=%d", tc.visits)

		if tc.eligible {
			require.Equal(t, models.DiscountLoyalty, appointment.DiscountType)
			require.Equal(t, 150.0, appointment.DiscountAmount)
			require.Equal(t, 0.0, appointment.TotalAmount)
		} else {
			require.Equal(t, models.DiscountNone, appointment.DiscountType)
			require.Equal(t, 150.0, appointment.TotalAmount)
		}

		// The invariant holds either way
		require.GreaterOrEqual(t, appointment.TotalAmount, 0.0)
	}
}

func TestBookAppointment_InvalidService(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	_, _, err := svc.BookAppointment(
		bookingFor("+919800000003", "2026-09-10", "12:00", "Hair Cut", "Dragon Taming"))
	require.ErrorIs(t, err, ErrInvalidService)
	require.Contains(t, err.Error(), "Dragon Taming")

	// Nothing persisted: neither the appointment nor the customer
	var appointments, customers int64
	db.Model(&models.Appointment{}).Count(&appointments)
	db.Model(&models.Customer{}).Count(&customers)
	require.Zero(t, appointments)
	require.Zero(t, customers)
}

func TestBookAppointment_SlotConflict(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)
	employee := seedEmployee(t, db, "E1")

	first := bookingFor("+919800000004", "2026-06-01", "10:00", "Hair Cut")
	first.EmployeeID = &employee.ID
	appointment, _, err := svc.BookAppointment(first)
	require.NoError(t, err)

	second := bookingFor("+919800000005", "2026-06-01", "10:00", "Beard Trim")
	second.EmployeeID = &employee.ID
	_, _, err = svc.BookAppointment(second)
	require.ErrorIs(t, err, ErrSlotConflict)

	// A booking without an employee collides with any active appointment in
	// the slot
	_, _, err = svc.BookAppointment(bookingFor("+919800000006", "2026-06-01", "10:00", "Beard Trim"))
	require.ErrorIs(t, err, ErrSlotConflict)

	// Cancelling the first releases the slot
	_, err = svc.UpdateStatus(appointment.ID, models.StatusCancelled)
	require.NoError(t, err)

	_, _, err = svc.BookAppointment(second)
	require.NoError(t, err)
}

func TestBookAppointment_DifferentEmployeesShareSlot(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)
	e1 := seedEmployee(t, db, "E1")
	e2 := seedEmployee(t, db, "E2")

	first := bookingFor("+919800000007", "2026-06-02", "10:00", "Hair Cut")
	first.EmployeeID = &e1.ID
	_, _, err := svc.BookAppointment(first)
	require.NoError(t, err)

	second := bookingFor("+919800000008", "2026-06-02", "10:00", "Hair Cut")
	second.EmployeeID = &e2.ID
	_, _, err = svc.BookAppointment(second)
	require.NoError(t, err)
}

func TestIsSlotAvailable_ExcludesSelf(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	appointment, _, err := svc.BookAppointment(
		bookingFor("+919800000009", "2026-06-03", "15:30", "Hair Cut"))
	require.NoError(t, err)

	available, err := svc.IsSlotAvailable("2026-06-03", "15:30", nil, nil)
	require.NoError(t, err)
	require.False(t, available)

	// Reschedule checks skip the appointment being edited
	available, err = svc.IsSlotAvailable("2026-06-03", "15:30", nil, &appointment.ID)
	require.NoError(t, err)
	require.True(t, available)
}

func TestUpdateStatus_CompletionSideEffects(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)
	employee := seedEmployee(t, db, "E1")

	input := bookingFor("+919800000010", "2026-06-04", "09:00", "Hair Cut", "Beard Trim")
	input.EmployeeID = &employee.ID
	appointment, _, err := svc.BookAppointment(input)
	require.NoError(t, err)

	for _, status := range []string{models.StatusConfirmed, models.StatusInProgress, models.StatusCompleted} {
		_, err = svc.UpdateStatus(appointment.ID, status)
		require.NoError(t, err)
	}

	var customer models.Customer
	require.NoError(t, db.First(&customer, "id = ?", appointment.CustomerID).Error)
	require.Equal(t, 1, customer.TotalVisits)
	require.Equal(t, 230.0, customer.TotalSpent)
	require.Equal(t, 23, customer.LoyaltyPoints) // floor(230 / 10)
	require.NotNil(t, customer.LastVisit)

	var updatedEmployee models.Employee
	require.NoError(t, db.First(&updatedEmployee, "id = ?", employee.ID).Error)
	require.Equal(t, 1, updatedEmployee.CompletedAppointments)

	// Completing again is a no-op; nothing double-increments
	_, err = svc.UpdateStatus(appointment.ID, models.StatusCompleted)
	require.NoError(t, err)

	require.NoError(t, db.First(&customer, "id = ?", appointment.CustomerID).Error)
	require.Equal(t, 1, customer.TotalVisits)
	require.Equal(t, 230.0, customer.TotalSpent)
	require.Equal(t, 23, customer.LoyaltyPoints)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	appointment, _, err := svc.BookAppointment(
		bookingFor("+919800000011", "2026-06-05", "09:00", "Hair Cut"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(appointment.ID, "sleeping")
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, err = svc.UpdateStatus(appointment.ID, models.StatusConfirmed)
	require.NoError(t, err)

	// No moving backwards
	_, err = svc.UpdateStatus(appointment.ID, models.StatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Terminal states stay terminal
	_, err = svc.UpdateStatus(appointment.ID, models.StatusCancelled)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(appointment.ID, models.StatusConfirmed)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(uuid.New(), models.StatusConfirmed)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteAppointment_BilledGuard(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	book := func(timeStr string) *models.Appointment {
		appointment, _, err := svc.BookAppointment(
			bookingFor("+919800000012", "2026-06-06", timeStr, "Hair Cut"))
		require.NoError(t, err)
		return appointment
	}
	complete := func(a *models.Appointment) {
		for _, status := range []string{models.StatusConfirmed, models.StatusInProgress, models.StatusCompleted} {
			_, err := svc.UpdateStatus(a.ID, status)
			require.NoError(t, err)
		}
	}

	// Completed and billed: immutable
	billed := book("09:00")
	complete(billed)
	require.NoError(t, db.Model(&models.Appointment{}).Where("id = ?", billed.ID).
		Update("is_billed", true).Error)
	require.ErrorIs(t, svc.DeleteAppointment(billed.ID), ErrAppointmentBilled)

	// Completed but unbilled: deletable
	unbilled := book("10:00")
	complete(unbilled)
	require.NoError(t, svc.DeleteAppointment(unbilled.ID))

	// Pending: deletable
	pending := book("11:00")
	require.NoError(t, svc.DeleteAppointment(pending.ID))

	require.True(t, errors.Is(svc.DeleteAppointment(uuid.New()), gorm.ErrRecordNotFound))
}

func TestBookAppointment_SnapshotSurvivesCatalogEdits(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := NewBookingService(db)

	appointment, _, err := svc.BookAppointment(
		bookingFor("+919800000013", "2026-06-07", "09:00", "Hair Cut"))
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Service{}).Where("name = ?", "Hair Cut").
		Update("price", 999).Error)

	var reloaded models.Appointment
	require.NoError(t, db.Preload("Services").First(&reloaded, "id = ?", appointment.ID).Error)
	require.Equal(t, 150.0, reloaded.Services[0].Price)
	require.Equal(t, 150.0, reloaded.TotalAmount)
}
