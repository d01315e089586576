// services/booking_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"salonflow-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking failure modes surfaced to controllers. Storage errors pass through
// untouched; record lookups return gorm.ErrRecordNotFound.
var (
	ErrInvalidService    = errors.New("service not found in catalog")
	ErrSlotConflict      = errors.New("time slot is not available")
	ErrAppointmentBilled = errors.New("completed and billed appointments cannot be deleted")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown appointment status")
)

// BookingService owns slot availability, booking with loyalty discounts, the
// appointment lifecycle and its completion side effects.
type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// BookingInput carries one booking request.
type BookingInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	ServiceNames  []string
	Date          string // "YYYY-MM-DD"
	Time          string // "HH:MM"
	EmployeeID    *uuid.UUID
	Notes         string
}

// IsSlotAvailable reports whether a booking at date/time would collide with an
// existing appointment. Matching is exact string equality on the "HH:MM"
// field; only pending, confirmed and in-progress appointments block a slot.
// When employeeID is set, only that employee's appointments count. excludeID
// skips one appointment, for reschedule checks.
func (s *BookingService) IsSlotAvailable(date, timeStr string, employeeID, excludeID *uuid.UUID) (bool, error) {
	return slotAvailable(s.db, date, timeStr, employeeID, excludeID)
}

func slotAvailable(db *gorm.DB, date, timeStr string, employeeID, excludeID *uuid.UUID) (bool, error) {
	query := db.Model(&models.Appointment{}).
		Where("date = ? AND time = ?", date, timeStr).
		Where("status IN ?", []string{models.StatusPending, models.StatusConfirmed, models.StatusInProgress})

	if employeeID != nil {
		query = query.Where("employee_id = ?", *employeeID)
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// BookAppointment prices the requested services, resolves or creates the
// customer, applies the loyalty rule and persists the appointment with status
// pending. The second return value reports whether a discount was applied, so
// callers can surface a loyalty message.
func (s *BookingService) BookAppointment(input BookingInput) (*models.Appointment, bool, error) {
	// Resolve every requested service against the catalog before touching
	// anything else. One unknown name rejects the whole booking.
	var (
		items         []models.AppointmentService
		subtotal      float64
		totalDuration int
		cheapest      float64
	)
	for i, name := range input.ServiceNames {
		var service models.Service
		err := s.db.Where("name = ? AND is_active = ?", name, true).First(&service).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, fmt.Errorf("%w: %s", ErrInvalidService, name)
			}
			return nil, false, err
		}

		items = append(items, models.AppointmentService{
			ServiceName: service.Name,
			Price:       service.Price,
			Duration:    service.Duration,
		})
		subtotal += service.Price
		totalDuration += service.Duration
		if i == 0 || service.Price < cheapest {
			cheapest = service.Price
		}
	}

	// Resolve or create the customer by phone. A customer created here
	// legitimately survives even if the booking itself fails later.
	var customer models.Customer
	err := s.db.Where("phone = ?", input.CustomerPhone).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{
			Name:     input.CustomerName,
			Phone:    input.CustomerPhone,
			Email:    input.CustomerEmail,
			IsActive: true,
		}
		if err := s.db.Create(&customer).Error; err != nil {
			return nil, false, err
		}
	} else if err != nil {
		return nil, false, err
	}

	// Loyalty rule: every 5th visit gets the cheapest requested service free.
	// Eligibility is computed from the current visit count at booking time,
	// before the visit completes. Two concurrent bookings by the same
	// customer can therefore both qualify; see the decision log in DESIGN.md.
	discountType := models.DiscountNone
	var discountAmount float64
	var discountReason string
	discountApplied := false
	if customer.TotalVisits > 0 && (customer.TotalVisits+1)%5 == 0 {
		discountType = models.DiscountLoyalty
		discountAmount = cheapest
		discountReason = fmt.Sprintf("Loyalty reward: visit #%d, cheapest service free", customer.TotalVisits+1)
		discountApplied = true
	}

	total := subtotal - discountAmount
	if total < 0 {
		total = 0
	}

	appointment := models.Appointment{
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		CustomerPhone:  customer.Phone,
		EmployeeID:     input.EmployeeID,
		Date:           input.Date,
		Time:           input.Time,
		Status:         models.StatusPending,
		Services:       items,
		TotalAmount:    total,
		TotalDuration:  totalDuration,
		DiscountType:   discountType,
		DiscountAmount: discountAmount,
		DiscountReason: discountReason,
		Notes:          input.Notes,
	}

	// Conflict check and insert share one transaction. Under read committed
	// this narrows the double-booking window rather than closing it; a
	// partial unique index on (date, time, employee_id) would close it.
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	available, err := slotAvailable(tx, input.Date, input.Time, input.EmployeeID, nil)
	if err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if !available {
		tx.Rollback()
		return nil, false, ErrSlotConflict
	}

	if err := tx.Create(&appointment).Error; err != nil {
		tx.Rollback()
		return nil, false, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, false, err
	}

	return &appointment, discountApplied, nil
}

var statusRank = map[string]int{
	models.StatusPending:    0,
	models.StatusConfirmed:  1,
	models.StatusInProgress: 2,
	models.StatusCompleted:  3,
}

// ValidateTransition reports whether a status move is legal: forward-only
// along the rank order, cancelled/no-show from any non-terminal status,
// terminal statuses immutable. Callers that combine a status change with
// other writes can check it up front before persisting anything.
func ValidateTransition(from, to string) error {
	if models.IsTerminalStatus(from) {
		return fmt.Errorf("%w: appointment is already %s", ErrInvalidTransition, from)
	}
	if to == models.StatusCancelled || to == models.StatusNoShow {
		return nil
	}
	if statusRank[to] <= statusRank[from] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// UpdateStatus moves an appointment through its lifecycle. On the transition
// into completed the customer's visit stats and the assigned employee's
// completed counter are incremented atomically, exactly once. Completion is a
// one-way ratchet: nothing is rolled back afterwards.
func (s *BookingService) UpdateStatus(id uuid.UUID, newStatus string) (*models.Appointment, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, newStatus)
	}

	var appointment models.Appointment
	if err := s.db.Preload("Services").First(&appointment, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if newStatus == appointment.Status {
		// Duplicate update calls are a no-op, so completion side effects
		// cannot fire twice.
		return &appointment, nil
	}

	if err := ValidateTransition(appointment.Status, newStatus); err != nil {
		return nil, err
	}

	previous := appointment.Status

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
		Update("status", newStatus).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if newStatus == models.StatusCompleted && previous != models.StatusCompleted {
		now := time.Now()
		loyaltyEarned := int(appointment.TotalAmount / 10)

		if err := tx.Model(&models.Customer{}).Where("id = ?", appointment.CustomerID).
			Updates(map[string]interface{}{
				"total_visits":   gorm.Expr("total_visits + ?", 1),
				"total_spent":    gorm.Expr("total_spent + ?", appointment.TotalAmount),
				"loyalty_points": gorm.Expr("loyalty_points + ?", loyaltyEarned),
				"last_visit":     now,
			}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		if appointment.EmployeeID != nil {
			if err := tx.Model(&models.Employee{}).Where("id = ?", *appointment.EmployeeID).
				Update("completed_appointments", gorm.Expr("completed_appointments + ?", 1)).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	appointment.Status = newStatus
	return &appointment, nil
}

// DeleteAppointment removes an appointment and its line items. Completed and
// billed appointments are immutable and cannot be deleted. Deletion never
// reverses completion stats on the customer.
func (s *BookingService) DeleteAppointment(id uuid.UUID) error {
	var appointment models.Appointment
	if err := s.db.First(&appointment, "id = ?", id).Error; err != nil {
		return err
	}

	if appointment.Status == models.StatusCompleted && appointment.IsBilled {
		return ErrAppointmentBilled
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("appointment_id = ?", appointment.ID).
		Delete(&models.AppointmentService{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&appointment).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
