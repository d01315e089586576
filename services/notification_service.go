// services/notification_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"salonflow-backend/models"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type NotificationService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *NotificationService) StartScheduler() {
	c := cron.New()

	// Remind tomorrow's appointments every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendAppointmentReminders)

	c.Start()
	log.Println("Appointment reminder scheduler started")
}

// SendBookingConfirmation messages the customer after a successful booking.
func (s *NotificationService) SendBookingConfirmation(appointment *models.Appointment) {
	names := make([]string, 0, len(appointment.Services))
	for _, item := range appointment.Services {
		names = append(names, item.ServiceName)
	}

	message := fmt.Sprintf("Hi %s, your appointment for %s on %s at %s is booked. See you soon!",
		appointment.CustomerName, strings.Join(names, ", "), appointment.Date, appointment.Time)
	s.send(appointment.CustomerPhone, message)
}

func (s *NotificationService) SendAppointmentReminders() {
	log.Println("Starting daily appointment reminder processing...")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	appointments, err := s.appointmentsOn(tomorrow)
	if err != nil {
		log.Printf("Failed to fetch appointments for %s: %v", tomorrow, err)
		return
	}

	for _, appointment := range appointments {
		message := fmt.Sprintf("Hi %s, a reminder for your appointment tomorrow at %s.",
			appointment.CustomerName, appointment.Time)
		s.send(appointment.CustomerPhone, message)
	}

	log.Printf("Daily reminder processing completed, %d reminder(s)", len(appointments))
}

// appointmentsOn lists the still-active appointments for a date.
func (s *NotificationService) appointmentsOn(date string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.
		Where("date = ? AND status IN ?", date, []string{models.StatusPending, models.StatusConfirmed}).
		Find(&appointments).Error
	return appointments, err
}

// send delivers via Twilio when credentials are configured and only logs
// otherwise.
func (s *NotificationService) send(to, body string) {
	from := os.Getenv("TWILIO_FROM_NUMBER")
	if os.Getenv("TWILIO_ACCOUNT_SID") == "" || from == "" {
		log.Printf("[NOTIFY] to=%s message=%q (delivery disabled)", to, body)
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send message to %s: %v", to, err)
		return
	}
	if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", to, *resp.Sid)
	}
}
