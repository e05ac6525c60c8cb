package mailer

import (
	"time"

	"github.com/openmeet/eventhub/pkg/logger"
)

// DevMailer logs instead of sending. Default in development so nothing
// leaves the machine.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendRegistrationConfirmed(toEmail, toName, eventTitle string, eventDate time.Time) error {
	logger.Info("[DEV MAIL] Registration confirmed",
		"to", toEmail,
		"name", toName,
		"event", eventTitle,
		"date", eventDate.Format(time.RFC3339),
	)
	return nil
}

func (d *DevMailer) SendRegistrationCancelled(toEmail, toName, eventTitle string) error {
	logger.Info("[DEV MAIL] Registration cancelled",
		"to", toEmail,
		"name", toName,
		"event", eventTitle,
	)
	return nil
}
