package mailer

import "time"

type Service interface {
	SendRegistrationConfirmed(toEmail, toName, eventTitle string, eventDate time.Time) error
	SendRegistrationCancelled(toEmail, toName, eventTitle string) error
}
