package service

import (
	"encoding/json"

	"github.com/openmeet/eventhub/internal/mailer"
	"github.com/openmeet/eventhub/pkg/events"
	"github.com/openmeet/eventhub/pkg/logger"
)

// Notifier turns registration events from the bus into attendee emails. It
// runs off the request path: a slow or failing mail provider never delays a
// registration response.
type Notifier struct {
	mailer mailer.Service
}

func NewNotifier(m mailer.Service) *Notifier {
	return &Notifier{mailer: m}
}

// Start subscribes to registration subjects on a shared queue group so only
// one instance mails per event when the service is scaled out.
func (n *Notifier) Start(bus events.Subscriber) error {
	if err := bus.QueueSubscribe(events.RegistrationCreated, "notify", n.onRegistrationCreated); err != nil {
		return err
	}
	return bus.QueueSubscribe(events.RegistrationCanceled, "notify", n.onRegistrationCanceled)
}

func (n *Notifier) onRegistrationCreated(msg *events.Message) {
	var ev events.RegistrationEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Failed to decode registration event", "error", err, "subject", msg.Subject)
		return
	}
	if ev.Email == "" {
		return
	}

	if err := n.mailer.SendRegistrationConfirmed(ev.Email, ev.Name, ev.EventTitle, ev.EventDate); err != nil {
		logger.Error("Failed to send registration confirmation",
			"error", err, "event_id", ev.EventID, "account_id", ev.AccountID)
	}
}

func (n *Notifier) onRegistrationCanceled(msg *events.Message) {
	var ev events.RegistrationEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Failed to decode registration event", "error", err, "subject", msg.Subject)
		return
	}
	if ev.Email == "" {
		return
	}

	if err := n.mailer.SendRegistrationCancelled(ev.Email, ev.Name, ev.EventTitle); err != nil {
		logger.Error("Failed to send cancellation notice",
			"error", err, "event_id", ev.EventID, "account_id", ev.AccountID)
	}
}
