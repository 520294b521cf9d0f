// Package telegram posts admin notifications to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/events"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier forwards the events admins act on to one chat.
type Notifier struct {
	bot    sender
	chatID int64
	logger *zap.Logger
}

func New(token string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	logger.Info("telegram notifier authorized", zap.String("bot", api.Self.UserName))
	return &Notifier{bot: api, chatID: chatID, logger: logger}, nil
}

// Publish implements events.Publisher. Events without an admin message are ignored.
func (n *Notifier) Publish(_ context.Context, ev events.Event) error {
	text := Format(ev)
	if text == "" {
		return nil
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Format renders the admin message for an event, or "" when admins need not know.
func Format(ev events.Event) string {
	str := func(k string) string {
		if v, ok := ev.Data[k]; ok {
			return fmt.Sprint(v)
		}
		return ""
	}
	switch ev.Type {
	case events.RegistrationCreated:
		var b strings.Builder
		fmt.Fprintf(&b, "New agent application #%v\n", str("registration_id"))
		fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\nID proof: %s", str("full_name"), str("email"), str("phone_number"), str("id_proof_type"))
		return b.String()
	case events.RequestCreated:
		return fmt.Sprintf("New %s request #%d for ₹%s (%s)", str("service_type"), ev.RequestID, str("total_amount"), str("payment_method"))
	case events.PaymentUpdated:
		if ev.Status != "failed" {
			return ""
		}
		return fmt.Sprintf("Payment failed for request #%d", ev.RequestID)
	}
	return ""
}
