package telegram

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/events"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestNotifierSendsAdminEvents(t *testing.T) {
	fs := &fakeSender{}
	n := &Notifier{bot: fs, chatID: -100, logger: zap.NewNop()}

	_ = n.Publish(context.Background(), events.Event{
		Type: events.RegistrationCreated,
		Data: map[string]any{"registration_id": 4, "full_name": "Asha T", "email": "a@x.in", "phone_number": "+919876543210", "id_proof_type": "pan"},
	})
	_ = n.Publish(context.Background(), events.Event{Type: events.RequestStatusChanged, RequestID: 2})

	if len(fs.sent) != 1 {
		t.Fatalf("sent %d messages", len(fs.sent))
	}
	msg := fs.sent[0]
	if msg.ChatID != -100 || !strings.Contains(msg.Text, "#4") || !strings.Contains(msg.Text, "Asha T") {
		t.Errorf("message = %+v", msg)
	}
}

func TestFormatPayment(t *testing.T) {
	if Format(events.Event{Type: events.PaymentUpdated, Status: "success"}) != "" {
		t.Error("successful payment should not notify")
	}
	if got := Format(events.Event{Type: events.PaymentUpdated, Status: "failed", RequestID: 9}); !strings.Contains(got, "#9") {
		t.Errorf("got %q", got)
	}
}
