package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"

	"github.com/google/uuid"
)

// Order is a gateway-side order the checkout widget pays against.
type Order struct {
	ID       string `json:"order_id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (Order, error)
	// Verify checks the callback signature for an order/payment pair.
	Verify(orderID, paymentID, signature string) bool
}

// ToPaise converts rupees to the minor unit the gateway bills in.
func ToPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// Sign returns hex(HMAC-SHA256(orderID|paymentID, secret)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, orderID, paymentID)), []byte(signature))
}

// Offline mints local order ids and signs with a fixed secret. Used when no
// gateway credentials are configured.
type Offline struct {
	KeyID  string
	Secret string
}

func NewOffline() *Offline {
	return &Offline{KeyID: "rzp_test_offline", Secret: "offline-secret"}
}

func (o *Offline) CreateOrder(_ context.Context, amountPaise int64, currency, _ string) (Order, error) {
	return Order{
		ID:       "order_" + uuid.NewString(),
		Amount:   amountPaise,
		Currency: currency,
		KeyID:    o.KeyID,
	}, nil
}

func (o *Offline) Verify(orderID, paymentID, signature string) bool {
	return VerifySignature(o.Secret, orderID, paymentID, signature)
}
