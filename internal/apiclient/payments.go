package apiclient

import (
	"context"
	"net/http"

	"github.com/Abin-1409/fuel-swift/internal/payment"
)

// Checkout is what the payment widget is opened with.
type Checkout struct {
	Key         string  `json:"key"`
	OrderID     string  `json:"order_id"`
	Amount      int64   `json:"amount"` // paise
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
	PaymentID   int64   `json:"payment_db_id,omitempty"`
}

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// CheckoutResult is the widget's success callback.
type CheckoutResult struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// CreateOrder opens a gateway order for a stored payment. The server charges
// the stored amount; amount is only used when paymentID is 0.
func (c *Client) CreateOrder(ctx context.Context, paymentID int64, amount float64) (*Checkout, error) {
	body := map[string]any{}
	if paymentID > 0 {
		body["payment_db_id"] = paymentID
	} else {
		body["amount"] = amount
	}
	var order payment.Order
	if err := c.do(ctx, http.MethodPost, "/api/payment/create-order/", nil, body, &order); err != nil {
		return nil, err
	}
	return &Checkout{
		Key:         order.KeyID,
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        "FuelSwift",
		Description: "Service payment",
		PaymentID:   paymentID,
	}, nil
}

type Verification struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Verify forwards the signed callback for server-side signature checking.
func (c *Client) Verify(ctx context.Context, res CheckoutResult, paymentID int64) (*Verification, error) {
	body := struct {
		CheckoutResult
		PaymentDBID int64 `json:"payment_db_id"`
	}{res, paymentID}
	var out Verification
	if err := c.do(ctx, http.MethodPost, "/api/payment/verify/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePaymentStatus settles a payment by hand, e.g. cash collected.
func (c *Client) UpdatePaymentStatus(ctx context.Context, paymentID int64, status string) (*Verification, error) {
	var out Verification
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, idPath("/api/payment/%d/update-status/", paymentID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
