package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultRazorpayURL = "https://api.razorpay.com"

type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	if baseURL == "" {
		baseURL = DefaultRazorpayURL
	}
	return &RazorpayClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type createOrderReq struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type errorResp struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (Order, error) {
	b, _ := json.Marshal(createOrderReq{Amount: amountPaise, Currency: currency, Receipt: receipt})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(b))
	if err != nil {
		return Order{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Order{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var er errorResp
		if json.Unmarshal(raw, &er) == nil && er.Error.Description != "" {
			return Order{}, fmt.Errorf("razorpay http %d: %s", resp.StatusCode, er.Error.Description)
		}
		return Order{}, fmt.Errorf("razorpay http %d: %s", resp.StatusCode, string(raw))
	}

	var or orderResp
	if err := json.Unmarshal(raw, &or); err != nil {
		return Order{}, fmt.Errorf("razorpay decode error: %w", err)
	}
	if or.ID == "" {
		return Order{}, fmt.Errorf("razorpay: empty order id")
	}
	return Order{ID: or.ID, Amount: or.Amount, Currency: or.Currency, KeyID: c.keyID}, nil
}

func (c *RazorpayClient) Verify(orderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}
