package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestToPaise(t *testing.T) {
	cases := map[float64]int64{1120.25: 112025, 0.1: 10, 99.999: 10000, 0: 0}
	for in, want := range cases {
		if got := ToPaise(in); got != want {
			t.Errorf("ToPaise(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("s3cret", "order_1", "pay_1")
	if !VerifySignature("s3cret", "order_1", "pay_1", sig) {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature("s3cret", "order_1", "pay_2", sig) {
		t.Error("signature for another payment accepted")
	}
	if VerifySignature("other", "order_1", "pay_1", sig) {
		t.Error("signature under another secret accepted")
	}
	if VerifySignature("", "order_1", "pay_1", Sign("", "order_1", "pay_1")) {
		t.Error("empty secret accepted")
	}
}

func TestOfflineGateway(t *testing.T) {
	g := NewOffline()
	o, err := g.CreateOrder(context.Background(), 5000, "INR", "payment_1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(o.ID, "order_") || o.Amount != 5000 || o.KeyID == "" {
		t.Errorf("order = %+v", o)
	}
	if !g.Verify(o.ID, "pay_x", Sign(g.Secret, o.ID, "pay_x")) {
		t.Error("offline verify failed")
	}
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if r.URL.Path != "/v1/orders" || !ok || user != "rzp_key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
			return
		}
		var body createOrderReq
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(orderResp{ID: "order_abc", Amount: body.Amount, Currency: body.Currency, Status: "created"})
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "rzp_key", "secret")
	o, err := c.CreateOrder(context.Background(), 112025, "INR", "payment_7")
	if err != nil {
		t.Fatal(err)
	}
	if o.ID != "order_abc" || o.Amount != 112025 || o.KeyID != "rzp_key" {
		t.Errorf("order = %+v", o)
	}

	bad := NewRazorpayClient(srv.URL, "rzp_key", "wrong")
	_, err = bad.CreateOrder(context.Background(), 100, "INR", "payment_8")
	if err == nil || !strings.Contains(err.Error(), "Authentication failed") {
		t.Errorf("err = %v", err)
	}
}
