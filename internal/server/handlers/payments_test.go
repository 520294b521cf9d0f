package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/payment"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/security"
)

func paymentsRouter(reqs *fakeRequests, ev *recordedEvents, as *security.Principal) (*gin.Engine, *payment.Offline) {
	gw := payment.NewOffline()
	h := NewPaymentsHandler(nopLogger, reqs, gw, ev)
	r := testEngine(as)
	r.POST("/payments/create-order/", h.CreateOrder)
	r.POST("/payments/verify/", h.Verify)
	r.PUT("/payments/:id/update-status/", h.UpdateStatus)
	return r, gw
}

func TestCreateOrderUsesStoredAmount(t *testing.T) {
	reqs := newFakeRequests(newFakeUsers())
	reqs.put(requests.ServiceRequest{ID: 1, TotalAmount: 512.34, PaymentStatus: "pending", PaymentMethod: "online"})
	r, _ := paymentsRouter(reqs, &recordedEvents{}, asCustomer)

	w := do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"amount": 1, "payment_db_id": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d body %s", w.Code, w.Body)
	}
	order := decode[payment.Order](t, w)
	if order.Amount != 51234 || order.Currency != "INR" || order.KeyID != "rzp_test_offline" {
		t.Errorf("order = %+v", order)
	}
	pay, _ := reqs.GetPayment(context.Background(), 1)
	if pay.Status != "initiated" || pay.GatewayOrderID == nil || *pay.GatewayOrderID != order.ID {
		t.Errorf("payment = %+v", pay)
	}

	w = do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"amount": ""})
	if w.Code != http.StatusBadRequest || message(t, w) != "Missing field: amount" {
		t.Errorf("no amount: %d %s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"payment_db_id": 99})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown payment: %d", w.Code)
	}
}

func TestVerifyMarksPaidOnce(t *testing.T) {
	reqs := newFakeRequests(newFakeUsers())
	agent := int64(2)
	reqs.put(requests.ServiceRequest{ID: 1, TotalAmount: 100, PaymentStatus: "pending", AgentID: &agent})
	ev := &recordedEvents{}
	r, gw := paymentsRouter(reqs, ev, asCustomer)

	order := decode[payment.Order](t, do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"payment_db_id": 1}))
	body := map[string]any{
		"razorpay_order_id":   order.ID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign(gw.Secret, order.ID, "pay_1"),
		"payment_db_id":       "1",
	}
	w := do(t, r, http.MethodPost, "/payments/verify/", body)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: %d %s", w.Code, w.Body)
	}
	got, _ := reqs.Get(context.Background(), 1)
	if got.PaymentStatus != "success" {
		t.Errorf("request payment_status = %s", got.PaymentStatus)
	}
	if len(ev.evs) != 1 || ev.evs[0].Type != events.PaymentUpdated || ev.evs[0].AgentID != 2 {
		t.Errorf("events = %+v", ev.evs)
	}

	// replaying the same confirmation is harmless
	if w = do(t, r, http.MethodPost, "/payments/verify/", body); w.Code != http.StatusOK {
		t.Errorf("replay: %d %s", w.Code, w.Body)
	}
	body["razorpay_payment_id"] = "pay_2"
	if w = do(t, r, http.MethodPost, "/payments/verify/", body); w.Code != http.StatusBadRequest {
		t.Errorf("second payment on a paid row: %d", w.Code)
	}
}

func TestVerifyBadSignatureFailsPayment(t *testing.T) {
	reqs := newFakeRequests(newFakeUsers())
	reqs.put(requests.ServiceRequest{ID: 1, TotalAmount: 100, PaymentStatus: "pending"})
	r, gw := paymentsRouter(reqs, &recordedEvents{}, asCustomer)

	w := do(t, r, http.MethodPost, "/payments/verify/", map[string]any{
		"razorpay_order_id":   "order_x",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign(gw.Secret, "order_x", "pay_other"),
		"payment_db_id":       1,
	})
	if w.Code != http.StatusBadRequest || message(t, w) != "Payment verification failed" {
		t.Fatalf("got %d %s", w.Code, w.Body)
	}
	pay, _ := reqs.GetPayment(context.Background(), 1)
	if pay.Status != "failed" {
		t.Errorf("status = %s", pay.Status)
	}

	w = do(t, r, http.MethodPost, "/payments/verify/", map[string]any{"razorpay_order_id": "order_x"})
	if w.Code != http.StatusBadRequest || message(t, w) != "Missing field: razorpay_payment_id" {
		t.Errorf("missing fields: %d %s", w.Code, w.Body)
	}
}

func TestVerifyRejectsOrderOpenedForAnotherPayment(t *testing.T) {
	reqs := newFakeRequests(newFakeUsers())
	reqs.put(requests.ServiceRequest{ID: 1, TotalAmount: 5000, PaymentStatus: "pending", PaymentMethod: "online"})
	reqs.put(requests.ServiceRequest{ID: 2, TotalAmount: 5000, PaymentStatus: "pending", PaymentMethod: "online"})
	r, gw := paymentsRouter(reqs, &recordedEvents{}, asCustomer)

	verify := func(orderID string, paymentDBID int) int {
		return do(t, r, http.MethodPost, "/payments/verify/", map[string]any{
			"razorpay_order_id":   orderID,
			"razorpay_payment_id": "pay_cheap",
			"razorpay_signature":  payment.Sign(gw.Secret, orderID, "pay_cheap"),
			"payment_db_id":       paymentDBID,
		}).Code
	}

	// a validly signed one rupee order cannot settle a payment that never opened an order
	cheap := decode[payment.Order](t, do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"amount": 1}))
	if cheap.Amount != 100 {
		t.Fatalf("cheap order = %+v", cheap)
	}
	if code := verify(cheap.ID, 1); code != http.StatusBadRequest {
		t.Fatalf("orderless payment: %d", code)
	}
	pay, _ := reqs.GetPayment(context.Background(), 1)
	if pay.Status != "failed" || pay.GatewayOrderID != nil {
		t.Errorf("payment 1 = %+v", pay)
	}

	// nor can another payment's order
	decode[payment.Order](t, do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"payment_db_id": 2}))
	if code := verify(cheap.ID, 2); code != http.StatusBadRequest {
		t.Fatalf("foreign order: %d", code)
	}
	if pay, _ = reqs.GetPayment(context.Background(), 2); pay.Status != "failed" {
		t.Errorf("payment 2 status = %s", pay.Status)
	}
}

func TestCreateOrderRefusesCashOnDelivery(t *testing.T) {
	reqs := newFakeRequests(newFakeUsers())
	reqs.put(requests.ServiceRequest{ID: 1, TotalAmount: 300, PaymentStatus: "cod", PaymentMethod: "cod"})
	reqs.put(requests.ServiceRequest{ID: 2, TotalAmount: 300, PaymentStatus: "failed", PaymentMethod: "online"})
	r, _ := paymentsRouter(reqs, &recordedEvents{}, asCustomer)

	w := do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"payment_db_id": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("cod order: %d %s", w.Code, w.Body)
	}
	if pay, _ := reqs.GetPayment(context.Background(), 1); pay.Status != "cod" || pay.GatewayOrderID != nil {
		t.Errorf("cod payment changed: %+v", pay)
	}

	// a failed online payment may be retried with a fresh order
	if w = do(t, r, http.MethodPost, "/payments/create-order/", map[string]any{"payment_db_id": 2}); w.Code != http.StatusOK {
		t.Errorf("retry after failure: %d %s", w.Code, w.Body)
	}
}

func TestPaymentStatusUpdateByAssignedAgentOnly(t *testing.T) {
	reqs := newFakeRequests(newFakeUsers())
	agent := int64(2)
	reqs.put(requests.ServiceRequest{ID: 1, TotalAmount: 100, PaymentStatus: "cod", AgentID: &agent})

	other := &security.Principal{UserID: 5, Role: "agent", Email: "x@x.io"}
	r, _ := paymentsRouter(reqs, &recordedEvents{}, other)
	if w := do(t, r, http.MethodPut, "/payments/1/update-status/", map[string]string{"status": "success"}); w.Code != http.StatusForbidden {
		t.Fatalf("other agent: %d", w.Code)
	}

	r, _ = paymentsRouter(reqs, &recordedEvents{}, asAgent)
	if w := do(t, r, http.MethodPut, "/payments/1/update-status/", map[string]string{"status": "bogus"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: %d", w.Code)
	}
	if w := do(t, r, http.MethodPut, "/payments/1/update-status/", map[string]string{"status": "success"}); w.Code != http.StatusOK {
		t.Fatalf("assigned agent: %d %s", w.Code, w.Body)
	}
	got, _ := reqs.Get(context.Background(), 1)
	if got.PaymentStatus != "success" {
		t.Errorf("payment_status = %s", got.PaymentStatus)
	}

	// once settled, or for an online payment, the agent has no say
	if w := do(t, r, http.MethodPut, "/payments/1/update-status/", map[string]string{"status": "failed"}); w.Code != http.StatusBadRequest {
		t.Errorf("settled payment changed again: %d", w.Code)
	}
	reqs.put(requests.ServiceRequest{ID: 2, TotalAmount: 100, PaymentStatus: "pending", PaymentMethod: "online", AgentID: &agent})
	if w := do(t, r, http.MethodPut, "/payments/2/update-status/", map[string]string{"status": "success"}); w.Code != http.StatusBadRequest {
		t.Errorf("agent settled an online payment: %d", w.Code)
	}
	reqs.put(requests.ServiceRequest{ID: 3, TotalAmount: 100, PaymentStatus: "cod", PaymentMethod: "cod", AgentID: &agent})
	if w := do(t, r, http.MethodPut, "/payments/3/update-status/", map[string]string{"status": "pending"}); w.Code != http.StatusBadRequest {
		t.Errorf("agent moved cod to pending: %d", w.Code)
	}

	admin, _ := paymentsRouter(reqs, &recordedEvents{}, asAdmin)
	if w := do(t, admin, http.MethodPut, "/payments/2/update-status/", map[string]string{"status": "success"}); w.Code != http.StatusOK {
		t.Errorf("admin override: %d %s", w.Code, w.Body)
	}
}
