package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/payment"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/server/mw"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
)

const currencyINR = "INR"

type PaymentsHandler struct {
	logger *zap.Logger

	payments PaymentStore
	gateway  payment.Gateway
	events   events.Publisher
}

func NewPaymentsHandler(logger *zap.Logger, paymentsRepo PaymentStore, gateway payment.Gateway, publisher events.Publisher) *PaymentsHandler {
	return &PaymentsHandler{logger: logger, payments: paymentsRepo, gateway: gateway, events: publisher}
}

type createOrderReq struct {
	Amount      flexFloat `json:"amount"`
	PaymentDBID flexID    `json:"payment_db_id"`
}

// CreateOrder opens a gateway order. With payment_db_id the stored amount wins
// over any client supplied amount.
func (h *PaymentsHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx := c.Request.Context()
	amount := req.Amount.V
	receipt := "adhoc_" + uuid.NewString()[:8]
	var pay *requests.Payment
	if req.PaymentDBID > 0 {
		var ok bool
		if pay, ok = h.loadPayment(c, int64(req.PaymentDBID)); !ok {
			return
		}
		if pay.Status == string(domain.PaymentSuccess) {
			resp.Error(c, http.StatusBadRequest, "Payment already completed")
			return
		}
		// cash on delivery stays offline; a failed online payment may open a new order
		if pay.Method == string(domain.PaymentCOD) || pay.Status == string(domain.PaymentCODStatus) {
			resp.Error(c, http.StatusBadRequest, "Cash on delivery payments are settled by the agent")
			return
		}
		amount = pay.Amount
		receipt = fmt.Sprintf("payment_%d", pay.ID)
	}
	if amount <= 0 {
		resp.Error(c, http.StatusBadRequest, "Missing field: amount")
		return
	}

	order, err := h.gateway.CreateOrder(ctx, payment.ToPaise(amount), currencyINR, receipt)
	if err != nil {
		h.logger.Error("gateway create order failed", zap.Error(err), zap.String("receipt", receipt))
		resp.Error(c, http.StatusBadGateway, "Payment gateway unavailable")
		return
	}
	if pay != nil {
		if err := h.payments.SetPaymentOrder(ctx, pay.ID, order.ID); err != nil {
			h.logger.Error("store gateway order failed", zap.Error(err), zap.Int64("payment_id", pay.ID))
			resp.Error(c, http.StatusInternalServerError, "internal error")
			return
		}
	}
	resp.OK(c, order)
}

type verifyReq struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	PaymentDBID       flexID `json:"payment_db_id"`
}

func (h *PaymentsHandler) Verify(c *gin.Context) {
	var req verifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	set := ""
	if req.PaymentDBID > 0 {
		set = "set"
	}
	if f := missingField(
		[2]string{"razorpay_payment_id", strings.TrimSpace(req.RazorpayPaymentID)},
		[2]string{"razorpay_order_id", strings.TrimSpace(req.RazorpayOrderID)},
		[2]string{"razorpay_signature", strings.TrimSpace(req.RazorpaySignature)},
		[2]string{"payment_db_id", set},
	); f != "" {
		resp.Error(c, http.StatusBadRequest, "Missing field: "+f)
		return
	}

	ctx := c.Request.Context()
	pay, ok := h.loadPayment(c, int64(req.PaymentDBID))
	if !ok {
		return
	}
	if pay.Status == string(domain.PaymentSuccess) {
		if pay.GatewayPaymentID != nil && *pay.GatewayPaymentID == req.RazorpayPaymentID {
			resp.OK(c, gin.H{"message": "Payment verified", "status": pay.Status})
			return
		}
		resp.Error(c, http.StatusBadRequest, "Payment already completed")
		return
	}

	// only the order opened for this payment can settle it
	orderMatches := pay.GatewayOrderID != nil && *pay.GatewayOrderID == req.RazorpayOrderID
	if !orderMatches || !h.gateway.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		h.failVerification(c, pay, orderMatches)
		return
	}

	if err := h.payments.MarkPaid(ctx, pay.ID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		if errors.Is(err, requests.ErrPaymentNotFound) {
			// a new order replaced this one between load and update
			h.failVerification(c, pay, false)
			return
		}
		h.logger.Error("mark payment paid failed", zap.Error(err), zap.Int64("payment_id", pay.ID))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	h.notify(c, pay, domain.PaymentSuccess)
	resp.OK(c, gin.H{"message": "Payment verified", "status": string(domain.PaymentSuccess)})
}

func (h *PaymentsHandler) failVerification(c *gin.Context, pay *requests.Payment, orderMatches bool) {
	if err := h.payments.SetPaymentStatus(c.Request.Context(), pay.ID, domain.PaymentFailed); err != nil {
		h.logger.Error("mark payment failed failed", zap.Error(err), zap.Int64("payment_id", pay.ID))
	}
	h.logger.Warn("payment verification failed", zap.Int64("payment_id", pay.ID), zap.Bool("order_matches", orderMatches))
	h.notify(c, pay, domain.PaymentFailed)
	resp.Error(c, http.StatusBadRequest, "Payment verification failed")
}

// UpdateStatus lets an admin set any payment status. The agent holding the
// request may only settle a cash on delivery payment as success or failed.
func (h *PaymentsHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !domain.ValidPaymentStatus(status) {
		resp.Error(c, http.StatusBadRequest, "Invalid payment status")
		return
	}

	ctx := c.Request.Context()
	pay, ok := h.loadPayment(c, id)
	if !ok {
		return
	}
	if !mw.IsAdmin(c) {
		p, _ := mw.Principal(c)
		r, err := h.payments.Get(ctx, pay.RequestID)
		if err != nil {
			h.logger.Error("payment request lookup failed", zap.Error(err), zap.Int64("payment_id", id))
			resp.Error(c, http.StatusInternalServerError, "internal error")
			return
		}
		if r.AgentID == nil || *r.AgentID != p.UserID {
			resp.Error(c, http.StatusForbidden, "Task is not assigned to you")
			return
		}
		if pay.Status != string(domain.PaymentCODStatus) {
			resp.Error(c, http.StatusBadRequest, "Only cash on delivery payments can be settled by the agent")
			return
		}
		if status != string(domain.PaymentSuccess) && status != string(domain.PaymentFailed) {
			resp.Error(c, http.StatusBadRequest, "Cash on delivery can only be settled as success or failed")
			return
		}
	}

	if err := h.payments.SetPaymentStatus(ctx, id, domain.PaymentStatus(status)); err != nil {
		h.logger.Error("set payment status failed", zap.Error(err), zap.Int64("payment_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	h.notify(c, pay, domain.PaymentStatus(status))
	resp.OK(c, gin.H{"message": "Payment status updated", "status": status})
}

func (h *PaymentsHandler) loadPayment(c *gin.Context, id int64) (*requests.Payment, bool) {
	pay, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, requests.ErrPaymentNotFound) {
			resp.Error(c, http.StatusNotFound, requests.ErrPaymentNotFound.Error())
			return nil, false
		}
		h.logger.Error("load payment failed", zap.Error(err), zap.Int64("payment_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return pay, true
}

func (h *PaymentsHandler) notify(c *gin.Context, pay *requests.Payment, status domain.PaymentStatus) {
	ev := events.Event{Type: events.PaymentUpdated, RequestID: pay.RequestID, Status: string(status),
		Data: map[string]any{"payment_id": pay.ID, "amount": pay.Amount}}
	if r, err := h.payments.Get(c.Request.Context(), pay.RequestID); err == nil && r.AgentID != nil {
		ev.AgentID = *r.AgentID
	}
	publish(c.Request.Context(), h.logger, h.events, ev)
}
