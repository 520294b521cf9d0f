package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/catalog"
	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/server/mw"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

type RequestsHandler struct {
	logger *zap.Logger

	users    UserStore
	catalog  CatalogStore
	requests RequestStore
	events   events.Publisher
	stats    Cache
}

func NewRequestsHandler(
	logger *zap.Logger,
	usersRepo UserStore,
	catalogRepo CatalogStore,
	requestsRepo RequestStore,
	publisher events.Publisher,
	statsCache Cache,
) *RequestsHandler {
	return &RequestsHandler{
		logger:   logger,
		users:    usersRepo,
		catalog:  catalogRepo,
		requests: requestsRepo,
		events:   publisher,
		stats:    statsCache,
	}
}

type createRequestReq struct {
	ServiceType         string    `json:"service_type"`
	UserEmail           string    `json:"user_email"`
	VehicleType         string    `json:"vehicle_type"`
	VehicleNumber       string    `json:"vehicle_number"`
	QuantityLiters      flexFloat `json:"quantity_liters"`
	AmountRupees        flexFloat `json:"amount_rupees"`
	TyreCount           flexInt   `json:"tyre_count"`
	TyreType            string    `json:"tyre_type"`
	LeakDetection       string    `json:"leak_detection"`
	ChargerType         string    `json:"charger_type"`
	BatteryPercentage   flexInt   `json:"battery_percentage"`
	ChargingRequirement string    `json:"charging_requirement"`
	VehicleMake         string    `json:"vehicle_make"`
	VehicleModel        string    `json:"vehicle_model"`
	Issue               string    `json:"issue"`
	DeliveryTime        string    `json:"delivery_time"`
	LocationLat         flexFloat `json:"location_lat"`
	LocationLng         flexFloat `json:"location_lng"`
	Notes               string    `json:"notes"`
	PaymentMethod       string    `json:"payment_method"`
}

func (h *RequestsHandler) Create(c *gin.Context) {
	var req createRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	set := func(f flexFloat) string {
		if f.Set {
			return "set"
		}
		return ""
	}
	if f := missingField(
		[2]string{"service_type", strings.TrimSpace(req.ServiceType)},
		[2]string{"user_email", strings.TrimSpace(req.UserEmail)},
		[2]string{"vehicle_type", strings.TrimSpace(req.VehicleType)},
		[2]string{"vehicle_number", strings.TrimSpace(req.VehicleNumber)},
		[2]string{"location_lat", set(req.LocationLat)},
		[2]string{"location_lng", set(req.LocationLng)},
	); f != "" {
		resp.Error(c, http.StatusBadRequest, "Missing field: "+f)
		return
	}
	st, ok := domain.ParseServiceType(req.ServiceType)
	if !ok {
		resp.Error(c, http.StatusBadRequest, "Invalid service type")
		return
	}
	if req.LocationLat.V < -90 || req.LocationLat.V > 90 || req.LocationLng.V < -180 || req.LocationLng.V > 180 {
		resp.Error(c, http.StatusBadRequest, "Invalid location")
		return
	}

	delivery := time.Now().UTC()
	if strings.TrimSpace(req.DeliveryTime) != "" {
		t, err := parseDeliveryTime(req.DeliveryTime)
		if err != nil {
			resp.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		delivery = t
	} else if st.IsFuel() {
		resp.Error(c, http.StatusBadRequest, "Missing field: delivery_time")
		return
	}

	method := domain.PaymentOnline
	switch strings.ToLower(strings.TrimSpace(req.PaymentMethod)) {
	case "", string(domain.PaymentOnline):
	case string(domain.PaymentCOD):
		method = domain.PaymentCOD
	default:
		resp.Error(c, http.StatusBadRequest, "payment_method must be online or cod")
		return
	}

	ctx := c.Request.Context()
	u, err := h.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.UserEmail)))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			resp.Error(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("request user lookup failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}

	svc, err := h.catalog.ActiveByType(ctx, string(st))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			resp.Error(c, http.StatusBadRequest, requests.ErrServiceUnavailable.Error())
			return
		}
		h.logger.Error("request service lookup failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	var prices catalog.Prices
	if !st.IsFuel() {
		if prices, err = h.catalog.Prices(ctx, string(st)); err != nil {
			h.logger.Error("request prices lookup failed", zap.Error(err))
			resp.Error(c, http.StatusInternalServerError, "internal error")
			return
		}
	}

	details := requests.Details{
		TyreCount:           req.TyreCount.Ptr(),
		TyreType:            strings.TrimSpace(req.TyreType),
		LeakDetection:       strings.ToLower(strings.TrimSpace(req.LeakDetection)),
		ChargerType:         strings.TrimSpace(req.ChargerType),
		BatteryPercentage:   req.BatteryPercentage.Ptr(),
		ChargingRequirement: strings.TrimSpace(req.ChargingRequirement),
		VehicleMake:         strings.TrimSpace(req.VehicleMake),
		VehicleModel:        strings.TrimSpace(req.VehicleModel),
		Issue:               strings.TrimSpace(req.Issue),
	}
	if p := details.BatteryPercentage; p != nil && (*p < 0 || *p > 100) {
		resp.Error(c, http.StatusBadRequest, "battery_percentage must be between 0 and 100")
		return
	}

	q, err := requests.Compute(requests.QuoteInput{
		ServiceType:    st,
		QuantityLiters: req.QuantityLiters.Ptr(),
		AmountRupees:   req.AmountRupees.Ptr(),
		Details:        details,
	}, *svc, prices)
	if err != nil {
		var qe requests.QuoteError
		if errors.As(err, &qe) {
			resp.Error(c, http.StatusBadRequest, qe.Error())
			return
		}
		h.logger.Error("quote failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}

	created, err := h.requests.Create(ctx, requests.CreateParams{
		UserID:         u.ID,
		ServiceID:      svc.ID,
		ServiceType:    string(st),
		VehicleType:    strings.TrimSpace(req.VehicleType),
		VehicleNumber:  strings.ToUpper(strings.TrimSpace(req.VehicleNumber)),
		QuantityLiters: q.QuantityLiters,
		AmountRupees:   q.AmountRupees,
		Details:        details,
		TotalAmount:    q.Total,
		DeliveryTime:   delivery,
		LocationLat:    req.LocationLat.V,
		LocationLng:    req.LocationLng.V,
		Notes:          strings.TrimSpace(req.Notes),
		PaymentMethod:  method,
	})
	if err != nil {
		h.logger.Error("request create failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}

	h.publish(ctx, events.Event{
		Type:      events.RequestCreated,
		RequestID: created.RequestID,
		Status:    string(domain.RequestPending),
		Data: map[string]any{
			"service_type":   string(st),
			"total_amount":   created.TotalAmount,
			"payment_method": string(method),
			"user_email":     u.Email,
		},
	})
	resp.Created(c, gin.H{
		"message":        "Service request created",
		"request_id":     created.RequestID,
		"payment_id":     created.PaymentID,
		"total_amount":   created.TotalAmount,
		"payment_status": created.PaymentStatus,
	})
}

// List scopes by role: admins see everything and may filter, customers see
// their own requests and agents their assigned ones.
func (h *RequestsHandler) List(c *gin.Context) {
	p, _ := mw.Principal(c)
	var f requests.Filter
	switch domain.UserType(p.Role) {
	case domain.UserAdmin:
		f = requests.Filter{
			Status:        c.Query("status"),
			ServiceType:   c.Query("service_type"),
			PaymentStatus: c.Query("payment_status"),
			UserEmail:     strings.ToLower(strings.TrimSpace(c.Query("user_email"))),
			Search:        c.Query("search"),
		}
		if f.ServiceType != "" {
			if st, ok := domain.ParseServiceType(f.ServiceType); ok {
				f.ServiceType = string(st)
			}
		}
	case domain.UserAgent:
		f = requests.Filter{AgentID: p.UserID, Status: c.Query("status")}
	default:
		f = requests.Filter{UserID: p.UserID, Status: c.Query("status")}
	}
	list, err := h.requests.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list requests failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []requests.ServiceRequest{}
	}
	resp.OK(c, list)
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *RequestsHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	to, ok := domain.ParseRequestStatus(req.Status)
	if !ok {
		resp.Error(c, http.StatusBadRequest, "Invalid status")
		return
	}

	ctx := c.Request.Context()
	cur, ok := h.load(c, id)
	if !ok {
		return
	}
	p, _ := mw.Principal(c)
	actor := domain.UserType(p.Role)
	switch actor {
	case domain.UserAdmin:
	case domain.UserCustomer:
		if cur.UserID != p.UserID {
			resp.Error(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
	default:
		resp.Error(c, http.StatusForbidden, "You do not have permission to perform this action")
		return
	}

	from := domain.RequestStatus(cur.Status)
	if !domain.CanTransition(actor, from, to) {
		resp.Error(c, http.StatusBadRequest, fmt.Sprintf("Invalid status transition from %s to %s", from, to))
		return
	}
	if to == domain.RequestAssigned && cur.AgentID == nil {
		resp.Error(c, http.StatusBadRequest, "Assign an agent first")
		return
	}

	updated, err := h.requests.UpdateStatus(ctx, id, from, to)
	if err != nil {
		h.writeErr(c, "update request status failed", err)
		return
	}
	h.afterChange(ctx, events.RequestStatusChanged, updated, cur.AgentID)
	resp.OK(c, updated)
}

type assignReq struct {
	AgentID flexID `json:"agent_id"`
}

func (h *RequestsHandler) AssignAgent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || req.AgentID <= 0 {
		resp.Error(c, http.StatusBadRequest, "Missing field: agent_id")
		return
	}

	ctx := c.Request.Context()
	agent, err := h.users.FindByID(ctx, int64(req.AgentID))
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		h.logger.Error("agent lookup failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if agent == nil || agent.UserType != string(domain.UserAgent) || !agent.IsActive {
		resp.Error(c, http.StatusBadRequest, "Agent not found")
		return
	}

	cur, ok := h.load(c, id)
	if !ok {
		return
	}
	from := domain.RequestStatus(cur.Status)
	if from != domain.RequestPending && from != domain.RequestAssigned {
		resp.Error(c, http.StatusBadRequest, fmt.Sprintf("Invalid status transition from %s to %s", from, domain.RequestAssigned))
		return
	}

	updated, err := h.requests.Assign(ctx, id, agent.ID)
	if err != nil {
		h.writeErr(c, "assign agent failed", err)
		return
	}
	h.afterChange(ctx, events.RequestAssigned, updated, cur.AgentID)
	resp.OK(c, updated)
}

func (h *RequestsHandler) AvailableAgents(c *gin.Context) {
	list, err := h.users.AgentsWithLoad(c.Request.Context())
	if err != nil {
		h.logger.Error("available agents failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []users.AgentLoad{}
	}
	resp.OK(c, list)
}

func (h *RequestsHandler) load(c *gin.Context, id int64) (*requests.ServiceRequest, bool) {
	cur, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, requests.ErrNotFound) {
			resp.Error(c, http.StatusNotFound, requests.ErrNotFound.Error())
			return nil, false
		}
		h.logger.Error("load request failed", zap.Error(err), zap.Int64("request_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return cur, true
}

func (h *RequestsHandler) writeErr(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, requests.ErrNotFound):
		resp.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, requests.ErrStatusChanged):
		resp.Error(c, http.StatusConflict, "Request was updated by someone else, reload and retry")
	default:
		h.logger.Error(msg, zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
	}
}

// afterChange notifies the current agent with typ, and the previous one with
// RequestUnassigned when the request moved away from them. Both lose their
// cached dashboard stats.
func (h *RequestsHandler) afterChange(ctx context.Context, typ string, r *requests.ServiceRequest, prevAgent *int64) {
	if r.AgentID == nil && prevAgent == nil {
		h.publish(ctx, events.Event{Type: typ, RequestID: r.ID, Status: r.Status})
		return
	}
	if r.AgentID != nil {
		dropStats(ctx, h.logger, h.stats, *r.AgentID)
		h.publish(ctx, events.Event{Type: typ, RequestID: r.ID, AgentID: *r.AgentID, Status: r.Status})
	}
	if prevAgent != nil && (r.AgentID == nil || *r.AgentID != *prevAgent) {
		dropStats(ctx, h.logger, h.stats, *prevAgent)
		h.publish(ctx, events.Event{Type: events.RequestUnassigned, RequestID: r.ID, AgentID: *prevAgent, Status: r.Status})
	}
}

func (h *RequestsHandler) publish(ctx context.Context, ev events.Event) {
	publish(ctx, h.logger, h.events, ev)
}

// publish never fails the request; a lost event is logged.
func publish(ctx context.Context, logger *zap.Logger, p events.Publisher, ev events.Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := p.Publish(ctx, ev); err != nil {
		logger.Warn("event publish failed", zap.String("type", ev.Type), zap.Error(err))
	}
}

func statsKey(agentID int64) string {
	return "agent:" + strconv.FormatInt(agentID, 10)
}

func dropStats(ctx context.Context, logger *zap.Logger, cache Cache, agentID int64) {
	if err := cache.Delete(ctx, statsKey(agentID)); err != nil {
		logger.Warn("stats cache invalidate failed", zap.Int64("agent_id", agentID), zap.Error(err))
	}
}
