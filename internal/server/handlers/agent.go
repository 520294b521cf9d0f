package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/server/mw"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

type AgentHandler struct {
	logger *zap.Logger

	users    UserStore
	requests RequestStore
	events   events.Publisher
	stats    Cache
	now      func() time.Time
}

func NewAgentHandler(logger *zap.Logger, usersRepo UserStore, requestsRepo RequestStore, publisher events.Publisher, statsCache Cache) *AgentHandler {
	return &AgentHandler{
		logger:   logger,
		users:    usersRepo,
		requests: requestsRepo,
		events:   publisher,
		stats:    statsCache,
		now:      time.Now,
	}
}

// agentID resolves ?email= to an agent. Agents may only ask about themselves;
// admins may ask about anyone.
func (h *AgentHandler) agentID(c *gin.Context) (int64, bool) {
	p, _ := mw.Principal(c)
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		email = p.Email
	}
	if p.Role == string(domain.UserAgent) {
		if email != p.Email {
			resp.Error(c, http.StatusForbidden, "You do not have permission to perform this action")
			return 0, false
		}
		return p.UserID, true
	}

	u, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		h.logger.Error("agent lookup failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return 0, false
	}
	if u == nil || u.UserType != string(domain.UserAgent) {
		resp.Error(c, http.StatusNotFound, "Agent not found")
		return 0, false
	}
	return u.ID, true
}

func (h *AgentHandler) AssignedTasks(c *gin.Context) {
	id, ok := h.agentID(c)
	if !ok {
		return
	}
	tasks, err := h.requests.TasksForAgent(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("assigned tasks failed", zap.Error(err), zap.Int64("agent_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if tasks == nil {
		tasks = []requests.ServiceRequest{}
	}
	resp.OK(c, tasks)
}

func (h *AgentHandler) DashboardStats(c *gin.Context) {
	id, ok := h.agentID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var st requests.DashboardStats
	if hit, err := h.stats.Get(ctx, statsKey(id), &st); err != nil {
		h.logger.Warn("stats cache read failed", zap.Error(err))
	} else if hit {
		resp.OK(c, st)
		return
	}

	tasks, err := h.requests.TasksForAgent(ctx, id)
	if err != nil {
		h.logger.Error("stats tasks failed", zap.Error(err), zap.Int64("agent_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	st = requests.ComputeStats(tasks, h.now())
	if err := h.stats.Set(ctx, statsKey(id), st); err != nil {
		h.logger.Warn("stats cache write failed", zap.Error(err))
	}
	resp.OK(c, st)
}

type taskStatusReq struct {
	AgentEmail string `json:"agent_email"`
	Status     string `json:"status" binding:"required"`
}

func (h *AgentHandler) UpdateTaskStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req taskStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	p, _ := mw.Principal(c)
	if e := strings.ToLower(strings.TrimSpace(req.AgentEmail)); e != "" && e != p.Email {
		resp.Error(c, http.StatusForbidden, "Task is not assigned to you")
		return
	}
	to, ok := domain.ParseRequestStatus(req.Status)
	if !ok {
		resp.Error(c, http.StatusBadRequest, "Invalid status")
		return
	}

	ctx := c.Request.Context()
	task, err := h.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, requests.ErrNotFound) {
			resp.Error(c, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("load task failed", zap.Error(err), zap.Int64("request_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if task.AgentID == nil || *task.AgentID != p.UserID {
		resp.Error(c, http.StatusForbidden, "Task is not assigned to you")
		return
	}
	from := domain.RequestStatus(task.Status)
	if !domain.CanTransition(domain.UserAgent, from, to) {
		resp.Error(c, http.StatusBadRequest, fmt.Sprintf("Invalid status transition from %s to %s", from, to))
		return
	}

	updated, err := h.requests.UpdateStatus(ctx, id, from, to)
	if err != nil {
		if errors.Is(err, requests.ErrStatusChanged) {
			resp.Error(c, http.StatusConflict, "Request was updated by someone else, reload and retry")
			return
		}
		h.logger.Error("task status update failed", zap.Error(err), zap.Int64("request_id", id))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	dropStats(ctx, h.logger, h.stats, p.UserID)
	publish(ctx, h.logger, h.events, events.Event{
		Type: events.RequestStatusChanged, RequestID: id, AgentID: p.UserID, Status: updated.Status,
	})
	resp.OK(c, updated)
}
