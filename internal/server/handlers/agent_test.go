package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

func agentRouter(f *requestsFixture, as *security.Principal, now time.Time) *gin.Engine {
	h := NewAgentHandler(nopLogger, f.users, f.reqs, f.events, f.stats)
	h.now = func() time.Time { return now }
	r := testEngine(as)
	r.GET("/agent/assigned-tasks/", h.AssignedTasks)
	r.GET("/agent/dashboard-stats/", h.DashboardStats)
	r.PUT("/agent/tasks/:id/update-status/", h.UpdateTaskStatus)
	return r
}

func TestAgentSeesOnlyOwnTasks(t *testing.T) {
	f := newRequestsFixture()
	mine, theirs := int64(2), int64(8)
	f.reqs.put(requests.ServiceRequest{ID: 1, Status: "assigned", AgentID: &mine})
	f.reqs.put(requests.ServiceRequest{ID: 2, Status: "assigned", AgentID: &theirs})
	now := time.Now()

	w := do(t, agentRouter(f, asAgent, now), http.MethodGet, "/agent/assigned-tasks/?email=agent@x.io", nil)
	if tasks := decode[[]requests.ServiceRequest](t, w); len(tasks) != 1 || tasks[0].ID != 1 {
		t.Fatalf("tasks = %+v", tasks)
	}
	w = do(t, agentRouter(f, asAgent, now), http.MethodGet, "/agent/assigned-tasks/?email=someone@x.io", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign email: %d", w.Code)
	}
	// admins look agents up by email
	w = do(t, agentRouter(f, asAdmin, now), http.MethodGet, "/agent/assigned-tasks/?email=cust@x.io", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("non-agent email: %d", w.Code)
	}
}

func TestUpdateTaskStatusRules(t *testing.T) {
	f := newRequestsFixture()
	mine, theirs := int64(2), int64(8)
	f.reqs.put(requests.ServiceRequest{ID: 1, Status: "assigned", AgentID: &mine})
	f.reqs.put(requests.ServiceRequest{ID: 2, Status: "assigned", AgentID: &theirs})
	r := agentRouter(f, asAgent, time.Now())

	w := do(t, r, http.MethodPut, "/agent/tasks/2/update-status/", map[string]string{"status": "in_progress"})
	if w.Code != http.StatusForbidden || message(t, w) != "Task is not assigned to you" {
		t.Fatalf("foreign task: %d %s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodPut, "/agent/tasks/1/update-status/", map[string]string{"status": "completed"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("skip in_progress: %d", w.Code)
	}
	for _, s := range []string{"in_progress", "completed"} {
		w = do(t, r, http.MethodPut, "/agent/tasks/1/update-status/", map[string]string{"status": s, "agent_email": "Agent@x.io"})
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", s, w.Code, w.Body)
		}
	}
	got := decode[requests.ServiceRequest](t, w)
	if got.Status != "completed" || got.StartedAt == nil || got.CompletedAt == nil {
		t.Errorf("task = %+v", got)
	}
	if n := len(f.events.types()); n != 2 {
		t.Errorf("events = %d", n)
	}
}

func TestDashboardStatsCachedAndInvalidated(t *testing.T) {
	f := newRequestsFixture()
	mine := int64(2)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	f.reqs.put(requests.ServiceRequest{ID: 1, Status: "in_progress", AgentID: &mine, CreatedAt: now.Add(-time.Hour)})
	r := agentRouter(f, asAgent, now)

	st := decode[requests.DashboardStats](t, do(t, r, http.MethodGet, "/agent/dashboard-stats/", nil))
	if st.TodayRequests != 1 || st.OngoingTasks != 1 {
		t.Fatalf("stats = %+v", st)
	}

	// served from cache while nothing changes through the API
	f.reqs.put(requests.ServiceRequest{ID: 2, Status: "assigned", AgentID: &mine, CreatedAt: now})
	st = decode[requests.DashboardStats](t, do(t, r, http.MethodGet, "/agent/dashboard-stats/", nil))
	if st.TodayRequests != 1 {
		t.Fatalf("cached stats = %+v", st)
	}

	do(t, r, http.MethodPut, "/agent/tasks/1/update-status/", map[string]string{"status": "completed"})
	st = decode[requests.DashboardStats](t, do(t, r, http.MethodGet, "/agent/dashboard-stats/", nil))
	if st.TodayRequests != 2 || st.CompletedTasks != 1 {
		t.Fatalf("fresh stats = %+v", st)
	}
}

func TestAdminStatsForUnknownAgent(t *testing.T) {
	f := newRequestsFixture()
	f.users.rows[9] = users.User{ID: 9, Email: "gone@x.io", UserType: "user"}
	w := do(t, agentRouter(f, asAdmin, time.Now()), http.MethodGet, "/agent/dashboard-stats/?email=gone@x.io", nil)
	if w.Code != http.StatusNotFound || message(t, w) != "Agent not found" {
		t.Fatalf("got %d %s", w.Code, w.Body)
	}
}
