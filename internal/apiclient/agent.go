package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/requests"
)

func emailQuery(email string) url.Values {
	if email == "" {
		return nil
	}
	return url.Values{"email": {email}}
}

// AssignedTasks lists an agent's tasks. An empty email means the caller.
func (c *Client) AssignedTasks(ctx context.Context, email string) ([]requests.ServiceRequest, error) {
	var out []requests.ServiceRequest
	if err := c.do(ctx, http.MethodGet, "/api/agent/assigned-tasks/", emailQuery(email), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DashboardStats(ctx context.Context, email string) (*requests.DashboardStats, error) {
	var out requests.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/agent/dashboard-stats/", emailQuery(email), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, taskID int64, agentEmail string, status domain.RequestStatus) (*requests.ServiceRequest, error) {
	var out requests.ServiceRequest
	body := map[string]string{"agent_email": agentEmail, "status": string(status)}
	if err := c.do(ctx, http.MethodPut, idPath("/api/agent/tasks/%d/update-status/", taskID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskPoller fetches an agent's tasks once on Run and then every Interval.
// Every result, failures included, goes to OnTasks; a failed fetch is simply
// tried again on the next tick.
type TaskPoller struct {
	Client   *Client
	Email    string
	Interval time.Duration
	OnTasks  func([]requests.ServiceRequest, error)
}

// Run blocks until ctx is done and returns its error.
func (p *TaskPoller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	p.poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *TaskPoller) poll(ctx context.Context) {
	tasks, err := p.Client.AssignedTasks(ctx, p.Email)
	if ctx.Err() != nil {
		return
	}
	p.OnTasks(tasks, err)
}
