package requests

import (
	"math"
	"time"

	"github.com/Abin-1409/fuel-swift/internal/domain"
)

type Earnings struct {
	Today float64 `json:"today"`
	Week  float64 `json:"week"`
	Month float64 `json:"month"`
}

// ResponseTime is measured in minutes from assignment to start of work.
type ResponseTime struct {
	Average float64 `json:"average"`
	Best    float64 `json:"best"`
}

type DashboardStats struct {
	TodayRequests    int            `json:"today_requests"`
	OngoingTasks     int            `json:"ongoing_tasks"`
	CompletedTasks   int            `json:"completed_tasks"`
	Earnings         Earnings       `json:"earnings"`
	ServiceBreakdown map[string]int `json:"service_breakdown"`
	ResponseTime     ResponseTime   `json:"response_time"`
}

// ComputeStats summarises one agent's tasks as seen at now. Days and months
// follow now's location; the week is the trailing seven days.
func ComputeStats(tasks []ServiceRequest, now time.Time) DashboardStats {
	st := DashboardStats{ServiceBreakdown: make(map[string]int, len(domain.ServiceTypes))}
	for _, t := range domain.ServiceTypes {
		st.ServiceBreakdown[string(t)] = 0
	}

	loc := now.Location()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	var (
		respTotal float64
		respN     int
		best      = math.Inf(1)
	)
	for _, t := range tasks {
		if !t.CreatedAt.Before(dayStart) {
			st.TodayRequests++
		}
		st.ServiceBreakdown[t.ServiceType]++

		switch domain.RequestStatus(t.Status) {
		case domain.RequestAssigned, domain.RequestInProgress:
			st.OngoingTasks++
		case domain.RequestCompleted:
			st.CompletedTasks++
			done := t.UpdatedAt
			if t.CompletedAt != nil {
				done = *t.CompletedAt
			}
			if !done.Before(dayStart) {
				st.Earnings.Today += t.TotalAmount
			}
			if !done.Before(weekStart) {
				st.Earnings.Week += t.TotalAmount
			}
			if !done.Before(monthStart) {
				st.Earnings.Month += t.TotalAmount
			}
		}

		if t.AssignedAt != nil && t.StartedAt != nil && !t.StartedAt.Before(*t.AssignedAt) {
			m := t.StartedAt.Sub(*t.AssignedAt).Minutes()
			respTotal += m
			respN++
			best = math.Min(best, m)
		}
	}

	st.Earnings.Today = round2(st.Earnings.Today)
	st.Earnings.Week = round2(st.Earnings.Week)
	st.Earnings.Month = round2(st.Earnings.Month)
	if respN > 0 {
		st.ResponseTime.Average = math.Round(respTotal/float64(respN)*10) / 10
		st.ResponseTime.Best = math.Round(best*10) / 10
	}
	return st
}
