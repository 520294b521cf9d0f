package requests

import (
	"testing"
	"time"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	tasks := []ServiceRequest{
		{
			ServiceType: "petrol", Status: "completed", TotalAmount: 500,
			CreatedAt: now.Add(-2 * time.Hour), AssignedAt: at(-2 * time.Hour), StartedAt: at(-110 * time.Minute), CompletedAt: at(-time.Hour),
		},
		{
			ServiceType: "ev", Status: "completed", TotalAmount: 250.5,
			CreatedAt: now.AddDate(0, 0, -3), AssignedAt: at(-72 * time.Hour), StartedAt: at(-72*time.Hour + 30*time.Minute), CompletedAt: at(-70 * time.Hour),
		},
		{
			ServiceType: "air", Status: "completed", TotalAmount: 100,
			CreatedAt: now.AddDate(0, -1, 0), CompletedAt: at(-30 * 24 * time.Hour),
		},
		{ServiceType: "mechanical", Status: "in_progress", CreatedAt: now.Add(-time.Hour)},
		{ServiceType: "petrol", Status: "assigned", CreatedAt: now.AddDate(0, 0, -1)},
		{ServiceType: "diesel", Status: "cancelled", CreatedAt: now.Add(-5 * time.Hour)},
	}

	st := ComputeStats(tasks, now)
	if st.TodayRequests != 3 {
		t.Errorf("TodayRequests = %d", st.TodayRequests)
	}
	if st.OngoingTasks != 2 || st.CompletedTasks != 3 {
		t.Errorf("ongoing %d completed %d", st.OngoingTasks, st.CompletedTasks)
	}
	if st.Earnings.Today != 500 || st.Earnings.Week != 750.5 || st.Earnings.Month != 750.5 {
		t.Errorf("earnings = %+v", st.Earnings)
	}
	if st.ServiceBreakdown["petrol"] != 2 || st.ServiceBreakdown["ev"] != 1 || st.ServiceBreakdown["diesel"] != 1 {
		t.Errorf("breakdown = %v", st.ServiceBreakdown)
	}
	if st.ResponseTime.Average != 20 || st.ResponseTime.Best != 10 {
		t.Errorf("response = %+v", st.ResponseTime)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil, time.Now())
	if len(st.ServiceBreakdown) != 5 {
		t.Fatalf("breakdown keys = %v", st.ServiceBreakdown)
	}
	if st.ResponseTime.Best != 0 {
		t.Errorf("best = %v", st.ResponseTime.Best)
	}
}
