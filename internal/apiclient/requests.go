package apiclient

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

// ServiceRequestForm is the request form payload. Only presence of required
// fields is checked locally; prices, stock and option values are the server's call.
type ServiceRequestForm struct {
	ServiceType   string `json:"service_type"`
	UserEmail     string `json:"user_email"`
	VehicleType   string `json:"vehicle_type"`
	VehicleNumber string `json:"vehicle_number"`

	QuantityLiters *float64 `json:"quantity_liters,omitempty"`
	AmountRupees   *float64 `json:"amount_rupees,omitempty"`

	TyreCount     *int   `json:"tyre_count,omitempty"`
	TyreType      string `json:"tyre_type,omitempty"`
	LeakDetection string `json:"leak_detection,omitempty"`

	ChargerType         string `json:"charger_type,omitempty"`
	BatteryPercentage   *int   `json:"battery_percentage,omitempty"`
	ChargingRequirement string `json:"charging_requirement,omitempty"`
	VehicleMake         string `json:"vehicle_make,omitempty"`
	VehicleModel        string `json:"vehicle_model,omitempty"`

	Issue string `json:"issue,omitempty"`

	DeliveryTime  *time.Time `json:"delivery_time,omitempty"`
	LocationLat   *float64   `json:"location_lat,omitempty"`
	LocationLng   *float64   `json:"location_lng,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
}

// MissingFieldError names the first required field left empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string { return "Missing field: " + e.Field }

type requiredField struct {
	name    string
	missing bool
}

func (f ServiceRequestForm) Validate() error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	fields := []requiredField{
		{"service_type", blank(f.ServiceType)},
		{"user_email", blank(f.UserEmail)},
		{"vehicle_type", blank(f.VehicleType)},
		{"vehicle_number", blank(f.VehicleNumber)},
		{"location_lat", f.LocationLat == nil},
		{"location_lng", f.LocationLng == nil},
	}
	st, _ := domain.ParseServiceType(f.ServiceType)
	switch st {
	case domain.ServicePetrol, domain.ServiceDiesel:
		fields = append(fields,
			requiredField{"quantity_liters", f.QuantityLiters == nil && f.AmountRupees == nil},
			requiredField{"delivery_time", f.DeliveryTime == nil},
		)
	case domain.ServiceAir:
		fields = append(fields, requiredField{"tyre_count", f.TyreCount == nil})
	case domain.ServiceEV:
		fields = append(fields,
			requiredField{"charger_type", blank(f.ChargerType)},
			requiredField{"charging_requirement", blank(f.ChargingRequirement)},
		)
	case domain.ServiceMechanical:
		fields = append(fields, requiredField{"issue", blank(f.Issue)})
	}
	for _, r := range fields {
		if r.missing {
			return &MissingFieldError{Field: r.name}
		}
	}
	return nil
}

// Submission is the server's answer to a created request. TotalAmount is authoritative.
type Submission struct {
	Message       string  `json:"message"`
	RequestID     int64   `json:"request_id"`
	PaymentID     int64   `json:"payment_id"`
	TotalAmount   float64 `json:"total_amount"`
	PaymentStatus string  `json:"payment_status"`
}

func (c *Client) SubmitRequest(ctx context.Context, f ServiceRequestForm) (*Submission, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out Submission
	if err := c.do(ctx, http.MethodPost, "/api/service-request/create/", nil, f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitCOD submits the form as cash on delivery; no gateway order follows.
func (c *Client) SubmitCOD(ctx context.Context, f ServiceRequestForm) (*Submission, error) {
	f.PaymentMethod = string(domain.PaymentCOD)
	return c.SubmitRequest(ctx, f)
}

// EstimateFuel mirrors the liters and rupees inputs of the fuel form for display.
// Whichever of liters or rupees is given drives the other; liters wins when both are.
func EstimateFuel(pricePerLiter float64, liters, rupees *float64) (l, r float64, err error) {
	if pricePerLiter <= 0 {
		return 0, 0, fmt.Errorf("price per liter must be positive")
	}
	round := func(v float64) float64 { return math.Round(v*100) / 100 }
	switch {
	case liters != nil:
		return round(*liters), round(*liters * pricePerLiter), nil
	case rupees != nil:
		return round(*rupees / pricePerLiter), round(*rupees), nil
	}
	return 0, 0, fmt.Errorf("liters or rupees required")
}

// RequestFilter narrows the admin request list; empty fields are ignored.
type RequestFilter struct {
	Status        string
	ServiceType   string
	PaymentStatus string
	UserEmail     string
	Search        string
}

func (f RequestFilter) query() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"status":         f.Status,
		"service_type":   f.ServiceType,
		"payment_status": f.PaymentStatus,
		"user_email":     f.UserEmail,
		"search":         f.Search,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// ServiceRequests lists requests visible to the caller: all of them for an
// admin (filtered), the caller's own otherwise.
func (c *Client) ServiceRequests(ctx context.Context, f RequestFilter) ([]requests.ServiceRequest, error) {
	var out []requests.ServiceRequest
	if err := c.do(ctx, http.MethodGet, "/api/service-requests/", f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (*requests.ServiceRequest, error) {
	var out requests.ServiceRequest
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, idPath("/api/service-requests/%d/update-status/", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AssignAgent(ctx context.Context, requestID, agentID int64) (*requests.ServiceRequest, error) {
	var out requests.ServiceRequest
	body := map[string]int64{"agent_id": agentID}
	if err := c.do(ctx, http.MethodPut, idPath("/api/service-requests/%d/assign-agent/", requestID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AvailableAgents(ctx context.Context) ([]users.AgentLoad, error) {
	var out []users.AgentLoad
	if err := c.do(ctx, http.MethodGet, "/api/available-agents/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
