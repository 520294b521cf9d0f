package requests

import "time"

// Details holds the service-specific form fields (stored as JSONB).
type Details struct {
	TyreCount           *int   `json:"tyre_count,omitempty"`
	TyreType            string `json:"tyre_type,omitempty"`
	LeakDetection       string `json:"leak_detection,omitempty"`
	ChargerType         string `json:"charger_type,omitempty"`
	BatteryPercentage   *int   `json:"battery_percentage,omitempty"`
	ChargingRequirement string `json:"charging_requirement,omitempty"`
	VehicleMake         string `json:"vehicle_make,omitempty"`
	VehicleModel        string `json:"vehicle_model,omitempty"`
	Issue               string `json:"issue,omitempty"`
}

// ServiceRequest mirrors service_requests joined with the customer, agent and payment.
type ServiceRequest struct {
	ID             int64    `json:"id"`
	UserID         int64    `json:"user_id"`
	UserName       string   `json:"user_name"`
	UserEmail      string   `json:"user_email"`
	UserPhone      string   `json:"user_phone"`
	ServiceID      int64    `json:"service_id"`
	ServiceType    string   `json:"service_type"`
	VehicleType    string   `json:"vehicle_type"`
	VehicleNumber  string   `json:"vehicle_number"`
	QuantityLiters *float64 `json:"quantity_liters"`
	AmountRupees   *float64 `json:"amount_rupees"`
	Details
	TotalAmount   float64    `json:"total_amount"`
	DeliveryTime  time.Time  `json:"delivery_time"`
	LocationLat   float64    `json:"location_lat"`
	LocationLng   float64    `json:"location_lng"`
	Notes         string     `json:"notes"`
	Status        string     `json:"status"`
	PaymentID     *int64     `json:"payment_id"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	AgentID       *int64     `json:"agent_id"`
	AgentName     *string    `json:"agent_name"`
	AgentEmail    *string    `json:"agent_email"`
	AssignedAt    *time.Time `json:"assigned_at"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Payment mirrors the payments table.
type Payment struct {
	ID               int64      `json:"id"`
	RequestID        int64      `json:"request_id"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	Method           string     `json:"method"`
	Status           string     `json:"status"`
	GatewayOrderID   *string    `json:"gateway_order_id"`
	GatewayPaymentID *string    `json:"gateway_payment_id"`
	VerifiedAt       *time.Time `json:"verified_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Status        string
	ServiceType   string
	PaymentStatus string
	UserID        int64
	AgentID       int64
	UserEmail     string
	Search        string // user name, vehicle number or service type, case-insensitive
}
