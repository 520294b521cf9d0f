package domain

import "strings"

type ServiceType string

const (
	ServicePetrol     ServiceType = "petrol"
	ServiceDiesel     ServiceType = "diesel"
	ServiceEV         ServiceType = "ev"
	ServiceAir        ServiceType = "air"
	ServiceMechanical ServiceType = "mechanical"
)

// ServiceTypes lists every catalog type in display order.
var ServiceTypes = []ServiceType{ServicePetrol, ServiceDiesel, ServiceEV, ServiceAir, ServiceMechanical}

// ParseServiceType accepts the catalog codes plus the "electric" alias used by the dashboards.
func ParseServiceType(raw string) (ServiceType, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "electric" {
		s = string(ServiceEV)
	}
	for _, t := range ServiceTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsFuel reports whether the type is sold by the liter.
func (t ServiceType) IsFuel() bool { return t == ServicePetrol || t == ServiceDiesel }

// DefaultName is used when an admin creates a service without a name.
func (t ServiceType) DefaultName() string {
	switch t {
	case ServicePetrol:
		return "Petrol Service"
	case ServiceDiesel:
		return "Diesel Service"
	case ServiceEV:
		return "EV Charging"
	case ServiceAir:
		return "Air Filling"
	case ServiceMechanical:
		return "Mechanical Work"
	}
	return "Service"
}

// DefaultUnit is the stock unit of the type.
func (t ServiceType) DefaultUnit() string {
	switch t {
	case ServicePetrol, ServiceDiesel:
		return "liters"
	case ServiceEV:
		return "stations"
	case ServiceAir:
		return "pumps"
	case ServiceMechanical:
		return "mechanics"
	}
	return ""
}

// AvailabilityThreshold is the stock a type must exceed to be offered on the home page.
func (t ServiceType) AvailabilityThreshold() int {
	if t.IsFuel() {
		return 100
	}
	return 0
}

type ServiceStatus string

const (
	ServiceActive      ServiceStatus = "active"
	ServiceInactive    ServiceStatus = "inactive"
	ServiceMaintenance ServiceStatus = "maintenance"
)

func ValidServiceStatus(s string) bool {
	switch ServiceStatus(s) {
	case ServiceActive, ServiceInactive, ServiceMaintenance:
		return true
	}
	return false
}

type UserType string

const (
	UserCustomer UserType = "user"
	UserAgent    UserType = "agent"
	UserAdmin    UserType = "admin"
)

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// IDProofTypes accepted on agent registration.
var IDProofTypes = map[string]bool{
	"aadhaar":         true,
	"pan":             true,
	"driving_license": true,
	"voter_id":        true,
	"passport":        true,
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentInitiated PaymentStatus = "initiated"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCODStatus PaymentStatus = "cod"
)

func ValidPaymentStatus(s string) bool {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentInitiated, PaymentSuccess, PaymentFailed, PaymentCODStatus:
		return true
	}
	return false
}
