package catalog

import "time"

// Service mirrors the services table.
type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Stock       int       `json:"stock"`
	Unit        string    `json:"unit"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Prices maps an option code (e.g. "flat_tyre") to its price.
type Prices map[string]float64

// Keyed returns the wire form {"price_<code>": price} the request forms read.
func (p Prices) Keyed() map[string]float64 {
	out := make(map[string]float64, len(p))
	for code, v := range p {
		out["price_"+code] = v
	}
	return out
}

// Stock is the summed stock of active services per type.
type Stock struct {
	Petrol     int       `json:"petrol"`
	Diesel     int       `json:"diesel"`
	EV         int       `json:"ev"`
	Air        int       `json:"air"`
	Mechanical int       `json:"mechanical"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PriceCodes lists the option codes each priced service type accepts.
var PriceCodes = map[string][]string{
	"air":        {"per_tyre", "nitrogen", "leak_detection"},
	"ev":         {"type1", "type2", "ccs", "chademo", "tesla"},
	"mechanical": {"dead_battery", "flat_tyre", "overheating", "brake_issues", "starter_motor", "clutch_gear", "electrical", "fluid_leak", "chain_belt", "key_lockout"},
}

// ValidPriceCode reports whether code is an option of serviceType.
func ValidPriceCode(serviceType, code string) bool {
	for _, c := range PriceCodes[serviceType] {
		if c == code {
			return true
		}
	}
	return false
}
