package requests

import (
	"math"

	"github.com/Abin-1409/fuel-swift/internal/catalog"
	"github.com/Abin-1409/fuel-swift/internal/domain"
)

// QuoteError is a client-facing pricing failure; its text is returned as the API message.
type QuoteError string

func (e QuoteError) Error() string { return string(e) }

const (
	ErrInsufficientStock   QuoteError = "Insufficient stock"
	ErrQuantityRequired    QuoteError = "Either quantity_liters or amount_rupees is required"
	ErrInvalidTyreCount    QuoteError = "tyre_count must be one of 1, 2, 3, 4, 6, 8"
	ErrInvalidTyreType     QuoteError = "tyre_type must be tubeless, tube or nitrogen"
	ErrUnknownChargerType  QuoteError = "Unknown charger_type"
	ErrInvalidRequirement  QuoteError = "charging_requirement must be emergency, partial or full"
	ErrUnknownIssue        QuoteError = "Unknown issue"
	ErrPriceNotConfigured  QuoteError = "Price is not configured for this service"
	ErrServiceUnavailable  QuoteError = "Service is currently unavailable"
	ErrUnsupportedService  QuoteError = "Unsupported service type"
	ErrNonPositiveQuantity QuoteError = "Quantity must be greater than zero"
)

var validTyreCounts = map[int]bool{1: true, 2: true, 3: true, 4: true, 6: true, 8: true}

var chargingMultiplier = map[string]float64{
	"emergency": 0.5,
	"partial":   1.0,
	"full":      2.0,
}

type QuoteInput struct {
	ServiceType    domain.ServiceType
	QuantityLiters *float64
	AmountRupees   *float64
	Details        Details
}

// Quote is the authoritative price of a request. For fuel the liters/rupees pair
// is completed from whichever side the customer filled in.
type Quote struct {
	Total          float64
	QuantityLiters *float64
	AmountRupees   *float64
}

// Compute prices a request against the active service and its option price list.
func Compute(in QuoteInput, svc catalog.Service, prices catalog.Prices) (Quote, error) {
	if svc.Status != string(domain.ServiceActive) {
		return Quote{}, ErrServiceUnavailable
	}
	switch in.ServiceType {
	case domain.ServicePetrol, domain.ServiceDiesel:
		return quoteFuel(in, svc)
	case domain.ServiceAir:
		return quoteAir(in.Details, prices)
	case domain.ServiceEV:
		return quoteEV(in.Details, prices)
	case domain.ServiceMechanical:
		return quoteMechanical(in.Details, prices)
	}
	return Quote{}, ErrUnsupportedService
}

func quoteFuel(in QuoteInput, svc catalog.Service) (Quote, error) {
	if svc.Price <= 0 {
		return Quote{}, ErrPriceNotConfigured
	}
	var liters, rupees float64
	switch {
	case in.QuantityLiters != nil:
		liters = *in.QuantityLiters
		if liters <= 0 {
			return Quote{}, ErrNonPositiveQuantity
		}
		rupees = round2(liters * svc.Price)
	case in.AmountRupees != nil:
		rupees = round2(*in.AmountRupees)
		if rupees <= 0 {
			return Quote{}, ErrNonPositiveQuantity
		}
		liters = rupees / svc.Price
	default:
		return Quote{}, ErrQuantityRequired
	}
	liters = round2(liters)
	if liters > float64(svc.Stock) {
		return Quote{}, ErrInsufficientStock
	}
	return Quote{Total: rupees, QuantityLiters: &liters, AmountRupees: &rupees}, nil
}

func quoteAir(d Details, prices catalog.Prices) (Quote, error) {
	if d.TyreCount == nil || !validTyreCounts[*d.TyreCount] {
		return Quote{}, ErrInvalidTyreCount
	}
	perTyre, ok := prices["per_tyre"]
	if !ok {
		return Quote{}, ErrPriceNotConfigured
	}
	switch d.TyreType {
	case "", "tubeless", "tube":
	case "nitrogen":
		perTyre += prices["nitrogen"]
	default:
		return Quote{}, ErrInvalidTyreType
	}
	total := perTyre * float64(*d.TyreCount)
	if d.LeakDetection == "yes" {
		total += prices["leak_detection"]
	}
	return Quote{Total: round2(total)}, nil
}

func quoteEV(d Details, prices catalog.Prices) (Quote, error) {
	base, ok := prices[d.ChargerType]
	if d.ChargerType == "" || !ok {
		return Quote{}, ErrUnknownChargerType
	}
	mult, ok := chargingMultiplier[d.ChargingRequirement]
	if !ok {
		return Quote{}, ErrInvalidRequirement
	}
	return Quote{Total: round2(base * mult)}, nil
}

func quoteMechanical(d Details, prices catalog.Prices) (Quote, error) {
	price, ok := prices[d.Issue]
	if d.Issue == "" || !ok {
		return Quote{}, ErrUnknownIssue
	}
	return Quote{Total: round2(price)}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
