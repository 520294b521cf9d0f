package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Abin-1409/fuel-swift/internal/catalog"
	"github.com/Abin-1409/fuel-swift/internal/domain"
)

func (c *Client) Services(ctx context.Context) ([]catalog.Service, error) {
	var out []catalog.Service
	if err := c.do(ctx, http.MethodGet, "/api/services/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Service(ctx context.Context, id int64) (*catalog.Service, error) {
	var out catalog.Service
	if err := c.do(ctx, http.MethodGet, idPath("/api/services/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServiceByType returns the active service of a type ("electric" is accepted for ev).
func (c *Client) ServiceByType(ctx context.Context, serviceType string) (*catalog.Service, error) {
	var out catalog.Service
	if err := c.do(ctx, http.MethodGet, "/api/services/type/"+serviceType+"/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AirPrices(ctx context.Context) (map[string]float64, error) {
	return c.prices(ctx, "air")
}

func (c *Client) ElectricPrices(ctx context.Context) (map[string]float64, error) {
	return c.prices(ctx, "electric")
}

func (c *Client) MechanicalPrices(ctx context.Context) (map[string]float64, error) {
	return c.prices(ctx, "mechanical")
}

// Prices picks the price list endpoint for a service type.
func (c *Client) Prices(ctx context.Context, st domain.ServiceType) (map[string]float64, error) {
	switch st {
	case domain.ServiceAir:
		return c.AirPrices(ctx)
	case domain.ServiceEV:
		return c.ElectricPrices(ctx)
	case domain.ServiceMechanical:
		return c.MechanicalPrices(ctx)
	}
	return nil, fmt.Errorf("no price list for %s", st)
}

func (c *Client) prices(ctx context.Context, path string) (map[string]float64, error) {
	out := map[string]float64{}
	if err := c.do(ctx, http.MethodGet, "/api/services/"+path+"/prices/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Availability returns the mechanics, technicians or chargers count for
// mechanical, air and ev respectively.
func (c *Client) Availability(ctx context.Context, st domain.ServiceType) (int, error) {
	var path, key string
	switch st {
	case domain.ServiceMechanical:
		path, key = "/api/services/mechanical/mechanics", "mechanics"
	case domain.ServiceAir:
		path, key = "/api/services/air/technicians", "technicians"
	case domain.ServiceEV:
		path, key = "/api/services/electric/chargers", "chargers"
	default:
		return 0, fmt.Errorf("no availability endpoint for %s", st)
	}
	var out map[string]int
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return 0, err
	}
	return out[key], nil
}

// StockSnapshot is the summed stock per type.
type StockSnapshot catalog.Stock

// Available reports whether a type has more stock than its home page threshold.
func (s StockSnapshot) Available(st domain.ServiceType) bool {
	var n int
	switch st {
	case domain.ServicePetrol:
		n = s.Petrol
	case domain.ServiceDiesel:
		n = s.Diesel
	case domain.ServiceEV:
		n = s.EV
	case domain.ServiceAir:
		n = s.Air
	case domain.ServiceMechanical:
		n = s.Mechanical
	default:
		return false
	}
	return n > st.AvailabilityThreshold()
}

func (c *Client) Stock(ctx context.Context) (StockSnapshot, error) {
	var out StockSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/services/stock/", nil, nil, &out); err != nil {
		return StockSnapshot{}, err
	}
	return out, nil
}

// ServiceInput is a create or partial update of a catalog entry.
type ServiceInput struct {
	Name        *string  `json:"name,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Description *string  `json:"description,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

func (c *Client) CreateService(ctx context.Context, in ServiceInput) (*catalog.Service, error) {
	var out catalog.Service
	if err := c.do(ctx, http.MethodPost, "/api/services/create/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateService(ctx context.Context, id int64, in ServiceInput) (*catalog.Service, error) {
	var out catalog.Service
	if err := c.do(ctx, http.MethodPut, idPath("/api/services/%d/", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteService(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/services/%d/", id), nil, nil, nil)
}

// SetPrices replaces option prices, keyed by code ("flat_tyre") or wire key ("price_flat_tyre").
func (c *Client) SetPrices(ctx context.Context, serviceType string, prices map[string]float64) (map[string]float64, error) {
	out := map[string]float64{}
	if err := c.do(ctx, http.MethodPut, "/api/services/prices/"+serviceType+"/", nil, prices, &out); err != nil {
		return nil, err
	}
	return out, nil
}
