package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/catalog"
	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
)

const stockCacheKey = "stock"

type CatalogHandler struct {
	logger *zap.Logger

	catalog CatalogStore
	users   UserStore
	stock   Cache
}

func NewCatalogHandler(logger *zap.Logger, catalogRepo CatalogStore, usersRepo UserStore, stockCache Cache) *CatalogHandler {
	return &CatalogHandler{logger: logger, catalog: catalogRepo, users: usersRepo, stock: stockCache}
}

func (h *CatalogHandler) internal(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	resp.Error(c, http.StatusInternalServerError, "internal error")
}

func (h *CatalogHandler) List(c *gin.Context) {
	list, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.internal(c, "list services failed", err)
		return
	}
	if list == nil {
		list = []catalog.Service{}
	}
	resp.OK(c, list)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.notFoundOr(c, "get service failed", err)
		return
	}
	resp.OK(c, s)
}

// ByType returns the newest active service of a type.
func (h *CatalogHandler) ByType(c *gin.Context) {
	st, ok := domain.ParseServiceType(c.Param("type"))
	if !ok {
		resp.Error(c, http.StatusNotFound, catalog.ErrNotFound.Error())
		return
	}
	s, err := h.catalog.ActiveByType(c.Request.Context(), string(st))
	if err != nil {
		h.notFoundOr(c, "service by type failed", err)
		return
	}
	resp.OK(c, s)
}

type serviceReq struct {
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Stock       *int     `json:"stock"`
	Unit        *string  `json:"unit"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Status      *string  `json:"status"`
}

// apply overlays the request onto base and validates the result.
func (r serviceReq) apply(base catalog.Params) (catalog.Params, error) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&base.Name, r.Name)
	set(&base.Description, r.Description)
	set(&base.Unit, r.Unit)
	set(&base.Currency, r.Currency)
	if r.Type != nil {
		st, ok := domain.ParseServiceType(*r.Type)
		if !ok {
			return base, errors.New("type must be one of petrol, diesel, ev, air, mechanical")
		}
		base.Type = string(st)
	}
	if r.Status != nil {
		base.Status = strings.ToLower(strings.TrimSpace(*r.Status))
	}
	if r.Stock != nil {
		base.Stock = *r.Stock
	}
	if r.Price != nil {
		base.Price = *r.Price
	}

	st := domain.ServiceType(base.Type)
	switch {
	case base.Type == "":
		return base, errors.New("Missing field: type")
	case base.Stock < 0:
		return base, errors.New("stock must not be negative")
	case base.Price < 0:
		return base, errors.New("price must not be negative")
	}
	if base.Name == "" {
		base.Name = st.DefaultName()
	}
	if base.Unit == "" {
		base.Unit = st.DefaultUnit()
	}
	if base.Currency == "" {
		base.Currency = "INR"
	}
	if base.Status == "" {
		base.Status = string(domain.ServiceActive)
	}
	if !domain.ValidServiceStatus(base.Status) {
		return base, errors.New("status must be one of active, inactive, maintenance")
	}
	return base, nil
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req serviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	params, err := req.apply(catalog.Params{})
	if err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.catalog.Create(c.Request.Context(), params)
	if err != nil {
		h.internal(c, "create service failed", err)
		return
	}
	h.dropStock(c)
	resp.Created(c, s)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req serviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	ctx := c.Request.Context()
	cur, err := h.catalog.Get(ctx, id)
	if err != nil {
		h.notFoundOr(c, "get service failed", err)
		return
	}
	params, err := req.apply(catalog.Params{
		Name: cur.Name, Type: cur.Type, Description: cur.Description, Stock: cur.Stock,
		Unit: cur.Unit, Price: cur.Price, Currency: cur.Currency, Status: cur.Status,
	})
	if err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.catalog.Update(ctx, id, params)
	if err != nil {
		h.notFoundOr(c, "update service failed", err)
		return
	}
	h.dropStock(c)
	resp.OK(c, s)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		h.notFoundOr(c, "delete service failed", err)
		return
	}
	h.dropStock(c)
	resp.Msg(c, http.StatusOK, "Service deleted")
}

// Prices serves {"price_<code>": price} for one priced type.
func (h *CatalogHandler) Prices(serviceType domain.ServiceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		prices, err := h.catalog.Prices(c.Request.Context(), string(serviceType))
		if err != nil {
			h.internal(c, "load prices failed", err)
			return
		}
		resp.OK(c, prices.Keyed())
	}
}

// SetPrices accepts {"<code>": price} or {"price_<code>": price}.
func (h *CatalogHandler) SetPrices(c *gin.Context) {
	st, ok := domain.ParseServiceType(c.Param("service_type"))
	if !ok || catalog.PriceCodes[string(st)] == nil {
		resp.Error(c, http.StatusBadRequest, "prices are only kept for air, electric and mechanical")
		return
	}
	var body map[string]float64
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	prices := catalog.Prices{}
	for k, v := range body {
		code := strings.TrimPrefix(k, "price_")
		if !catalog.ValidPriceCode(string(st), code) {
			resp.Error(c, http.StatusBadRequest, "unknown price code: "+k)
			return
		}
		if v < 0 {
			resp.Error(c, http.StatusBadRequest, "price must not be negative")
			return
		}
		prices[code] = v
	}
	ctx := c.Request.Context()
	if err := h.catalog.SetPrices(ctx, string(st), prices); err != nil {
		h.internal(c, "set prices failed", err)
		return
	}
	all, err := h.catalog.Prices(ctx, string(st))
	if err != nil {
		h.internal(c, "load prices failed", err)
		return
	}
	resp.OK(c, all.Keyed())
}

// Availability answers {"<key>": n}. Mechanics and technicians count the
// active agents on top of the service stock; chargers are the ev stock alone.
func (h *CatalogHandler) Availability(serviceType domain.ServiceType, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		n := 0
		s, err := h.catalog.ActiveByType(ctx, string(serviceType))
		switch {
		case err == nil:
			n = s.Stock
		case !errors.Is(err, catalog.ErrNotFound):
			h.internal(c, "availability lookup failed", err)
			return
		}
		if serviceType != domain.ServiceEV {
			agents, err := h.users.CountAgents(ctx)
			if err != nil {
				h.internal(c, "count agents failed", err)
				return
			}
			n += agents
		}
		resp.OK(c, gin.H{key: n})
	}
}

func (h *CatalogHandler) Stock(c *gin.Context) {
	ctx := c.Request.Context()
	var snap catalog.Stock
	if hit, err := h.stock.Get(ctx, stockCacheKey, &snap); err != nil {
		h.logger.Warn("stock cache read failed", zap.Error(err))
	} else if hit {
		resp.OK(c, snap)
		return
	}

	byType, err := h.catalog.StockByType(ctx)
	if err != nil {
		h.internal(c, "stock by type failed", err)
		return
	}
	snap = catalog.Stock{
		Petrol:     byType[string(domain.ServicePetrol)],
		Diesel:     byType[string(domain.ServiceDiesel)],
		EV:         byType[string(domain.ServiceEV)],
		Air:        byType[string(domain.ServiceAir)],
		Mechanical: byType[string(domain.ServiceMechanical)],
		UpdatedAt:  time.Now().UTC(),
	}
	if err := h.stock.Set(ctx, stockCacheKey, snap); err != nil {
		h.logger.Warn("stock cache write failed", zap.Error(err))
	}
	resp.OK(c, snap)
}

func (h *CatalogHandler) dropStock(c *gin.Context) {
	if err := h.stock.Delete(c.Request.Context(), stockCacheKey); err != nil {
		h.logger.Warn("stock cache invalidate failed", zap.Error(err))
	}
}

func (h *CatalogHandler) notFoundOr(c *gin.Context, msg string, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		resp.Error(c, http.StatusNotFound, catalog.ErrNotFound.Error())
		return
	}
	h.internal(c, msg, err)
}
