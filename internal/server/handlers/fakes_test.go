package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/catalog"
	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/registrations"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/server/mw"
	"github.com/Abin-1409/fuel-swift/internal/store"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

// ---- users ----

type fakeUsers struct {
	mu   sync.Mutex
	rows map[int64]users.User
	next int64
}

func newFakeUsers(seed ...users.User) *fakeUsers {
	f := &fakeUsers{rows: map[int64]users.User{}}
	for _, u := range seed {
		if u.ID > f.next {
			f.next = u.ID
		}
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) Exists(_ context.Context, phone, email string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var p, e bool
	for _, u := range f.rows {
		p = p || u.PhoneNumber == phone
		e = e || u.Email == email
	}
	return p, e, nil
}

func (f *fakeUsers) List(context.Context) ([]users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []users.User
	for _, u := range f.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeUsers) AgentsWithLoad(ctx context.Context) ([]users.AgentLoad, error) {
	all, _ := f.List(ctx)
	var out []users.AgentLoad
	for _, u := range all {
		if u.UserType == string(domain.UserAgent) {
			out = append(out, users.AgentLoad{User: u})
		}
	}
	return out, nil
}

func (f *fakeUsers) CountAgents(ctx context.Context) (int, error) {
	a, _ := f.AgentsWithLoad(ctx)
	return len(a), nil
}

func (f *fakeUsers) Create(_ context.Context, p users.CreateParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.PhoneNumber == p.PhoneNumber {
			return 0, users.ErrPhoneTaken
		}
		if u.Email == p.Email {
			return 0, users.ErrEmailTaken
		}
	}
	f.next++
	f.rows[f.next] = users.User{
		ID: f.next, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, PhoneNumber: p.PhoneNumber,
		Address: p.Address, Photo: p.Photo, PasswordHash: p.PasswordHash, UserType: p.UserType, IsActive: true,
	}
	return f.next, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, p users.UpdateParams) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Photo != nil {
		u.Photo = p.Photo
	}
	f.rows[id] = u
	return &u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return users.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// ---- catalog ----

type fakeCatalog struct {
	services []catalog.Service
	prices   map[string]catalog.Prices
}

func (f *fakeCatalog) List(context.Context) ([]catalog.Service, error) { return f.services, nil }

func (f *fakeCatalog) Get(_ context.Context, id int64) (*catalog.Service, error) {
	for i := range f.services {
		if f.services[i].ID == id {
			s := f.services[i]
			return &s, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) ActiveByType(_ context.Context, t string) (*catalog.Service, error) {
	for i := len(f.services) - 1; i >= 0; i-- {
		if s := f.services[i]; s.Type == t && s.Status == "active" {
			return &s, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) Create(_ context.Context, p catalog.Params) (*catalog.Service, error) {
	s := catalog.Service{
		ID: int64(len(f.services) + 1), Name: p.Name, Type: p.Type, Description: p.Description, Stock: p.Stock,
		Unit: p.Unit, Price: p.Price, Currency: p.Currency, Status: p.Status,
	}
	f.services = append(f.services, s)
	return &s, nil
}

func (f *fakeCatalog) Update(_ context.Context, id int64, p catalog.Params) (*catalog.Service, error) {
	for i := range f.services {
		if f.services[i].ID == id {
			f.services[i] = catalog.Service{
				ID: id, Name: p.Name, Type: p.Type, Description: p.Description, Stock: p.Stock,
				Unit: p.Unit, Price: p.Price, Currency: p.Currency, Status: p.Status,
			}
			s := f.services[i]
			return &s, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) Delete(_ context.Context, id int64) error {
	for i := range f.services {
		if f.services[i].ID == id {
			f.services = append(f.services[:i], f.services[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (f *fakeCatalog) Prices(_ context.Context, t string) (catalog.Prices, error) {
	out := catalog.Prices{}
	for k, v := range f.prices[t] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCatalog) SetPrices(_ context.Context, t string, p catalog.Prices) error {
	if f.prices == nil {
		f.prices = map[string]catalog.Prices{}
	}
	if f.prices[t] == nil {
		f.prices[t] = catalog.Prices{}
	}
	for k, v := range p {
		f.prices[t][k] = v
	}
	return nil
}

func (f *fakeCatalog) StockByType(context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, s := range f.services {
		if s.Status == "active" {
			out[s.Type] += s.Stock
		}
	}
	return out, nil
}

// ---- requests and payments ----

type fakeRequests struct {
	mu    sync.Mutex
	users *fakeUsers
	reqs  map[int64]requests.ServiceRequest
	pays  map[int64]requests.Payment
	next  int64
}

func newFakeRequests(u *fakeUsers) *fakeRequests {
	return &fakeRequests{users: u, reqs: map[int64]requests.ServiceRequest{}, pays: map[int64]requests.Payment{}}
}

// put seeds a request with its payment row (same id).
func (f *fakeRequests) put(r requests.ServiceRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID > f.next {
		f.next = r.ID
	}
	pid := r.ID
	r.PaymentID = &pid
	f.reqs[r.ID] = r
	f.pays[r.ID] = requests.Payment{ID: r.ID, RequestID: r.ID, Amount: r.TotalAmount, Status: r.PaymentStatus, Method: r.PaymentMethod}
}

func (f *fakeRequests) Create(_ context.Context, p requests.CreateParams) (requests.Created, error) {
	status := string(domain.PaymentPending)
	if p.PaymentMethod == domain.PaymentCOD {
		status = string(domain.PaymentCODStatus)
	}
	f.mu.Lock()
	f.next++
	id := f.next
	f.mu.Unlock()
	f.put(requests.ServiceRequest{
		ID: id, UserID: p.UserID, ServiceID: p.ServiceID, ServiceType: p.ServiceType, VehicleType: p.VehicleType,
		VehicleNumber: p.VehicleNumber, QuantityLiters: p.QuantityLiters, AmountRupees: p.AmountRupees, Details: p.Details,
		TotalAmount: p.TotalAmount, DeliveryTime: p.DeliveryTime, LocationLat: p.LocationLat, LocationLng: p.LocationLng,
		Notes: p.Notes, Status: string(domain.RequestPending), PaymentMethod: string(p.PaymentMethod), PaymentStatus: status,
		CreatedAt: time.Now(),
	})
	return requests.Created{RequestID: id, PaymentID: id, PaymentStatus: status, TotalAmount: p.TotalAmount}, nil
}

func (f *fakeRequests) Get(_ context.Context, id int64) (*requests.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return nil, requests.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRequests) List(_ context.Context, flt requests.Filter) ([]requests.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []requests.ServiceRequest
	for _, r := range f.reqs {
		switch {
		case flt.Status != "" && r.Status != flt.Status,
			flt.ServiceType != "" && r.ServiceType != flt.ServiceType,
			flt.PaymentStatus != "" && r.PaymentStatus != flt.PaymentStatus,
			flt.UserID > 0 && r.UserID != flt.UserID,
			flt.AgentID > 0 && (r.AgentID == nil || *r.AgentID != flt.AgentID):
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRequests) TasksForAgent(ctx context.Context, agentID int64) ([]requests.ServiceRequest, error) {
	return f.List(ctx, requests.Filter{AgentID: agentID})
}

func (f *fakeRequests) UpdateStatus(_ context.Context, id int64, from, to domain.RequestStatus) (*requests.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return nil, requests.ErrNotFound
	}
	if r.Status != string(from) {
		return nil, requests.ErrStatusChanged
	}
	r.Status = string(to)
	now := time.Now()
	switch to {
	case domain.RequestInProgress:
		r.StartedAt = &now
	case domain.RequestCompleted:
		r.CompletedAt = &now
	case domain.RequestPending:
		r.AgentID, r.AssignedAt = nil, nil
	}
	f.reqs[id] = r
	return &r, nil
}

func (f *fakeRequests) Assign(_ context.Context, id, agentID int64) (*requests.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return nil, requests.ErrNotFound
	}
	now := time.Now()
	r.AgentID, r.AssignedAt, r.Status = &agentID, &now, string(domain.RequestAssigned)
	f.reqs[id] = r
	return &r, nil
}

func (f *fakeRequests) GetPayment(_ context.Context, id int64) (*requests.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pays[id]
	if !ok {
		return nil, requests.ErrPaymentNotFound
	}
	return &p, nil
}

func (f *fakeRequests) mutatePayment(id int64, fn func(p *requests.Payment)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pays[id]
	if !ok {
		return requests.ErrPaymentNotFound
	}
	fn(&p)
	f.pays[id] = p
	r := f.reqs[p.RequestID]
	r.PaymentStatus = p.Status
	f.reqs[p.RequestID] = r
	return nil
}

func (f *fakeRequests) SetPaymentOrder(_ context.Context, id int64, orderID string) error {
	return f.mutatePayment(id, func(p *requests.Payment) {
		p.GatewayOrderID, p.Status = &orderID, string(domain.PaymentInitiated)
	})
}

func (f *fakeRequests) MarkPaid(ctx context.Context, id int64, orderID, paymentID, _ string) error {
	if p, err := f.GetPayment(ctx, id); err != nil || p.GatewayOrderID == nil || *p.GatewayOrderID != orderID {
		return requests.ErrPaymentNotFound
	}
	return f.mutatePayment(id, func(p *requests.Payment) {
		p.GatewayPaymentID, p.Status = &paymentID, string(domain.PaymentSuccess)
	})
}

func (f *fakeRequests) SetPaymentStatus(_ context.Context, id int64, s domain.PaymentStatus) error {
	return f.mutatePayment(id, func(p *requests.Payment) { p.Status = string(s) })
}

// ---- registrations ----

type fakeRegs struct {
	users *fakeUsers
	rows  []registrations.Request
}

func (f *fakeRegs) Create(_ context.Context, p registrations.CreateParams) (*registrations.Request, error) {
	for _, r := range f.rows {
		if r.Email == p.Email && r.Status == "pending" {
			return nil, registrations.ErrAlreadyPending
		}
	}
	r := registrations.Request{
		ID: int64(len(f.rows) + 1), FullName: p.FullName, PhoneNumber: p.PhoneNumber, Email: p.Email,
		PasswordHash: p.PasswordHash, IDProofType: p.IDProofType, IDProofNumber: p.IDProofNumber,
		Status: "pending", CreatedAt: time.Now(),
	}
	f.rows = append(f.rows, r)
	return &r, nil
}

func (f *fakeRegs) find(id int64) (*registrations.Request, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, registrations.ErrNotFound
}

func (f *fakeRegs) SetProofPath(_ context.Context, id int64, path string) error {
	r, err := f.find(id)
	if err != nil {
		return err
	}
	r.IDProofPath = path
	return nil
}

func (f *fakeRegs) HasPending(_ context.Context, email string) (bool, error) {
	for _, r := range f.rows {
		if r.Email == email && r.Status == "pending" {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegs) List(_ context.Context, status string) ([]registrations.Request, error) {
	var out []registrations.Request
	for i := len(f.rows) - 1; i >= 0; i-- {
		if status == "" || f.rows[i].Status == status {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeRegs) Get(_ context.Context, id int64) (*registrations.Request, error) {
	r, err := f.find(id)
	if err != nil {
		return nil, err
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegs) LatestByEmail(_ context.Context, email string) (*registrations.Request, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].Email == email {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, registrations.ErrNotFound
}

func (f *fakeRegs) Approve(ctx context.Context, id int64) (*registrations.Request, error) {
	r, err := f.find(id)
	if err != nil {
		return nil, err
	}
	if r.Status != "pending" {
		return nil, registrations.ErrNotPending
	}
	first, last := registrations.SplitName(r.FullName)
	uid, err := f.users.Create(ctx, users.CreateParams{
		FirstName: first, LastName: last, Email: r.Email, PhoneNumber: r.PhoneNumber,
		PasswordHash: r.PasswordHash, UserType: string(domain.UserAgent),
	})
	if err != nil {
		return nil, err
	}
	r.Status, r.UserID = "approved", &uid
	cp := *r
	return &cp, nil
}

func (f *fakeRegs) Reject(_ context.Context, id int64, reason string) (*registrations.Request, error) {
	r, err := f.find(id)
	if err != nil {
		return nil, err
	}
	if r.Status != "pending" {
		return nil, registrations.ErrNotPending
	}
	r.Status, r.Reason = "rejected", reason
	cp := *r
	return &cp, nil
}

// ---- cache, refresh tokens, events ----

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, k string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[k]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (f *fakeCache) Set(_ context.Context, k string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[k] = raw
	return nil
}

func (f *fakeCache) Delete(_ context.Context, k string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, k)
	return nil
}

type fakeRefresh struct {
	mu   sync.Mutex
	jtis map[string]bool
}

func (f *fakeRefresh) Put(_ context.Context, userID int64, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jtis == nil {
		f.jtis = map[string]bool{}
	}
	f.jtis[jti] = true
	return nil
}

func (f *fakeRefresh) Consume(_ context.Context, _ int64, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.jtis[jti] {
		return store.ErrRefreshInvalid
	}
	delete(f.jtis, jti)
	return nil
}

type recordedEvents struct {
	mu  sync.Mutex
	evs []events.Event
}

func (r *recordedEvents) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return nil
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.evs {
		out = append(out, ev.Type)
	}
	return out
}

// ---- http helpers ----

var nopLogger = zap.NewNop()

func testEngine(as *security.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if as != nil {
		p := *as
		r.Use(func(c *gin.Context) { mw.SetPrincipal(c, p) })
	}
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["message"].(string)
}

func ptr[T any](v T) *T { return &v }
