package handlers

import (
	"context"

	"github.com/Abin-1409/fuel-swift/internal/catalog"
	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/registrations"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

// The handlers depend on these narrow views of the repositories so they can
// run against in-memory fakes.

type UserStore interface {
	FindByID(ctx context.Context, id int64) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Exists(ctx context.Context, phone, email string) (phoneTaken, emailTaken bool, err error)
	List(ctx context.Context) ([]users.User, error)
	AgentsWithLoad(ctx context.Context) ([]users.AgentLoad, error)
	CountAgents(ctx context.Context) (int, error)
	Create(ctx context.Context, p users.CreateParams) (int64, error)
	Update(ctx context.Context, id int64, p users.UpdateParams) (*users.User, error)
	Delete(ctx context.Context, id int64) error
}

type CatalogStore interface {
	List(ctx context.Context) ([]catalog.Service, error)
	Get(ctx context.Context, id int64) (*catalog.Service, error)
	ActiveByType(ctx context.Context, serviceType string) (*catalog.Service, error)
	Create(ctx context.Context, p catalog.Params) (*catalog.Service, error)
	Update(ctx context.Context, id int64, p catalog.Params) (*catalog.Service, error)
	Delete(ctx context.Context, id int64) error
	Prices(ctx context.Context, serviceType string) (catalog.Prices, error)
	SetPrices(ctx context.Context, serviceType string, prices catalog.Prices) error
	StockByType(ctx context.Context) (map[string]int, error)
}

type RequestStore interface {
	Create(ctx context.Context, p requests.CreateParams) (requests.Created, error)
	Get(ctx context.Context, id int64) (*requests.ServiceRequest, error)
	List(ctx context.Context, f requests.Filter) ([]requests.ServiceRequest, error)
	TasksForAgent(ctx context.Context, agentID int64) ([]requests.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.RequestStatus) (*requests.ServiceRequest, error)
	Assign(ctx context.Context, id, agentID int64) (*requests.ServiceRequest, error)
}

type PaymentStore interface {
	Get(ctx context.Context, id int64) (*requests.ServiceRequest, error)
	GetPayment(ctx context.Context, id int64) (*requests.Payment, error)
	SetPaymentOrder(ctx context.Context, paymentID int64, orderID string) error
	MarkPaid(ctx context.Context, paymentID int64, orderID, gatewayPaymentID, signature string) error
	SetPaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error
}

type RegistrationStore interface {
	Create(ctx context.Context, p registrations.CreateParams) (*registrations.Request, error)
	SetProofPath(ctx context.Context, id int64, path string) error
	HasPending(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, status string) ([]registrations.Request, error)
	Get(ctx context.Context, id int64) (*registrations.Request, error)
	LatestByEmail(ctx context.Context, email string) (*registrations.Request, error)
	Approve(ctx context.Context, id int64) (*registrations.Request, error)
	Reject(ctx context.Context, id int64, reason string) (*registrations.Request, error)
}

type TokenIssuer interface {
	Issue(p security.Principal) (security.Tokens, security.RefreshClaims, error)
	ParseRefresh(tokenStr string) (security.Principal, security.RefreshClaims, error)
}

type RefreshTokens interface {
	Put(ctx context.Context, userID int64, jti string) error
	Consume(ctx context.Context, userID int64, jti string) error
}

// Cache is a JSON snapshot cache (store.JSONCache in production).
type Cache interface {
	Get(ctx context.Context, k string, dst any) (bool, error)
	Set(ctx context.Context, k string, v any) error
	Delete(ctx context.Context, k string) error
}
