package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abin-1409/fuel-swift/internal/domain"
)

var (
	ErrNotFound        = errors.New("Service request not found")
	ErrPaymentNotFound = errors.New("Payment not found")
	// ErrStatusChanged means the row moved on between read and write.
	ErrStatusChanged = errors.New("request status changed concurrently")
)

type Repo struct {
	pg *pgxpool.Pool
}

func NewRepo(pg *pgxpool.Pool) *Repo {
	return &Repo{pg: pg}
}

const requestSelect = `
SELECT r.id, r.user_id, u.first_name || ' ' || u.last_name, u.email, u.phone_number,
       r.service_id, r.service_type, r.vehicle_type, r.vehicle_number,
       r.quantity_liters, r.amount_rupees, r.details, r.total_amount, r.delivery_time,
       r.location_lat, r.location_lng, r.notes, r.status,
       p.id, r.payment_method, r.payment_status,
       r.agent_id, a.first_name || ' ' || a.last_name, a.email,
       r.assigned_at, r.started_at, r.completed_at, r.created_at, r.updated_at
FROM service_requests r
JOIN users u ON u.id = r.user_id
LEFT JOIN users a ON a.id = r.agent_id
LEFT JOIN payments p ON p.request_id = r.id`

func scanRequest(row pgx.Row) (*ServiceRequest, error) {
	var s ServiceRequest
	err := row.Scan(
		&s.ID, &s.UserID, &s.UserName, &s.UserEmail, &s.UserPhone,
		&s.ServiceID, &s.ServiceType, &s.VehicleType, &s.VehicleNumber,
		&s.QuantityLiters, &s.AmountRupees, &s.Details, &s.TotalAmount, &s.DeliveryTime,
		&s.LocationLat, &s.LocationLng, &s.Notes, &s.Status,
		&s.PaymentID, &s.PaymentMethod, &s.PaymentStatus,
		&s.AgentID, &s.AgentName, &s.AgentEmail,
		&s.AssignedAt, &s.StartedAt, &s.CompletedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func collectRequests(rows pgx.Rows) ([]ServiceRequest, error) {
	defer rows.Close()
	out := []ServiceRequest{}
	for rows.Next() {
		s, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type CreateParams struct {
	UserID         int64
	ServiceID      int64
	ServiceType    string
	VehicleType    string
	VehicleNumber  string
	QuantityLiters *float64
	AmountRupees   *float64
	Details        Details
	TotalAmount    float64
	DeliveryTime   time.Time
	LocationLat    float64
	LocationLng    float64
	Notes          string
	PaymentMethod  domain.PaymentMethod
}

// Created is what the submit endpoint hands back to the payment step.
type Created struct {
	RequestID     int64   `json:"request_id"`
	PaymentID     int64   `json:"payment_id"`
	PaymentStatus string  `json:"payment_status"`
	TotalAmount   float64 `json:"total_amount"`
}

// Create stores the request and its payment row atomically.
func (r *Repo) Create(ctx context.Context, p CreateParams) (Created, error) {
	payStatus := domain.PaymentPending
	if p.PaymentMethod == domain.PaymentCOD {
		payStatus = domain.PaymentCODStatus
	}

	tx, err := r.pg.Begin(ctx)
	if err != nil {
		return Created{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var out Created
	err = tx.QueryRow(ctx, `
INSERT INTO service_requests (
  user_id, service_id, service_type, vehicle_type, vehicle_number,
  quantity_liters, amount_rupees, details, total_amount, delivery_time,
  location_lat, location_lng, notes, payment_method, payment_status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id`,
		p.UserID, p.ServiceID, p.ServiceType, p.VehicleType, p.VehicleNumber,
		p.QuantityLiters, p.AmountRupees, p.Details, p.TotalAmount, p.DeliveryTime,
		p.LocationLat, p.LocationLng, p.Notes, string(p.PaymentMethod), string(payStatus),
	).Scan(&out.RequestID)
	if err != nil {
		return Created{}, fmt.Errorf("insert request: %w", err)
	}

	err = tx.QueryRow(ctx, `
INSERT INTO payments (request_id, amount, method, status)
VALUES ($1, $2, $3, $4)
RETURNING id`, out.RequestID, p.TotalAmount, string(p.PaymentMethod), string(payStatus)).Scan(&out.PaymentID)
	if err != nil {
		return Created{}, fmt.Errorf("insert payment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Created{}, err
	}
	out.PaymentStatus = string(payStatus)
	out.TotalAmount = p.TotalAmount
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*ServiceRequest, error) {
	return scanRequest(r.pg.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, id))
}

// List returns requests newest first.
func (r *Repo) List(ctx context.Context, f Filter) ([]ServiceRequest, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("r.status = $%d", f.Status)
	}
	if f.ServiceType != "" {
		add("r.service_type = $%d", f.ServiceType)
	}
	if f.PaymentStatus != "" {
		add("r.payment_status = $%d", f.PaymentStatus)
	}
	if f.UserID > 0 {
		add("r.user_id = $%d", f.UserID)
	}
	if f.AgentID > 0 {
		add("r.agent_id = $%d", f.AgentID)
	}
	if f.UserEmail != "" {
		add("u.email = $%d", f.UserEmail)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(lower(u.first_name || ' ' || u.last_name) LIKE $%d OR lower(r.vehicle_number) LIKE $%d OR r.service_type LIKE $%d)", n, n, n))
	}

	q := requestSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY r.created_at DESC, r.id DESC"

	rows, err := r.pg.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// TasksForAgent lists the requests assigned to one agent, newest first.
func (r *Repo) TasksForAgent(ctx context.Context, agentID int64) ([]ServiceRequest, error) {
	return r.List(ctx, Filter{AgentID: agentID})
}

// UpdateStatus moves a request from one status to another. The write only
// applies while the row still has status from.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, from, to domain.RequestStatus) (*ServiceRequest, error) {
	const q = `
UPDATE service_requests
SET status = $3,
    started_at   = CASE WHEN $3 = 'in_progress' AND started_at IS NULL THEN now() ELSE started_at END,
    completed_at = CASE WHEN $3 = 'completed' THEN now() ELSE completed_at END,
    agent_id     = CASE WHEN $3 = 'pending' THEN NULL ELSE agent_id END,
    assigned_at  = CASE WHEN $3 = 'pending' THEN NULL ELSE assigned_at END,
    updated_at   = now()
WHERE id = $1 AND status = $2`
	tag, err := r.pg.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusChanged
	}
	return r.Get(ctx, id)
}

// Assign hands a pending or assigned request to an agent.
func (r *Repo) Assign(ctx context.Context, id, agentID int64) (*ServiceRequest, error) {
	const q = `
UPDATE service_requests
SET agent_id = $2, status = 'assigned', assigned_at = now(), updated_at = now()
WHERE id = $1 AND status IN ('pending', 'assigned')`
	tag, err := r.pg.Exec(ctx, q, id, agentID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusChanged
	}
	return r.Get(ctx, id)
}

const paymentColumns = `
  id, request_id, amount, currency, method, status, gateway_order_id, gateway_payment_id,
  verified_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.RequestID, &p.Amount, &p.Currency, &p.Method, &p.Status,
		&p.GatewayOrderID, &p.GatewayPaymentID, &p.VerifiedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(r.pg.QueryRow(ctx, `SELECT`+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (r *Repo) PaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	return scanPayment(r.pg.QueryRow(ctx, `SELECT`+paymentColumns+` FROM payments WHERE gateway_order_id = $1`, orderID))
}

// SetPaymentOrder records the gateway order and marks the payment initiated.
func (r *Repo) SetPaymentOrder(ctx context.Context, paymentID int64, orderID string) error {
	return r.setPayment(ctx, paymentID, `
UPDATE payments SET gateway_order_id = $2, status = 'initiated', updated_at = now()
WHERE id = $1 RETURNING request_id`, orderID)
}

// MarkPaid stores the verified gateway payment. It only matches while orderID is
// still the payment's gateway order; otherwise ErrPaymentNotFound.
func (r *Repo) MarkPaid(ctx context.Context, paymentID int64, orderID, gatewayPaymentID, signature string) error {
	return r.setPayment(ctx, paymentID, `
UPDATE payments
SET gateway_payment_id = $3, gateway_signature = $4,
    status = 'success', verified_at = now(), updated_at = now()
WHERE id = $1 AND gateway_order_id = $2 RETURNING request_id`, orderID, gatewayPaymentID, signature)
}

// SetPaymentStatus overwrites the payment status.
func (r *Repo) SetPaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) error {
	return r.setPayment(ctx, paymentID, `
UPDATE payments SET status = $2, updated_at = now() WHERE id = $1 RETURNING request_id`, string(status))
}

// setPayment runs a payments update and copies the resulting status onto the request.
func (r *Repo) setPayment(ctx context.Context, paymentID int64, q string, args ...any) error {
	tx, err := r.pg.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var requestID int64
	if err := tx.QueryRow(ctx, q, append([]any{paymentID}, args...)...).Scan(&requestID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE service_requests r SET payment_status = p.status, updated_at = now()
FROM payments p WHERE p.id = $1 AND r.id = $2`, paymentID, requestID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
