package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abin-1409/fuel-swift/internal/users"
)

var (
	ErrNotFound       = errors.New("Registration request not found")
	ErrAlreadyPending = errors.New("Registration request already pending")
	ErrNotPending     = errors.New("Registration request is not pending")
)

type Repo struct {
	pg *pgxpool.Pool
}

func NewRepo(pg *pgxpool.Pool) *Repo {
	return &Repo{pg: pg}
}

const columns = `
  id, full_name, phone_number, email, password_hash, id_proof_type, id_proof_number,
  id_proof_path, status, reason, user_id, reviewed_at, created_at`

func scan(row pgx.Row) (*Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.FullName, &r.PhoneNumber, &r.Email, &r.PasswordHash, &r.IDProofType,
		&r.IDProofNumber, &r.IDProofPath, &r.Status, &r.Reason, &r.UserID, &r.ReviewedAt, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

type CreateParams struct {
	FullName      string
	PhoneNumber   string
	Email         string
	PasswordHash  string
	IDProofType   string
	IDProofNumber string
}

// Create stores a pending application. The ID proof path is set afterwards
// because the file is stored under the new id.
func (r *Repo) Create(ctx context.Context, p CreateParams) (*Request, error) {
	const q = `
INSERT INTO agent_registration_requests (full_name, phone_number, email, password_hash, id_proof_type, id_proof_number)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING` + columns
	req, err := scan(r.pg.QueryRow(ctx, q, p.FullName, p.PhoneNumber, p.Email, p.PasswordHash, p.IDProofType, p.IDProofNumber))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
			return nil, ErrAlreadyPending
		}
		return nil, err
	}
	return req, nil
}

func (r *Repo) SetProofPath(ctx context.Context, id int64, path string) error {
	tag, err := r.pg.Exec(ctx, `UPDATE agent_registration_requests SET id_proof_path = $2 WHERE id = $1`, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) HasPending(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.pg.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM agent_registration_requests WHERE email = $1 AND status = 'pending')`, email).Scan(&ok)
	return ok, err
}

// List returns applications newest first, optionally by status.
func (r *Repo) List(ctx context.Context, status string) ([]Request, error) {
	q := `SELECT` + columns + ` FROM agent_registration_requests`
	var args []any
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pg.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Request{}
	for rows.Next() {
		req, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Request, error) {
	return scan(r.pg.QueryRow(ctx, `SELECT`+columns+` FROM agent_registration_requests WHERE id = $1`, id))
}

func (r *Repo) LatestByEmail(ctx context.Context, email string) (*Request, error) {
	return scan(r.pg.QueryRow(ctx, `SELECT`+columns+`
FROM agent_registration_requests WHERE email = $1
ORDER BY created_at DESC, id DESC LIMIT 1`, email))
}

// Approve creates the agent account from a pending application and marks it approved.
func (r *Repo) Approve(ctx context.Context, id int64) (*Request, error) {
	tx, err := r.pg.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := scan(tx.QueryRow(ctx, `SELECT`+columns+` FROM agent_registration_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if req.Status != "pending" {
		return nil, ErrNotPending
	}

	first, last := SplitName(req.FullName)
	var userID int64
	err = tx.QueryRow(ctx, `
INSERT INTO users (first_name, last_name, email, phone_number, password_hash, user_type)
VALUES ($1, $2, $3, $4, $5, 'agent')
RETURNING id`, first, last, req.Email, req.PhoneNumber, req.PasswordHash).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("create agent user: %w", users.UniqueViolation(err))
	}

	out, err := scan(tx.QueryRow(ctx, `
UPDATE agent_registration_requests
SET status = 'approved', user_id = $2, reviewed_at = now()
WHERE id = $1
RETURNING`+columns, id, userID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Reject(ctx context.Context, id int64, reason string) (*Request, error) {
	out, err := scan(r.pg.QueryRow(ctx, `
UPDATE agent_registration_requests
SET status = 'rejected', reason = $2, reviewed_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING`+columns, id, reason))
	if errors.Is(err, ErrNotFound) {
		if _, gerr := r.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, ErrNotPending
	}
	return out, err
}
