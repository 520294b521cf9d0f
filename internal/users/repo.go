package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrPhoneTaken = errors.New("User with this phone number already exists")
	ErrEmailTaken = errors.New("User with this email already exists")
)

type Repo struct {
	pg *pgxpool.Pool
}

func NewRepo(pg *pgxpool.Pool) *Repo {
	return &Repo{pg: pg}
}

const userColumns = `
  id, first_name, last_name, email, phone_number, address, photo,
  user_type, is_active, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber, &u.Address, &u.Photo,
		&u.UserType, &u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UniqueViolation maps a users unique-constraint failure to ErrPhoneTaken / ErrEmailTaken.
// Other errors are returned unchanged.
func UniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.SQLState() != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_phone_number_key":
		return ErrPhoneTaken
	case "users_email_key":
		return ErrEmailTaken
	}
	return err
}

func (r *Repo) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pg.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pg.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email))
}

// Exists reports which of phone/email are already registered.
func (r *Repo) Exists(ctx context.Context, phone, email string) (phoneTaken, emailTaken bool, err error) {
	const q = `
SELECT
  EXISTS (SELECT 1 FROM users WHERE phone_number = $1),
  EXISTS (SELECT 1 FROM users WHERE email = $2)`
	err = r.pg.QueryRow(ctx, q, phone, email).Scan(&phoneTaken, &emailTaken)
	return
}

func (r *Repo) List(ctx context.Context) ([]User, error) {
	rows, err := r.pg.Query(ctx, `SELECT`+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// AgentsWithLoad lists active agents with their open (assigned / in_progress) task count, least loaded first.
func (r *Repo) AgentsWithLoad(ctx context.Context) ([]AgentLoad, error) {
	const q = `
SELECT
  u.id, u.first_name, u.last_name, u.email, u.phone_number, u.address, u.photo,
  u.user_type, u.is_active, u.password_hash, u.created_at, u.updated_at,
  COUNT(sr.id) AS open_tasks
FROM users u
LEFT JOIN service_requests sr
  ON sr.agent_id = u.id AND sr.status IN ('assigned', 'in_progress')
WHERE u.user_type = 'agent' AND u.is_active
GROUP BY u.id
ORDER BY open_tasks, u.id`
	rows, err := r.pg.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AgentLoad
	for rows.Next() {
		var a AgentLoad
		if err := rows.Scan(
			&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PhoneNumber, &a.Address, &a.Photo,
			&a.UserType, &a.IsActive, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
			&a.OpenTasks,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) CountAgents(ctx context.Context) (int, error) {
	var n int
	err := r.pg.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE user_type = 'agent' AND is_active`).Scan(&n)
	return n, err
}

type CreateParams struct {
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	Address      string
	Photo        *string
	PasswordHash string
	UserType     string
}

func (r *Repo) Create(ctx context.Context, p CreateParams) (int64, error) {
	const q = `
INSERT INTO users (first_name, last_name, email, phone_number, address, photo, password_hash, user_type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	var id int64
	err := r.pg.QueryRow(ctx, q,
		p.FirstName, p.LastName, p.Email, p.PhoneNumber, p.Address, p.Photo, p.PasswordHash, p.UserType,
	).Scan(&id)
	if err != nil {
		return 0, UniqueViolation(err)
	}
	return id, nil
}

// EnsureAdmin creates the admin account or resets its password and role.
func (r *Repo) EnsureAdmin(ctx context.Context, email, phone, passwordHash string) error {
	const q = `
INSERT INTO users (first_name, last_name, email, phone_number, password_hash, user_type)
VALUES ('Admin', '', $1, $2, $3, 'admin')
ON CONFLICT (email) DO UPDATE
SET password_hash = EXCLUDED.password_hash, user_type = 'admin', is_active = TRUE, updated_at = now()`
	_, err := r.pg.Exec(ctx, q, email, phone, passwordHash)
	return UniqueViolation(err)
}

type UpdateParams struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *string
	Photo       *string
}

func (r *Repo) Update(ctx context.Context, id int64, p UpdateParams) (*User, error) {
	const q = `
UPDATE users
SET first_name = COALESCE($2, first_name),
    last_name = COALESCE($3, last_name),
    phone_number = COALESCE($4, phone_number),
    address = COALESCE($5, address),
    photo = COALESCE($6, photo),
    updated_at = now()
WHERE id = $1
RETURNING` + userColumns
	u, err := scanUser(r.pg.QueryRow(ctx, q, id, p.FirstName, p.LastName, p.PhoneNumber, p.Address, p.Photo))
	if err != nil {
		return nil, UniqueViolation(err)
	}
	return u, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
