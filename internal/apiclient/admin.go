package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Abin-1409/fuel-swift/internal/registrations"
	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

type LoginResult struct {
	Message string          `json:"message"`
	Tokens  security.Tokens `json:"tokens"`
	User    users.User      `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RegisterInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Address         string `json:"address,omitempty"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (string, error) {
	var out Message
	if err := c.do(ctx, http.MethodPost, "/api/register/", nil, in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Users(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := c.do(ctx, http.MethodGet, "/api/users/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type UserUpdate struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
	Photo       *string `json:"photo,omitempty"`
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*users.User, error) {
	var out users.User
	if err := c.do(ctx, http.MethodPut, idPath("/api/users/%d/", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/users/%d/", id), nil, nil, nil)
}

// AgentApplication is the multipart agent registration form.
type AgentApplication struct {
	FullName      string
	PhoneNumber   string
	Email         string
	Password      string
	IDProofType   string
	IDProofNumber string
	FileName      string
	File          io.Reader
}

type RegistrationReceipt struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Status  string `json:"status"`
}

func (c *Client) SubmitAgentRegistration(ctx context.Context, a AgentApplication) (*RegistrationReceipt, error) {
	if a.File == nil || a.FileName == "" {
		return nil, &MissingFieldError{Field: "id_proof_file"}
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range [][2]string{
		{"full_name", a.FullName},
		{"phone_number", a.PhoneNumber},
		{"email", a.Email},
		{"password", a.Password},
		{"id_proof_type", a.IDProofType},
		{"id_proof_number", a.IDProofNumber},
	} {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write form: %w", err)
		}
	}
	fw, err := w.CreateFormFile("id_proof_file", a.FileName)
	if err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if _, err := io.Copy(fw, a.File); err != nil {
		return nil, fmt.Errorf("write id proof: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/agent-registration-request/", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	var out RegistrationReceipt
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RegistrationState struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (c *Client) RegistrationStatus(ctx context.Context, email string) (*RegistrationState, error) {
	var out RegistrationState
	if err := c.do(ctx, http.MethodGet, "/api/agent-registration-status/", url.Values{"email": {email}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AgentRegistrations lists applications, optionally only those with status.
func (c *Client) AgentRegistrations(ctx context.Context, status string) ([]registrations.Request, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var out []registrations.Request
	if err := c.do(ctx, http.MethodGet, "/api/agent-registration-requests/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type Review struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	UserID  *int64 `json:"user_id,omitempty"`
}

func (c *Client) AcceptRegistration(ctx context.Context, id int64) (*Review, error) {
	var out Review
	if err := c.do(ctx, http.MethodPost, idPath("/api/agent-registration-request/%d/accept/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectRegistration(ctx context.Context, id int64, reason string) (*Review, error) {
	var body any
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	var out Review
	if err := c.do(ctx, http.MethodPost, idPath("/api/agent-registration-request/%d/reject/", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
