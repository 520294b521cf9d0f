package registrations

import (
	"strings"
	"time"
)

// Request mirrors agent_registration_requests.
type Request struct {
	ID            int64      `json:"id"`
	FullName      string     `json:"full_name"`
	PhoneNumber   string     `json:"phone_number"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	IDProofType   string     `json:"id_proof_type"`
	IDProofNumber string     `json:"id_proof_number"`
	IDProofPath   string     `json:"id_proof_file"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
	UserID        *int64     `json:"user_id"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SplitName turns "Asha Mary Thomas" into ("Asha", "Mary Thomas").
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
