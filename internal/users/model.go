package users

import "time"

// Mirrors the users table. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Address      string    `json:"address"`
	Photo        *string   `json:"photo"`
	UserType     string    `json:"user_type"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// AgentLoad is an agent with the number of tasks still open on them.
type AgentLoad struct {
	User
	OpenTasks int `json:"open_tasks"`
}
