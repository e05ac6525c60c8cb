package domain

import (
	"regexp"
	"strings"
	"time"
)

type Account struct {
	ID           int64     `json:"id"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest deliberately has no role field; any role supplied in a login
// payload is dropped at decode so a forged body cannot escalate privileges.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the public view of an account; never carries the hash.
type Profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type SessionResponse struct {
	Token   string   `json:"token"`
	Account *Profile `json:"account"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Valid account roles
const (
	RoleMember    = "member"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

var validRoles = map[string]bool{
	RoleMember:    true,
	RoleOrganizer: true,
	RoleAdmin:     true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return NewValidationError("email is required")
	}
	if !isValidEmail(r.Email) {
		return NewValidationError("invalid email format")
	}
	if r.Password == "" {
		return NewValidationError("password is required")
	}
	if len(r.Password) < 8 {
		return NewValidationError("password must be at least 8 characters")
	}
	if r.Name == "" {
		return NewValidationError("name is required")
	}
	if r.Role != "" && !validRoles[r.Role] {
		return NewValidationError("invalid role")
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return NewValidationError("email is required")
	}
	if r.Password == "" {
		return NewValidationError("password is required")
	}
	return nil
}

func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Role == "" {
		r.Role = RoleMember
	}
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// NormalizeEmail lower-cases and trims an address; the login key is always
// compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func (a *Account) ToProfile() *Profile {
	return &Profile{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  a.Role,
	}
}
