package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("client: id is required")
	ErrEmailRequired       = errors.New("client: email is required")
	ErrPhoneRequired       = errors.New("client: phone is required")
	ErrPasswordHashMissing = errors.New("client: password hash is required")
	ErrNameRequired        = errors.New("client: name is required")
	ErrInvalidRole         = errors.New("client: invalid role")
	ErrEmailAlreadyUsed    = errors.New("client: email already used")
	ErrPhoneAlreadyUsed    = errors.New("client: phone already used")
	ErrNotFound            = errors.New("client: not found")
	ErrResetCodeInvalid    = errors.New("client: reset code invalid")
	ErrResetCodeExpired    = errors.New("client: reset code expired")
)

// ResetCodeTTL bounds how long an issued reset code can be consumed.
const ResetCodeTTL = time.Hour

type ID string

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

type Client struct {
	ID               ID
	Name             string
	Email            string
	Phone            string
	PasswordHash     string
	Roles            []Role
	ResetCode        string
	ResetRequestedAt time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Filter struct {
	Skip  int
	Limit int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Client, error)
	ByEmail(ctx context.Context, email string) (*Client, error)
	Find(ctx context.Context, filter Filter) ([]*Client, error)
	// Save enforces email and phone uniqueness.
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID           ID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

func NewClient(params CreateParams) (*Client, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	phone := NormalizePhone(params.Phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	roles, err := normalizeRoles(params.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleUser}
	}

	return &Client{
		ID:           ID(id),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: params.PasswordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (c *Client) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	c.PasswordHash = hash
	c.touch(now)
	return nil
}

func (c *Client) EnsureRole(role Role, now time.Time) error {
	role = normalizeRole(role)
	if role == "" {
		return ErrInvalidRole
	}
	if c.HasRole(role) {
		return nil
	}
	c.Roles = append(c.Roles, role)
	c.touch(now)
	return nil
}

func (c *Client) HasRole(role Role) bool {
	role = normalizeRole(role)
	if role == "" {
		return false
	}
	for _, current := range c.Roles {
		if normalizeRole(current) == role {
			return true
		}
	}
	return false
}

// IssueResetCode stores a fresh six-digit code and returns it.
func (c *Client) IssueResetCode(now time.Time) string {
	code := fmt.Sprintf("%06d", rand.IntN(1_000_000))
	c.ResetCode = code
	c.ResetRequestedAt = now.UTC()
	c.touch(now)
	return code
}

// ConsumeResetCode replaces the password hash when code matches and is still
// valid. A consumed code is cleared and cannot be reused.
func (c *Client) ConsumeResetCode(code, newHash string, now time.Time) error {
	code = strings.TrimSpace(code)
	if c.ResetCode == "" || code == "" || code != c.ResetCode {
		return ErrResetCodeInvalid
	}
	if now.UTC().After(c.ResetRequestedAt.Add(ResetCodeTTL)) {
		c.clearResetCode()
		return ErrResetCodeExpired
	}
	if err := c.SetPasswordHash(newHash, now); err != nil {
		return err
	}
	c.clearResetCode()
	return nil
}

func (c *Client) clearResetCode() {
	c.ResetCode = ""
	c.ResetRequestedAt = time.Time{}
}

func (c *Client) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	c.UpdatedAt = now.UTC()
}

func normalizeRoles(roles []Role) ([]Role, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	seen := make(map[Role]struct{}, len(roles))
	normalized := make([]Role, 0, len(roles))
	for _, role := range roles {
		normalizedRole := normalizeRole(role)
		if normalizedRole == "" {
			return nil, ErrInvalidRole
		}
		if _, ok := seen[normalizedRole]; ok {
			continue
		}
		seen[normalizedRole] = struct{}{}
		normalized = append(normalized, normalizedRole)
	}
	return normalized, nil
}

func normalizeRole(role Role) Role {
	switch strings.ToUpper(strings.TrimSpace(string(role))) {
	case "ROLE_USER", "USER":
		return RoleUser
	case "ROLE_ADMIN", "ADMIN":
		return RoleAdmin
	default:
		return ""
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}
