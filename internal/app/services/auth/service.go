package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainclient "hotelbook/internal/domain/client"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("auth: password must be at most 72 bytes")
	ErrTokenRequired      = errors.New("auth: token required")
)

const maxPasswordBytes = 72

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Rehasher is implemented by hashers that can tell when a stored hash no
// longer matches their settings. Such hashes are replaced on the next login.
type Rehasher interface {
	NeedsRehash(hash string) bool
}

// TokenIssuer signs stateless bearer tokens for a client id.
type TokenIssuer interface {
	Issue(subject string, roles []string) (string, time.Time, error)
	Parse(token string) (subject string, roles []string, err error)
}

type Service struct {
	Clients   domainclient.Repository
	Passwords PasswordHasher
	Tokens    TokenIssuer
	Logger    *slog.Logger
}

type RegisterParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	Client    *domainclient.Client
	Token     string
	ExpiresAt time.Time
}

// Principal is the caller resolved from a token.
type Principal struct {
	ClientID domainclient.ID
	Roles    []string
}

func (p Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, string(domainclient.RoleAdmin)) {
			return true
		}
	}
	return false
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	client, err := s.create(ctx, params, nil)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("client registered", "client_id", client.ID, "email", client.Email)
	}
	return s.issue(client)
}

// EnsureAdmin creates an administrator account unless the email is taken.
// An existing account with that email is granted the admin role.
func (s *Service) EnsureAdmin(ctx context.Context, params RegisterParams) (*domainclient.Client, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	existing, err := s.Clients.ByEmail(ctx, params.Email)
	switch {
	case err == nil:
		if existing.HasRole(domainclient.RoleAdmin) {
			return existing, nil
		}
		if err := existing.EnsureRole(domainclient.RoleAdmin, time.Now()); err != nil {
			return nil, err
		}
		if err := s.Clients.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, domainclient.ErrNotFound):
		return nil, err
	}
	client, err := s.create(ctx, params, []domainclient.Role{domainclient.RoleUser, domainclient.RoleAdmin})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("admin account created", "client_id", client.ID, "email", client.Email)
	}
	return client, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainclient.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	client, err := s.Clients.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainclient.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(client.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	s.upgradeHash(ctx, client, params.Password)
	if s.Logger != nil {
		s.Logger.Info("client authenticated", "client_id", client.ID)
	}
	return s.issue(client)
}

// ResolveToken verifies the token and checks that its client still exists.
// Roles come from the stored client, not from the token.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Principal, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	subject, _, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	client, err := s.Clients.ByID(ctx, domainclient.ID(subject))
	if err != nil {
		return nil, err
	}
	return &Principal{ClientID: client.ID, Roles: roleNames(client.Roles)}, nil
}

func (s *Service) create(ctx context.Context, params RegisterParams, roles []domainclient.Role) (*domainclient.Client, error) {
	if utf8.RuneCountInString(params.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if len(params.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	client, err := domainclient.NewClient(domainclient.CreateParams{
		ID:           domainclient.ID(uuid.NewString()),
		Name:         params.Name,
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Clients.Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// upgradeHash is best effort: a failure is logged and the login stands.
func (s *Service) upgradeHash(ctx context.Context, client *domainclient.Client, password string) {
	r, ok := s.Passwords.(Rehasher)
	if !ok || !r.NeedsRehash(client.PasswordHash) {
		return
	}
	hash, err := s.Passwords.Hash(password)
	if err == nil {
		err = client.SetPasswordHash(hash, time.Now())
	}
	if err == nil {
		err = s.Clients.Save(ctx, client)
	}
	if err != nil && s.Logger != nil {
		s.Logger.Warn("password rehash failed", "client_id", client.ID, "error", err)
	}
}

func (s *Service) issue(client *domainclient.Client) (*AuthResult, error) {
	token, expires, err := s.Tokens.Issue(string(client.ID), roleNames(client.Roles))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Client: client, Token: token, ExpiresAt: expires}, nil
}

func roleNames(roles []domainclient.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Clients == nil:
		return errors.New("auth: client repository required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token issuer required")
	default:
		return nil
	}
}
