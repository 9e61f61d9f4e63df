package client

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(CreateParams{
		ID:           "c1",
		Name:         "Alice",
		Email:        " Alice@Example.com ",
		Phone:        "06 12 34 56 78",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientNormalizesAndDefaultsRole(t *testing.T) {
	c := newTestClient(t)
	if c.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", c.Email)
	}
	if c.Phone != "0612345678" {
		t.Fatalf("expected normalized phone, got %q", c.Phone)
	}
	if !c.HasRole(RoleUser) || c.HasRole(RoleAdmin) {
		t.Fatalf("unexpected roles %v", c.Roles)
	}
	if _, err := NewClient(CreateParams{ID: "c2", Name: "Bob", Email: "b@example.com", PasswordHash: "x"}); !errors.Is(err, ErrPhoneRequired) {
		t.Fatalf("expected ErrPhoneRequired, got %v", err)
	}
	if _, err := NewClient(CreateParams{ID: "c2", Name: "Bob", Email: "b@example.com", Phone: "1", PasswordHash: "x", Roles: []Role{"root"}}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestResetCodeIsSingleUse(t *testing.T) {
	c := newTestClient(t)
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	code := c.IssueResetCode(now)
	if !regexp.MustCompile(`^\d{6}$`).MatchString(code) {
		t.Fatalf("expected six digits, got %q", code)
	}
	if err := c.ConsumeResetCode("000000x", "new", now); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected ErrResetCodeInvalid, got %v", err)
	}
	if err := c.ConsumeResetCode(code, "new-hash", now.Add(30*time.Minute)); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if c.PasswordHash != "new-hash" || c.ResetCode != "" {
		t.Fatalf("expected hash replaced and code cleared, got %q %q", c.PasswordHash, c.ResetCode)
	}
	if err := c.ConsumeResetCode(code, "again", now.Add(31*time.Minute)); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected reused code to be rejected, got %v", err)
	}
}

func TestResetCodeExpiresAfterOneHour(t *testing.T) {
	c := newTestClient(t)
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	code := c.IssueResetCode(now)
	if err := c.ConsumeResetCode(code, "new", now.Add(ResetCodeTTL+time.Second)); !errors.Is(err, ErrResetCodeExpired) {
		t.Fatalf("expected ErrResetCodeExpired, got %v", err)
	}
	if c.PasswordHash != "hash" {
		t.Fatal("expired code must not change the password")
	}
}
