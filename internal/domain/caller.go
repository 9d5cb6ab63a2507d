package domain

import (
	"context"
	"errors"
)

// Role represents a caller's relation to the accounts it touches
type Role string

const (
	// RoleParent owns accounts and may act on any of them immediately
	RoleParent Role = "parent"

	// RoleChild is bound to a single account and needs approval to withdraw
	RoleChild Role = "child"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleParent || r == RoleChild
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Caller is the resolved identity behind a request. AccountID is set for children only.
type Caller struct {
	ID        string
	Role      Role
	AccountID string
}

// IsOwner reports whether the caller is the child the account belongs to.
func (c *Caller) IsOwner(account *Account) bool {
	return c.Role == RoleChild && c.AccountID == account.ID
}

// IsGuardian reports whether the caller is the parent that owns the account.
func (c *Caller) IsGuardian(account *Account) bool {
	return c.Role == RoleParent && c.ID == account.ParentID
}

// CanView reports whether the caller may read the account.
func (c *Caller) CanView(account *Account) bool {
	return c.IsOwner(account) || c.IsGuardian(account)
}

type callerKey struct{}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext extracts the caller placed by WithCaller.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(*Caller)
	return caller, ok && caller != nil
}
