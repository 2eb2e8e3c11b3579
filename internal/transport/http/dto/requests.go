package dto

import (
	"strings"

	"github.com/acme/identity-service/internal/domain"
)

// -------- Core auth --------

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,min=2,max=64"`
	LastName  string `json:"lastName" validate:"required,min=2,max=64"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	return checkStruct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return checkStruct(r)
}

// Refresh token travels in the HttpOnly cookie; an empty body is fine.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (r *RefreshRequest) Validate() error { return nil }

// -------- Email verification --------

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *VerifyEmailRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return checkStruct(r)
}

type VerifyEmailConfirmRequest struct {
	Token string `json:"token"`
}

func (r *VerifyEmailConfirmRequest) Validate() error {
	// A missing token is an invalid-token outcome, not a shape error;
	// the service short-circuits it without touching the store.
	return nil
}

// -------- Password reset --------

// Server always answers 200 to avoid enumeration.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *PasswordResetRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return checkStruct(r)
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	// Token absence is handled by the service as invalid_token.
	return checkStruct(r)
}

// -------- Admin --------

type SetUserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (r *SetUserRoleRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	if err := checkStruct(r); err != nil {
		return err
	}
	// Anything is accepted here; the service normalizes and coerces.
	// Reject only values that cannot normalize to a role at all.
	if domain.NormalizeRole(r.Role) == "" {
		return domain.ErrMissingField("role")
	}
	return nil
}
