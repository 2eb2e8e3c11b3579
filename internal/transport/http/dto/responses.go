package dto

import (
	"time"

	"github.com/acme/identity-service/internal/domain"
)

// -------- Users --------

type UserView struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ToUserView(u domain.User) UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func ToUserViews(users []domain.User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserView(u))
	}
	return out
}

// -------- Core auth --------

type RegisterResponse struct {
	User UserView `json:"user"`
}

// MeResponse mirrors RegisterResponse; /me returns the same view.
type MeResponse = RegisterResponse

type LoginResponse struct {
	User        UserView `json:"user"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"` // "Bearer"
	ExpiresIn   int64    `json:"expires_in"` // seconds
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// -------- Admin --------

type ListUsersResponse struct {
	Users []UserView `json:"users"`
}

type SetRoleResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
