package http_handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/acme/identity-service/internal/application/identity"
	"github.com/acme/identity-service/internal/domain"
	"github.com/acme/identity-service/internal/infrastructure/security"
	"github.com/acme/identity-service/internal/logger"
	"github.com/acme/identity-service/internal/transport/http/dto"
	"github.com/acme/identity-service/internal/transport/http/middleware"
	"github.com/acme/identity-service/internal/transport/http/response"
)

type IdentityHandler struct {
	svc           *identity.Service
	refreshTTL    time.Duration
	secureCookies bool
}

func NewIdentityHandler(svc *identity.Service, refreshTTL time.Duration, secureCookies bool) *IdentityHandler {
	return &IdentityHandler{
		svc:           svc,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.SignUp(r.Context(), identity.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Str("email", res.User.Email).
		Msg("user_registered")

	// No session until the verification token is consumed.
	response.Created(w, dto.RegisterResponse{User: dto.ToUserView(res.User)})
}

func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(loginStatus(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")

	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)

	response.OK(w, dto.LoginResponse{
		User:        dto.ToUserView(res.User),
		AccessToken: res.Tokens.AccessToken,
		TokenType:   res.Tokens.TokenType,
		ExpiresIn:   res.Tokens.ExpiresIn,
	})
}

func loginStatus(err error) string {
	if code := domainErrCode(err); code != "" {
		return code
	}
	return "error"
}

func domainErrCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func (h *IdentityHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshTok, err := security.ReadRefreshToken(r)
	if err != nil || refreshTok == "" {
		middleware.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		response.WriteError(w, r, domain.ErrRefreshTokenInvalid())
		return
	}

	toks, err := h.svc.Refresh(r.Context(), refreshTok)
	if err != nil {
		middleware.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.TokenRefreshTotal.WithLabelValues("success").Inc()

	security.SetRefreshToken(w, toks.RefreshToken, h.refreshTTL, h.secureCookies)

	response.OK(w, dto.RefreshResponse{
		AccessToken: toks.AccessToken,
		TokenType:   toks.TokenType,
		ExpiresIn:   toks.ExpiresIn,
	})
}

func (h *IdentityHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshTok, err := security.ReadRefreshToken(r)
	if err == nil && refreshTok != "" {
		_ = h.svc.Logout(r.Context(), refreshTok) // keep idempotent
	}

	security.ClearRefreshToken(w, h.secureCookies)
	response.NoContent(w)
}

func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrAccessTokenInvalid())
		return
	}

	u, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MeResponse{User: dto.ToUserView(u)})
}

// ---- Verify Email ----

func (h *IdentityHandler) VerifyEmailRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.VerifyEmailRequest(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageResponse{
		Message: "If the account exists, a verification email has been sent.",
	})
}

func (h *IdentityHandler) verifyEmailConfirm(w http.ResponseWriter, r *http.Request, token string) {
	res, err := h.svc.VerifyEmailConfirm(r.Context(), token)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("email_verified")

	// Verification signs the user straight in.
	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)

	response.OK(w, dto.LoginResponse{
		User:        dto.ToUserView(res.User),
		AccessToken: res.Tokens.AccessToken,
		TokenType:   res.Tokens.TokenType,
		ExpiresIn:   res.Tokens.ExpiresIn,
	})
}

func (h *IdentityHandler) VerifyEmailConfirmGET(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	h.verifyEmailConfirm(w, r, token)
}

func (h *IdentityHandler) VerifyEmailConfirmPOST(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailConfirmRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}
	h.verifyEmailConfirm(w, r, req.Token)
}

// ---- Password Reset ----

func (h *IdentityHandler) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.PasswordResetRequest(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageResponse{
		Message: "If the account exists, a password reset email has been sent.",
	})
}

func (h *IdentityHandler) PasswordResetValidate(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))

	if err := h.svc.PasswordResetValidate(r.Context(), token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, map[string]bool{"valid": true})
}

func (h *IdentityHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirmRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.PasswordResetConfirm(r.Context(), req.Token, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	// All sessions are revoked server-side; drop the browser cookie too.
	security.ClearRefreshToken(w, h.secureCookies)
	response.NoContent(w)
}
