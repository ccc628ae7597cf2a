package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/musicapp/internal/auth"
	"github.com/desertthunder/musicapp/internal/services"
)

// sessionCookies writes and clears the session cookie.
type sessionCookies struct {
	name   string
	secure bool
	ttl    time.Duration
}

func (c sessionCookies) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
		MaxAge:   int(c.ttl.Seconds()),
	})
}

func (c sessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
		MaxAge:   -1,
	})
}

// AccountHandler serves registration, login and password reset.
//
// Login and reset requests share one per-client rate limit.
type AccountHandler struct {
	users   *services.UserService
	tokens  *auth.TokenIssuer
	cookies sessionCookies
	limiter *RateLimiter
	logger  *log.Logger
}

// NewAccountHandler creates an [AccountHandler].
func NewAccountHandler(users *services.UserService, tokens *auth.TokenIssuer, cookies sessionCookies, limiter *RateLimiter, logger *log.Logger) *AccountHandler {
	return &AccountHandler{users: users, tokens: tokens, cookies: cookies, limiter: limiter, logger: logger}
}

func (h *AccountHandler) Routes() []Route {
	limited := []Middleware{h.limiter.Middleware}
	return []Route{
		{Method: http.MethodPost, Path: "/register", Handler: h.Register},
		{Method: http.MethodPost, Path: "/login", Handler: h.Login, Middleware: limited},
		{Method: http.MethodPost, Path: "/logout", Handler: h.Logout},
		{Method: http.MethodPost, Path: "/reset_password", Handler: h.RequestReset, Middleware: limited},
		{Method: http.MethodPost, Path: "/reset_password/{token}", Handler: h.Reset, Middleware: limited},
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterForm{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login checks the credentials and sets the session cookie.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.tokens.IssueSessionToken(user, h.cookies.ttl)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.cookies.set(w, token)
	writeJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// RequestReset issues a reset token and logs the reset link. The response is the
// same whether or not the email belongs to an account.
func (h *AccountHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.users.RequestPasswordReset(r.Context(), r.FormValue("email"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if token != "" {
		h.logger.Info("password reset link", "path", "/reset_password/"+token)
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "An email has been sent with instructions to reset your password.",
	})
}

func (h *AccountHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.users.ResetPassword(r.Context(), chi.URLParam(r, "token"), r.FormValue("password")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your password has been updated! You are now able to log in."})
}
