package handlers

import (
	"net/http"
	"time"

	"github.com/openmeet/eventhub/internal/domain"
)

// Register handles account creation. The role field of the payload is
// ignored; every new account starts as a member.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if !h.checkRateLimit(r, "register:"+getClientIP(r), 10, time.Minute) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", CodeRateLimit)
		return
	}

	session, err := h.accountService.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, session)
}

// Login exchanges credentials for a session token carrying the account's
// current stored role.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if !h.checkRateLimit(r, "login:"+domain.NormalizeEmail(req.Email), 5, time.Minute) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", CodeRateLimit)
		return
	}

	session, err := h.accountService.Login(r.Context(), &req)
	if err != nil {
		// Unknown email and wrong password answer the same 401. Other
		// kinds keep their mapping so a storage outage is not reported
		// as bad credentials.
		if domain.IsKind(err, domain.KindAuthentication) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", CodeUnauthorized)
			return
		}
		writeDomainError(w, r, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, session)
}

// Me returns the authenticated account's profile.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	profile, err := h.accountService.GetAccountByID(r.Context(), id.AccountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"account": profile})
}

// Logout clears the session cookie. Tokens themselves stay valid until
// expiry; the session is stateless.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// setSessionCookie mirrors the token into a cookie so server-rendered pages
// share the session; API clients keep using the Authorization header.
func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.Auth.SessionTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
