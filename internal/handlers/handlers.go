package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openmeet/eventhub/internal/domain"
	"github.com/openmeet/eventhub/internal/repository"
	"github.com/openmeet/eventhub/internal/service"
	"github.com/openmeet/eventhub/pkg/config"
	"github.com/openmeet/eventhub/pkg/logger"
)

type Handlers struct {
	accountService service.AccountService
	eventService   service.EventService
	rateLimitRepo  repository.RateLimitRepository
	config         *config.Config
}

func New(
	accountService service.AccountService,
	eventService service.EventService,
	rateLimitRepo repository.RateLimitRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		accountService: accountService,
		eventService:   eventService,
		rateLimitRepo:  rateLimitRepo,
		config:         config,
	}
}

// Error codes surfaced in responses
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeEventFull          = "EVENT_FULL"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code,
	})
}

// writeDomainError translates an error's kind into a status code and a
// caller-safe message. Conflict, capacity and validation failures surface
// their reason verbatim so callers can react without parsing free text.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.ErrorContext(r.Context(), "Unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", CodeInternalError)
		return
	}

	switch de.Kind {
	case domain.KindValidation:
		writeError(w, http.StatusBadRequest, de.Message, CodeInvalidInput)
	case domain.KindAuthentication:
		writeError(w, http.StatusUnauthorized, "Authentication required", CodeUnauthorized)
	case domain.KindAuthorization:
		writeError(w, http.StatusForbidden, "Insufficient permissions", CodeForbidden)
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, de.Message, CodeNotFound)
	case domain.KindConflict:
		writeError(w, http.StatusBadRequest, de.Message, CodeConflict)
	case domain.KindCapacity:
		writeError(w, http.StatusBadRequest, de.Message, CodeEventFull)
	case domain.KindTransient:
		logger.ErrorContext(r.Context(), "Backing service unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", CodeServiceUnavailable)
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", CodeInternalError)
	}
}

// getClientIP resolves the caller's address for throttling: forwarded
// headers first, then RemoteAddr stripped of its ephemeral port.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("invalid id")
	}
	return id, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("invalid JSON body")
	}
	return nil
}

// checkRateLimit fails open on limiter errors; losing the throttle is
// better than losing logins.
func (h *Handlers) checkRateLimit(r *http.Request, key string, requests int, window time.Duration) bool {
	allowed, err := h.rateLimitRepo.CheckRateLimit(r.Context(), key, requests, window)
	if err != nil {
		logger.WarnContext(r.Context(), "Rate limit check failed", "error", err)
		return true
	}
	return allowed
}
