package handlers

import (
	"DocBase/internal/middleware"
	"DocBase/internal/notify"
	"DocBase/internal/service"
	"DocBase/internal/storage"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decisionStatus HTTP-статус для решения политики.
func decisionStatus(d service.Decision) int {
	switch d {
	case service.Granted:
		return http.StatusOK
	case service.DeniedExpired:
		return http.StatusGone
	case service.DeniedAuthRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// writeDenial отдаёт отказ с кодом решения, по которому клиент выбирает, что показать.
func writeDenial(w http.ResponseWriter, d service.Decision) {
	writeJSON(w, decisionStatus(d), map[string]any{"decision": d})
}

// writeServiceError маппит ошибки сервисов в HTTP. Неизвестные ошибки: 500 с логом.
func writeServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound), errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrDownloadNotAllowed):
		http.Error(w, "download not allowed", http.StatusForbidden)
	case errors.Is(err, service.ErrLinkExpired):
		writeDenial(w, service.DeniedExpired)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrConsentRequired),
		errors.Is(err, service.ErrSignatureNotRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrLoginTaken):
		http.Error(w, "login already in use", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidMagicLink):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, notify.ErrNotConfigured):
		logger.Warnw(op+": notifications not configured", "error", err)
		http.Error(w, "email delivery unavailable", http.StatusServiceUnavailable)
	default:
		logger.Errorw(op+": service error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// requestContext собирает контекст запроса для политики ссылки.
func requestContext(r *http.Request, password, viewerEmail string) service.RequestContext {
	email, _ := middleware.GetUserEmailFromContext(r.Context())
	return service.RequestContext{
		AuthenticatedEmail: email,
		SubmittedPassword:  password,
		ViewerEmail:        viewerEmail,
		UserAgent:          r.UserAgent(),
	}
}
