package handlers

import (
	"DocBase/internal/config"
	"DocBase/internal/middleware"
	"DocBase/internal/service"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler регистрация, вход и подтверждение magic link.
type UserHandler struct {
	UserService *service.UserService
	MagicLink   *service.MagicLinkService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, magicLink *service.MagicLinkService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, MagicLink: magicLink, Logger: logger, Config: cfg}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Register регистрация пользователя, при успехе сразу выставляет cookie сессии
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, h.Logger, "Register", err)
		return
	}

	if err := middleware.SetLoginCookie(w, user.ID, user.Email, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Register: failed to set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.Logger.Infow("User registered", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"id": user.ID, "email": user.Email})
}

// Login вход по email и паролю
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.Logger, "Login", err)
		return
	}

	if err := middleware.SetLoginCookie(w, user.ID, user.Email, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": user.ID, "email": user.Email})
}

// Status проверка сессии
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	result := "anonymous"
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		email, _ := middleware.GetUserEmailFromContext(r.Context())
		result = fmt.Sprintf("User ID = %d (%s)", id, email)
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

// ConfirmMagicLink вход по ссылке из письма: выставляет cookie и возвращает ID ссылки
func (h *UserHandler) ConfirmMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	user, linkID, err := h.MagicLink.Confirm(r.Context(), token)
	if err != nil {
		writeServiceError(w, h.Logger, "ConfirmMagicLink", err)
		return
	}

	if err := middleware.SetLoginCookie(w, user.ID, user.Email, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("ConfirmMagicLink: failed to set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.Logger.Infow("Magic link confirmed", "user_id", user.ID, "link_id", linkID)
	writeJSON(w, http.StatusOK, map[string]any{"email": user.Email, "link_id": linkID})
}
