package handlers

import (
	"DocBase/internal/config"
	"DocBase/internal/middleware"
	"DocBase/internal/model"
	"DocBase/internal/service"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LinkHandler управление ссылками владельцем.
type LinkHandler struct {
	LinkService *service.LinkService
	MagicLink   *service.MagicLinkService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewLinkHandler(linkService *service.LinkService, magicLink *service.MagicLinkService, logger *zap.SugaredLogger, cfg *config.Config) *LinkHandler {
	return &LinkHandler{LinkService: linkService, MagicLink: magicLink, Logger: logger, Config: cfg}
}

// LinkDTO представление ссылки владельцу. Хеш пароля наружу не попадает.
type LinkDTO struct {
	ID                    string     `json:"id"`
	Filename              string     `json:"filename"`
	HasPassword           bool       `json:"has_password"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	AllowDownload         bool       `json:"allow_download"`
	RequireEmail          bool       `json:"require_email"`
	RequireSignature      bool       `json:"require_signature"`
	SignatureInstructions *string    `json:"signature_instructions,omitempty"`
	LogoURL               *string    `json:"logo_url,omitempty"`
	Heading               *string    `json:"heading,omitempty"`
	CoverLetter           *string    `json:"cover_letter,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func toLinkDTO(l *model.Link) LinkDTO {
	return LinkDTO{
		ID:                    l.ID,
		Filename:              l.Filename,
		HasPassword:           l.HasPassword(),
		ExpiresAt:             l.ExpiresAt,
		AllowDownload:         l.AllowDownload,
		RequireEmail:          l.RequireEmail,
		RequireSignature:      l.RequireSignature,
		SignatureInstructions: l.SignatureInstructions,
		LogoURL:               l.LogoURL,
		Heading:               l.Heading,
		CoverLetter:           l.CoverLetter,
		CreatedAt:             l.CreatedAt,
	}
}

// Create загрузка документа и создание ссылки (multipart/form-data)
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Лимит общего тела запроса
	maxBody := int64(h.Config.BlobMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("CreateLink: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warnw("CreateLink: missing file", "error", err)
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Warnw("CreateLink: failed to read file", "error", err)
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}
	maxFile := int64(h.Config.BlobMaxSizeMB) * 1024 * 1024
	if int64(len(content)) > maxFile {
		h.Logger.Warnw("CreateLink: payload too large", "size", len(content), "limit", maxFile)
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	in := service.LinkInput{
		Filename:              header.Filename,
		Password:              r.FormValue("password"),
		AllowDownload:         formBool(r, "allow_download", true),
		RequireEmail:          formBool(r, "require_email", false),
		RequireSignature:      formBool(r, "require_signature", false),
		SignatureInstructions: formString(r, "signature_instructions"),
		LogoURL:               formString(r, "logo_url"),
		Heading:               formString(r, "heading"),
		CoverLetter:           formString(r, "cover_letter"),
	}
	if name := strings.TrimSpace(r.FormValue("filename")); name != "" {
		in.Filename = name
	}
	if raw := r.FormValue("expires_at"); raw != "" {
		exp, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Logger.Warnw("CreateLink: invalid expires_at", "value", raw, "error", err)
			http.Error(w, "invalid expires_at (RFC3339)", http.StatusBadRequest)
			return
		}
		exp = exp.UTC()
		in.ExpiresAt = &exp
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	link, err := h.LinkService.CreateLink(r.Context(), userID, in, content, contentType)
	if err != nil {
		writeServiceError(w, h.Logger, "CreateLink", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLinkDTO(link))
}

// List ссылки текущего пользователя
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	links, err := h.LinkService.ListLinks(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.Logger, "ListLinks", err)
		return
	}
	out := make([]LinkDTO, 0, len(links))
	for i := range links {
		out = append(out, toLinkDTO(&links[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	link, err := h.LinkService.GetOwned(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "GetLink", err)
		return
	}
	writeJSON(w, http.StatusOK, toLinkDTO(link))
}

type linkPatchRequest struct {
	Filename              *string    `json:"filename"`
	Password              *string    `json:"password"`
	RemovePassword        bool       `json:"remove_password"`
	ExpiresAt             *time.Time `json:"expires_at"`
	ClearExpiration       bool       `json:"clear_expiration"`
	AllowDownload         *bool      `json:"allow_download"`
	RequireEmail          *bool      `json:"require_email"`
	RequireSignature      *bool      `json:"require_signature"`
	SignatureInstructions *string    `json:"signature_instructions"`
	LogoURL               *string    `json:"logo_url"`
	Heading               *string    `json:"heading"`
	CoverLetter           *string    `json:"cover_letter"`
}

// Update частичное изменение ссылки
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req linkPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("UpdateLink: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	link, err := h.LinkService.UpdateLink(r.Context(), userID, chi.URLParam(r, "id"), service.LinkPatch{
		Filename:              req.Filename,
		Password:              req.Password,
		RemovePassword:        req.RemovePassword,
		ExpiresAt:             req.ExpiresAt,
		ClearExpiration:       req.ClearExpiration,
		AllowDownload:         req.AllowDownload,
		RequireEmail:          req.RequireEmail,
		RequireSignature:      req.RequireSignature,
		SignatureInstructions: req.SignatureInstructions,
		LogoURL:               req.LogoURL,
		Heading:               req.Heading,
		CoverLetter:           req.CoverLetter,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "UpdateLink", err)
		return
	}
	writeJSON(w, http.StatusOK, toLinkDTO(link))
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.LinkService.DeleteLink(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Logger, "DeleteLink", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analytics статистика просмотров (только владелец)
func (h *LinkHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	stats, err := h.LinkService.Analytics(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "Analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// SendMagicLink отправляет зрителю письмо со ссылкой для входа
func (h *LinkHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("SendMagicLink: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if _, err := h.MagicLink.Issue(r.Context(), req.Email, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Logger, "SendMagicLink", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}

func formBool(r *http.Request, key string, def bool) bool {
	raw := r.FormValue(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func formString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
