package handlers

import (
	"DocBase/internal/config"
	"DocBase/internal/model"
	"DocBase/internal/service"
	"DocBase/internal/storage"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// passwordHeader заголовок для пароля ссылки при GET-запросе документа.
const passwordHeader = "X-Link-Password"

// AccessHandler выдача документов по ссылке.
type AccessHandler struct {
	AccessService *service.AccessService
	Files         *storage.DBStore
	Logger        *zap.SugaredLogger
	Config        *config.Config
}

func NewAccessHandler(accessService *service.AccessService, files *storage.DBStore, logger *zap.SugaredLogger, cfg *config.Config) *AccessHandler {
	return &AccessHandler{AccessService: accessService, Files: files, Logger: logger, Config: cfg}
}

type accessRequest struct {
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ViewerLinkDTO то, что видит зритель после получения доступа.
type ViewerLinkDTO struct {
	ID                    string  `json:"id"`
	Filename              string  `json:"filename"`
	AllowDownload         bool    `json:"allow_download"`
	RequireSignature      bool    `json:"require_signature"`
	SignatureInstructions *string `json:"signature_instructions,omitempty"`
	LogoURL               *string `json:"logo_url,omitempty"`
	Heading               *string `json:"heading,omitempty"`
	CoverLetter           *string `json:"cover_letter,omitempty"`
}

func toViewerLinkDTO(l *model.Link) ViewerLinkDTO {
	return ViewerLinkDTO{
		ID:                    l.ID,
		Filename:              l.Filename,
		AllowDownload:         l.AllowDownload,
		RequireSignature:      l.RequireSignature,
		SignatureInstructions: l.SignatureInstructions,
		LogoURL:               l.LogoURL,
		Heading:               l.Heading,
		CoverLetter:           l.CoverLetter,
	}
}

// RequestAccess проверяет политику ссылки и при успехе выдаёт временный URL документа
func (h *AccessHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req accessRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.Logger.Warnw("RequestAccess: invalid request body", "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	linkID := chi.URLParam(r, "id")
	res, url, err := h.AccessService.DocumentURL(r.Context(), linkID, requestContext(r, req.Password, req.Email), h.Config.SignedURLTTL())
	if err != nil {
		writeServiceError(w, h.Logger, "RequestAccess", err)
		return
	}
	if !res.Decision.IsGranted() {
		writeDenial(w, res.Decision)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"decision": res.Decision,
		"url":      url,
		"link":     toViewerLinkDTO(res.Link),
	})
}

// ViewDocument проверяет политику и отдаёт содержимое документа
func (h *AccessHandler) ViewDocument(w http.ResponseWriter, r *http.Request) {
	password := r.Header.Get(passwordHeader)
	if password == "" {
		password = r.URL.Query().Get("password")
	}
	download, _ := strconv.ParseBool(r.URL.Query().Get("download"))

	rc := requestContext(r, password, r.URL.Query().Get("email"))
	rc.Download = download
	res, data, err := h.AccessService.OpenDocument(r.Context(), chi.URLParam(r, "id"), rc)
	if err != nil {
		writeServiceError(w, h.Logger, "ViewDocument", err)
		return
	}
	if !res.Decision.IsGranted() {
		writeDenial(w, res.Decision)
		return
	}
	writeDocument(w, res.Link.Filename, http.DetectContentType(data), data, download)
}

// File отдаёт документ по подписанной ссылке хранилища в БД
func (h *AccessHandler) File(w http.ResponseWriter, r *http.Request) {
	if h.Files == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	key := chi.URLParam(r, "key")
	tokenKey, err := h.Files.VerifySignedToken(r.URL.Query().Get("token"))
	if err != nil || tokenKey != key {
		h.Logger.Debugw("File: invalid token", "key", key, "error", err)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	data, contentType, err := h.Files.Open(r.Context(), key)
	if err != nil {
		writeServiceError(w, h.Logger, "File", err)
		return
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	writeDocument(w, h.AccessService.DocumentName(r.Context(), key), contentType, data, false)
}

func writeDocument(w http.ResponseWriter, filename, contentType string, data []byte, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
