package handlers

import (
	"DocBase/internal/middleware"
	"DocBase/internal/model"
	"DocBase/internal/service"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignatureHandler подписание и история подписей.
type SignatureHandler struct {
	SigningService *service.SigningService
	Logger         *zap.SugaredLogger
}

func NewSignatureHandler(signingService *service.SigningService, logger *zap.SugaredLogger) *SignatureHandler {
	return &SignatureHandler{SigningService: signingService, Logger: logger}
}

type signRequest struct {
	Name            string `json:"name"`
	SignatureData   string `json:"signature_data"`
	SignatureType   string `json:"signature_type"`
	ConsentAccepted bool   `json:"consent_accepted"`
}

// SignatureDTO подпись без самих данных подписи.
type SignatureDTO struct {
	ID            string              `json:"id"`
	LinkID        string              `json:"link_id"`
	SignerEmail   string              `json:"signer_email"`
	SignerName    string              `json:"signer_name"`
	SignatureType model.SignatureType `json:"signature_type"`
	SignedAt      time.Time           `json:"signed_at"`
}

func toSignatureDTO(s *model.Signature) SignatureDTO {
	return SignatureDTO{
		ID:            s.ID,
		LinkID:        s.LinkID,
		SignerEmail:   s.SignerEmail,
		SignerName:    s.SignerName,
		SignatureType: s.SignatureType,
		SignedAt:      s.SignedAt,
	}
}

func toSignatureDTOs(sigs []model.Signature) []SignatureDTO {
	out := make([]SignatureDTO, 0, len(sigs))
	for i := range sigs {
		out = append(out, toSignatureDTO(&sigs[i]))
	}
	return out
}

// Sign подпись документа текущим пользователем
func (h *SignatureHandler) Sign(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmailFromContext(r.Context())
	if !ok {
		writeDenial(w, service.DeniedAuthRequired)
		return
	}
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Sign: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	sigReq, err := service.NewSignatureRequest(chi.URLParam(r, "id"), email, req.Name, req.SignatureData,
		model.SignatureType(req.SignatureType), r.UserAgent(), req.ConsentAccepted)
	if err != nil {
		writeServiceError(w, h.Logger, "Sign", err)
		return
	}

	out, err := h.SigningService.Sign(r.Context(), sigReq)
	if err != nil {
		writeServiceError(w, h.Logger, "Sign", err)
		return
	}

	status := http.StatusCreated
	if out.AlreadySigned {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"signature":      toSignatureDTO(out.Signature),
		"already_signed": out.AlreadySigned,
		"complete":       out.Completion.Complete,
		"signers":        out.Completion.SignerEmails(),
	})
}

// List история подписей ссылки (владелец или подписант)
func (h *SignatureHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	email, _ := middleware.GetUserEmailFromContext(r.Context())
	sigs, err := h.SigningService.History(r.Context(), chi.URLParam(r, "id"), userID, email)
	if err != nil {
		writeServiceError(w, h.Logger, "ListSignatures", err)
		return
	}
	writeJSON(w, http.StatusOK, toSignatureDTOs(sigs))
}

// Mine документы, подписанные текущим пользователем
func (h *SignatureHandler) Mine(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmailFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sigs, err := h.SigningService.SignedBy(r.Context(), email)
	if err != nil {
		writeServiceError(w, h.Logger, "MySignatures", err)
		return
	}
	writeJSON(w, http.StatusOK, toSignatureDTOs(sigs))
}
