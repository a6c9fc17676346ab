package handlers_test

import (
	"DocBase/internal/config"
	"DocBase/internal/handlers"
	"DocBase/internal/model"
	"DocBase/internal/notify"
	"DocBase/internal/repo"
	"DocBase/internal/service"
	"DocBase/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedMail struct {
	To       string
	Template notify.Template
	Payload  notify.Payload
}

// recordingNotifier запоминает уведомления вместо отправки.
type recordingNotifier struct {
	mu    sync.Mutex
	mails []capturedMail
}

func (n *recordingNotifier) Notify(_ context.Context, recipient string, tmpl notify.Template, payload notify.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mails = append(n.mails, capturedMail{To: recipient, Template: tmpl, Payload: payload})
	return nil
}

func (n *recordingNotifier) NotifySlack(context.Context, string, string) error { return nil }

func (n *recordingNotifier) count(tmpl notify.Template) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.mails {
		if m.Template == tmpl {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) last(tmpl notify.Template) (capturedMail, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.mails) - 1; i >= 0; i-- {
		if n.mails[i].Template == tmpl {
			return n.mails[i], true
		}
	}
	return capturedMail{}, false
}

// apiEnv полный сервер поверх in-memory SQLite и хранилища документов в БД.
type apiEnv struct {
	router   http.Handler
	cfg      *config.Config
	users    *service.UserService
	notifier *recordingNotifier
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db, err := repo.InitDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	cfg := &config.Config{
		AuthSecret:      "test-secret",
		BlobMaxSizeMB:   1,
		SignedURLTTLSec: 60,
		MagicLinkTTLSec: 300,
		ServerURL:       "http://localhost:8081",
	}
	logger := zap.NewNop().Sugar()
	notifier := &recordingNotifier{}

	users := repo.NewUserRepository(db)
	links := repo.NewLinkRepository(db)
	signatures := repo.NewSignatureRepository(db)
	viewers := repo.NewViewerRepository(db)
	files := storage.NewDBStore(repo.NewBlobRepository(db), cfg.ServerURL, cfg.AuthSecret)

	userSvc := service.NewUserService(users)
	ledger := service.NewSignatureLedger(signatures)
	tracker := service.NewViewerTracker(viewers, logger)
	completion := service.NewCompletionDetector(signatures, links, notifier, "", logger)

	h := handlers.NewHandler(handlers.Services{
		Users:     userSvc,
		MagicLink: service.NewMagicLinkService(userSvc, links, notifier, cfg.AuthSecret, cfg.ServerURL, cfg.MagicLinkTTL()),
		Links:     service.NewLinkService(links, files, tracker, logger),
		Access:    service.NewAccessService(links, service.NewPolicyEvaluator(ledger), tracker, files, notifier, "", logger),
		Signing:   service.NewSigningService(links, users, ledger, completion, notifier, "", logger),
		Files:     files,
	}, logger, cfg)

	return &apiEnv{router: h.Router, cfg: cfg, users: userSvc, notifier: notifier}
}

func (e *apiEnv) mustUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), email, "password", "")
	require.NoError(t, err)
	return u
}

func (e *apiEnv) do(t *testing.T, req *http.Request, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		addAuthCookie(t, req, user.ID, user.Email, e.cfg.AuthSecret)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *apiEnv) doJSON(t *testing.T, method, path string, body any, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req, user)
}

// createLink загружает документ через multipart и возвращает созданную ссылку.
func (e *apiEnv) createLink(t *testing.T, owner *model.User, fields map[string]string) handlers.LinkDTO {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "contract.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4 contract"))
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/links", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := e.do(t, req, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var link handlers.LinkDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &link))
	return link
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

func signBody(name string) map[string]any {
	return map[string]any{
		"name":             name,
		"signature_data":   "data:image/png;base64,AAAA",
		"signature_type":   "drawn",
		"consent_accepted": true,
	}
}

func rfc3339(t time.Time) string { return t.UTC().Format(time.RFC3339) }
