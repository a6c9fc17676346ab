package handlers_test

import (
	"DocBase/internal/notify"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccess_EmailCaptureAndAnalytics(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, map[string]string{"require_email": "true"})

	rr := e.doJSON(t, http.MethodPost, "/api/links/"+link.ID+"/access", nil, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "denied_email_required", decodeMap(t, rr)["decision"])

	for _, email := range []string{"a@x.com", "b@x.com"} {
		rr = e.doJSON(t, http.MethodPost, "/api/links/"+link.ID+"/access", map[string]string{"email": email}, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		body := decodeMap(t, rr)
		assert.Equal(t, "granted", body["decision"])
		assert.NotEmpty(t, body["url"])
	}

	rr = e.doJSON(t, http.MethodGet, "/api/links/"+link.ID+"/analytics", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decodeMap(t, rr)
	assert.EqualValues(t, 2, stats["all_viewers"])
	assert.EqualValues(t, 2, stats["unique_viewers"])

	// аналитика только для владельца
	stranger := e.mustUser(t, "stranger@example.com")
	rr = e.doJSON(t, http.MethodGet, "/api/links/"+link.ID+"/analytics", nil, stranger)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAccess_PasswordProtectedDocument(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, map[string]string{"password": "s3cret"})
	assert.True(t, link.HasPassword)

	rr := e.do(t, httptest.NewRequest(http.MethodGet, "/api/view-document/"+link.ID, nil), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "denied_password_required", decodeMap(t, rr)["decision"])

	req := httptest.NewRequest(http.MethodGet, "/api/view-document/"+link.ID, nil)
	req.Header.Set("X-Link-Password", "wrong")
	rr = e.do(t, req, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "denied_password_incorrect", decodeMap(t, rr)["decision"])

	req = httptest.NewRequest(http.MethodGet, "/api/view-document/"+link.ID, nil)
	req.Header.Set("X-Link-Password", "s3cret")
	rr = e.do(t, req, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "%PDF-1.4 contract", rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
}

func TestAccess_ExpiredLink(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, map[string]string{
		"password":          "pw",
		"require_signature": "true",
		"expires_at":        rfc3339(time.Now().Add(-time.Hour)),
	})

	rr := e.doJSON(t, http.MethodPost, "/api/links/"+link.ID+"/access", map[string]string{"password": "pw"}, owner)
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, "denied_expired", decodeMap(t, rr)["decision"])

	rr = e.doJSON(t, http.MethodPost, "/api/links/"+link.ID+"/sign", signBody("Owner"), owner)
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, "denied_expired", decodeMap(t, rr)["decision"])
}

func TestAccess_UnknownLink(t *testing.T) {
	e := newAPIEnv(t)
	rr := e.doJSON(t, http.MethodPost, "/api/links/00000000-0000-0000-0000-000000000000/access", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAccess_SignedFileURL(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, nil)

	rr := e.doJSON(t, http.MethodPost, "/api/links/"+link.ID+"/access", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	raw, _ := decodeMap(t, rr)["url"].(string)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	rr = e.do(t, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "%PDF-1.4 contract", rr.Body.String())

	rr = e.do(t, httptest.NewRequest(http.MethodGet, u.Path+"?token=forged", nil), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAccess_MagicLinkSignIn(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, map[string]string{"require_signature": "true"})

	rr := e.doJSON(t, http.MethodPost, "/api/links/"+link.ID+"/magic-link", map[string]string{"email": "viewer@x.com"}, nil)
	require.Equal(t, http.StatusAccepted, rr.Code)

	mail, ok := e.notifier.last(notify.TemplateMagicLink)
	require.True(t, ok)
	assert.Equal(t, "viewer@x.com", mail.To)
	u, err := url.Parse(mail.Payload.URL)
	require.NoError(t, err)

	rr = e.do(t, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, link.ID, decodeMap(t, rr)["link_id"])

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "auth_token" {
			session = c
		}
	}
	require.NotNil(t, session)

	// сессия из magic link аутентифицирует зрителя: дальше нужна подпись
	req := httptest.NewRequest(http.MethodPost, "/api/links/"+link.ID+"/access", nil)
	req.AddCookie(session)
	rr = e.do(t, req, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "denied_signature_required", decodeMap(t, rr)["decision"])

	rr = e.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/confirm?token=bad", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// Запрет скачивания проверяется до учёта просмотра: отказ не попадает в аналитику.
func TestAccess_RefusedDownloadNotCounted(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, map[string]string{"require_email": "true", "allow_download": "false"})

	rr := e.do(t, httptest.NewRequest(http.MethodGet, "/api/view-document/"+link.ID+"?download=1&email=a@x.com", nil), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.doJSON(t, http.MethodGet, "/api/links/"+link.ID+"/analytics", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decodeMap(t, rr)["all_viewers"])

	// обычный просмотр тем же адресом учитывается
	rr = e.do(t, httptest.NewRequest(http.MethodGet, "/api/view-document/"+link.ID+"?email=a@x.com", nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = e.doJSON(t, http.MethodGet, "/api/links/"+link.ID+"/analytics", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decodeMap(t, rr)["all_viewers"])
}

// Файл по подписанной ссылке хранилища отдаётся под исходным именем документа.
func TestAccess_SignedFileKeepsFilename(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, nil)

	rr := e.doJSON(t, http.MethodPost, "/api/links/"+link.ID+"/access", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	raw, _ := decodeMap(t, rr)["url"].(string)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	rr = e.do(t, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	disposition := rr.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "filename=contract.pdf")
	assert.NotContains(t, disposition, link.ID)
}
