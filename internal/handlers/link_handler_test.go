package handlers_test

import (
	"DocBase/internal/handlers"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinks_CRUD(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	other := e.mustUser(t, "other@example.com")

	link := e.createLink(t, owner, map[string]string{"password": "pw", "allow_download": "false", "heading": "Q3 deck"})
	assert.Equal(t, "contract.pdf", link.Filename)
	assert.True(t, link.HasPassword)
	assert.False(t, link.AllowDownload)
	require.NotNil(t, link.Heading)
	assert.Equal(t, "Q3 deck", *link.Heading)

	rr := e.doJSON(t, http.MethodGet, "/api/links/"+link.ID, nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password_hash")
	assert.NotContains(t, rr.Body.String(), "$2a$")

	rr = e.doJSON(t, http.MethodGet, "/api/links", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []handlers.LinkDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rr = e.doJSON(t, http.MethodGet, "/api/links/"+link.ID, nil, other)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = e.doJSON(t, http.MethodGet, "/api/links", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.doJSON(t, http.MethodPatch, "/api/links/"+link.ID, map[string]any{"remove_password": true, "require_email": true}, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated handlers.LinkDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.False(t, updated.HasPassword)
	assert.True(t, updated.RequireEmail)

	rr = e.doJSON(t, http.MethodPatch, "/api/links/"+link.ID, map[string]any{"require_email": false}, other)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.doJSON(t, http.MethodDelete, "/api/links/"+link.ID, nil, other)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = e.doJSON(t, http.MethodDelete, "/api/links/"+link.ID, nil, owner)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = e.doJSON(t, http.MethodGet, "/api/links/"+link.ID, nil, owner)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLinks_DownloadFlag(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")
	link := e.createLink(t, owner, map[string]string{"allow_download": "false"})

	rr := e.do(t, httptest.NewRequest(http.MethodGet, "/api/view-document/"+link.ID+"?download=1", nil), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(t, httptest.NewRequest(http.MethodGet, "/api/view-document/"+link.ID, nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Disposition"), "inline"))
}

func TestLinks_CreateRequiresFile(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.mustUser(t, "owner@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rr := e.do(t, req, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
