package service

import (
	"DocBase/internal/notify"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService_EmailGateRecordsViewers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireEmail: true})

	res, err := e.access.RequestAccess(ctx, link.ID, RequestContext{ViewerEmail: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)

	res, err = e.access.RequestAccess(ctx, link.ID, RequestContext{ViewerEmail: "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)

	stats, err := e.tracker.Analytics(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.AllViewers)
	assert.Equal(t, int64(2), stats.UniqueViewers)
	require.Len(t, stats.Viewers, 2)

	// повторный просмотр тем же email учитывается, но уникальных не прибавляет
	_, err = e.access.RequestAccess(ctx, link.ID, RequestContext{ViewerEmail: "A@x.com"})
	require.NoError(t, err)
	stats, err = e.tracker.Analytics(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.AllViewers)
	assert.Equal(t, int64(2), stats.UniqueViewers)
}

func TestAccessService_EmailGateWithoutIdentity(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireEmail: true})

	res, err := e.access.RequestAccess(ctx, link.ID, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, DeniedEmailRequired, res.Decision)

	// вошедший пользователь проходит под своим email
	res, err = e.access.RequestAccess(ctx, link.ID, RequestContext{AuthenticatedEmail: "user@x.com"})
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)

	stats, err := e.tracker.Analytics(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.AllViewers)
	assert.Equal(t, "user@x.com", stats.Viewers[0].Email)
}

func TestAccessService_SignatureGate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireSignature: true})

	res, err := e.access.RequestAccess(ctx, link.ID, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, DeniedAuthRequired, res.Decision)

	rc := RequestContext{AuthenticatedEmail: "c@x.com"}
	res, err = e.access.RequestAccess(ctx, link.ID, rc)
	require.NoError(t, err)
	assert.Equal(t, DeniedSignatureRequired, res.Decision)

	out := e.sign(t, link.ID, "c@x.com", "C")
	assert.False(t, out.Completion.Complete)

	res, err = e.access.RequestAccess(ctx, link.ID, rc)
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)
}

func TestAccessService_CompletionScenario(t *testing.T) {
	e := newTestEnv(t)
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireSignature: true})

	e.sign(t, link.ID, "c@x.com", "C")
	out := e.sign(t, link.ID, "d@x.com", "D")

	assert.True(t, out.Completion.Complete)
	assert.Equal(t, []string{"c@x.com", "d@x.com"}, out.Completion.SignerEmails())
	assert.Len(t, certificateEvents(t, e, link.ID), 1)
	assert.Len(t, e.notifier.mailsWith(notify.TemplateSignatureComplete), 2)
}

func TestAccessService_PasswordGateHasNoSideEffects(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{Password: "letmein"})

	res, err := e.access.RequestAccess(ctx, link.ID, RequestContext{SubmittedPassword: "nope", ViewerEmail: "v@x.com"})
	require.NoError(t, err)
	assert.Equal(t, DeniedPasswordIncorrect, res.Decision)

	res, data, err := e.access.OpenDocument(ctx, link.ID, RequestContext{SubmittedPassword: "letmein", ViewerEmail: "v@x.com"})
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)

	stats, err := e.tracker.Analytics(ctx, link.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.AllViewers)
	sigs, err := e.ledger.ListSigners(ctx, link.ID)
	require.NoError(t, err)
	assert.Empty(t, sigs)
	assert.Empty(t, e.notifier.slackTexts())
}

func TestAccessService_ExpiredAndMissing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{
		Password:         "pw",
		RequireEmail:     true,
		RequireSignature: true,
		ExpiresAt:        ptrTime(time.Now().Add(-time.Minute)),
	})

	res, u, err := e.access.DocumentURL(ctx, link.ID, RequestContext{AuthenticatedEmail: "a@x.com", SubmittedPassword: "pw"}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, DeniedExpired, res.Decision)
	assert.Empty(t, u)

	_, err = e.access.RequestAccess(ctx, "00000000-0000-0000-0000-000000000000", RequestContext{})
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestAccessService_DocumentURL(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{})

	res, u, err := e.access.DocumentURL(ctx, link.ID, RequestContext{}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)
	assert.Contains(t, u, "/api/files/"+link.ID+"?token=")
}

func TestAccessService_RefusedDownloadIsNotAView(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireEmail: true, AllowDownload: false})

	_, data, err := e.access.OpenDocument(ctx, link.ID, RequestContext{ViewerEmail: "a@x.com", Download: true})
	require.ErrorIs(t, err, ErrDownloadNotAllowed)
	assert.Nil(t, data)

	stats, err := e.tracker.Analytics(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.AllViewers)
	assert.Empty(t, e.notifier.slackTexts())

	// обычный просмотр той же ссылки разрешён и учитывается
	res, data, err := e.access.OpenDocument(ctx, link.ID, RequestContext{ViewerEmail: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)
	assert.NotEmpty(t, data)
	stats, err = e.tracker.Analytics(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.AllViewers)
}

func TestAccessService_DownloadWithoutEmailGate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	closed := e.mustLink(t, owner.ID, LinkInput{AllowDownload: false})
	open := e.mustLink(t, owner.ID, LinkInput{AllowDownload: true})

	_, _, err := e.access.OpenDocument(ctx, closed.ID, RequestContext{Download: true})
	assert.ErrorIs(t, err, ErrDownloadNotAllowed)

	res, data, err := e.access.OpenDocument(ctx, open.ID, RequestContext{Download: true})
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)
	assert.NotEmpty(t, data)
}

func TestAccessService_ViewedSlackMessageIsAsync(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireEmail: true})

	res, err := e.access.RequestAccess(ctx, link.ID, RequestContext{ViewerEmail: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, Granted, res.Decision)
	// отмена запроса не отменяет уведомление
	cancel()

	assert.Eventually(t, func() bool {
		texts := e.notifier.slackTexts()
		return len(texts) == 1 && strings.Contains(texts[0], "a@x.com")
	}, 2*time.Second, 10*time.Millisecond)
}
