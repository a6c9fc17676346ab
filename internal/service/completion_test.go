package service

import (
	"DocBase/internal/model"
	"DocBase/internal/notify"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSig(t *testing.T, e *testEnv, linkID, email, name string) {
	t.Helper()
	req, err := NewSignatureRequest(linkID, email, name, "sig", model.SignatureDrawn, "", true)
	require.NoError(t, err)
	_, err = e.ledger.RecordSignature(context.Background(), req)
	require.NoError(t, err)
}

func certificateEvents(t *testing.T, e *testEnv, linkID string) []model.SignatureEvent {
	t.Helper()
	events, err := e.ledger.Events(context.Background(), linkID)
	require.NoError(t, err)
	var out []model.SignatureEvent
	for _, ev := range events {
		if ev.EventType == model.EventCertificateGenerated {
			out = append(out, ev)
		}
	}
	return out
}

func TestCompletionDetector_BelowThreshold(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireSignature: true})

	res, err := e.completion.CheckCompletion(ctx, link.ID)
	require.NoError(t, err)
	assert.False(t, res.Complete)

	recordSig(t, e, link.ID, "owner@example.com", "Owner")
	res, err = e.completion.CheckCompletion(ctx, link.ID)
	require.NoError(t, err)
	assert.False(t, res.Complete)
	assert.False(t, res.Notified)
	assert.Len(t, res.Signers, 1)
	assert.Empty(t, certificateEvents(t, e, link.ID))
	assert.Empty(t, e.notifier.mailsWith(notify.TemplateSignatureComplete))
}

func TestCompletionDetector_NotifiesExactlyOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{Filename: "nda.pdf", RequireSignature: true})

	recordSig(t, e, link.ID, "owner@example.com", "Owner")
	recordSig(t, e, link.ID, "client@example.com", "Client")

	res, err := e.completion.CheckCompletion(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.True(t, res.Notified)
	assert.Equal(t, []string{"owner@example.com", "client@example.com"}, res.SignerEmails())

	mails := e.notifier.mailsWith(notify.TemplateSignatureComplete)
	require.Len(t, mails, 2)
	assert.ElementsMatch(t, []string{"owner@example.com", "client@example.com"}, []string{mails[0].To, mails[1].To})
	assert.Equal(t, "nda.pdf", mails[0].Payload.DocumentName)
	assert.Len(t, e.notifier.slack, 1)

	certs := certificateEvents(t, e, link.ID)
	require.Len(t, certs, 1)
	var meta struct {
		AllSigners []struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"all_signers"`
	}
	require.NoError(t, json.Unmarshal(certs[0].Metadata, &meta))
	require.Len(t, meta.AllSigners, 2)
	assert.Equal(t, "owner@example.com", meta.AllSigners[0].Email)

	// повторная проверка и третий подписант не порождают новых уведомлений
	res, err = e.completion.CheckCompletion(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.False(t, res.Notified)

	recordSig(t, e, link.ID, "third@example.com", "Third")
	res, err = e.completion.CheckCompletion(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.False(t, res.Notified)
	assert.Len(t, res.Signers, 3)

	assert.Len(t, e.notifier.mailsWith(notify.TemplateSignatureComplete), 2)
	assert.Len(t, certificateEvents(t, e, link.ID), 1)
}

func TestCompletionDetector_DeliveryFailureKeepsCompletion(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.notifier.err = notify.ErrNotConfigured
	owner := e.mustUser(t, "owner@example.com", "Owner")
	link := e.mustLink(t, owner.ID, LinkInput{RequireSignature: true})

	recordSig(t, e, link.ID, "owner@example.com", "Owner")
	recordSig(t, e, link.ID, "client@example.com", "Client")

	res, err := e.completion.CheckCompletion(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Len(t, certificateEvents(t, e, link.ID), 1)
}
