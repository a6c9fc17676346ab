package service

import (
	"DocBase/internal/model"
	"DocBase/internal/notify"
	"DocBase/internal/repo"
	"DocBase/internal/storage"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMail struct {
	To       string
	Template notify.Template
	Payload  notify.Payload
}

// fakeDispatcher запоминает отправленные уведомления вместо доставки.
type fakeDispatcher struct {
	mu    sync.Mutex
	mails []sentMail
	slack []string
	err   error
}

func (f *fakeDispatcher) Notify(_ context.Context, recipient string, tmpl notify.Template, payload notify.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mails = append(f.mails, sentMail{To: recipient, Template: tmpl, Payload: payload})
	return nil
}

func (f *fakeDispatcher) NotifySlack(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.slack = append(f.slack, text)
	return nil
}

func (f *fakeDispatcher) mailsWith(tmpl notify.Template) []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMail
	for _, m := range f.mails {
		if m.Template == tmpl {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeDispatcher) slackTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.slack...)
}

var _ notify.Dispatcher = (*fakeDispatcher)(nil)

// testEnv собирает сервисы поверх отдельной in-memory SQLite.
type testEnv struct {
	users      repo.UserRepository
	links      repo.LinkRepository
	signatures repo.SignatureRepository
	viewers    repo.ViewerRepository
	blobs      storage.BlobStore
	notifier   *fakeDispatcher

	ledger     *SignatureLedger
	completion *CompletionDetector
	tracker    *ViewerTracker
	access     *AccessService
	signing    *SigningService
	linkSvc    *LinkService
	userSvc    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repo.InitDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	e := &testEnv{
		users:      repo.NewUserRepository(db),
		links:      repo.NewLinkRepository(db),
		signatures: repo.NewSignatureRepository(db),
		viewers:    repo.NewViewerRepository(db),
		notifier:   &fakeDispatcher{},
	}
	e.blobs = storage.NewDBStore(repo.NewBlobRepository(db), "http://localhost:8081", "test-secret")
	e.ledger = NewSignatureLedger(e.signatures)
	e.completion = NewCompletionDetector(e.signatures, e.links, e.notifier, "#docs", logger)
	e.tracker = NewViewerTracker(e.viewers, logger)
	e.access = NewAccessService(e.links, NewPolicyEvaluator(e.ledger), e.tracker, e.blobs, e.notifier, "#docs", logger)
	e.signing = NewSigningService(e.links, e.users, e.ledger, e.completion, e.notifier, "#docs", logger)
	e.linkSvc = NewLinkService(e.links, e.blobs, e.tracker, logger)
	e.userSvc = NewUserService(e.users)
	return e
}

func (e *testEnv) mustUser(t *testing.T, email, name string) *model.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &model.User{Email: email, Name: name})
	require.NoError(t, err)
	return u
}

func (e *testEnv) mustLink(t *testing.T, owner int64, in LinkInput) *model.Link {
	t.Helper()
	if in.Filename == "" {
		in.Filename = "contract.pdf"
	}
	l, err := e.linkSvc.CreateLink(context.Background(), owner, in, []byte("%PDF-1.4 test"), "application/pdf")
	require.NoError(t, err)
	return l
}

func (e *testEnv) sign(t *testing.T, linkID, email, name string) SignOutcome {
	t.Helper()
	req, err := NewSignatureRequest(linkID, email, name, "data:image/png;base64,AAAA", model.SignatureDrawn, "go-test", true)
	require.NoError(t, err)
	out, err := e.signing.Sign(context.Background(), req)
	require.NoError(t, err)
	return out
}

func ptrTime(t time.Time) *time.Time { return &t }
