package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campshare/internal/dispatch"
	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/notify"
	"github.com/example/campshare/internal/state"
	"github.com/example/campshare/internal/storage"
	"github.com/example/campshare/internal/testfixtures"
)

type testEnv struct {
	backend storage.Store
	store   *state.Store
	feed    *notify.Store
	clock   *testfixtures.Clock
	admin   model.User
	regular model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	backend := storage.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("rec")

	store := state.NewStore(backend, "", ids.NextFunc(), clock.NowFunc(), nil)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("state load: %v", err)
	}

	feed := notify.NewStore(backend, testfixtures.NewIDGenerator("note").NextFunc(), clock.NowFunc(), nil)
	if err := feed.Load(ctx); err != nil {
		t.Fatalf("notify load: %v", err)
	}
	if err := feed.Clear(ctx); err != nil {
		t.Fatalf("notify clear: %v", err)
	}

	admin, ok := store.UserByPhone("+15551234567")
	if !ok {
		t.Fatal("seed admin missing")
	}
	regular, ok := store.UserByPhone("+15559876543")
	if !ok {
		t.Fatal("seed regular user missing")
	}

	return &testEnv{
		backend: backend,
		store:   store,
		feed:    feed,
		clock:   clock,
		admin:   admin,
		regular: regular,
	}
}

type recordingEmailSender struct {
	sent []dispatch.Email
	err  error
}

func (s *recordingEmailSender) SendEmail(_ context.Context, email dispatch.Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

type recordingSMSSender struct {
	sent []dispatch.SMS
	err  error
}

func (s *recordingSMSSender) SendSMS(_ context.Context, sms dispatch.SMS) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sms)
	return nil
}

var errProviderDown = errors.New("provider down")
