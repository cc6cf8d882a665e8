package service

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/auth"
	fsrepo "ERPAdmin/internal/cli/repo/fs"
	"ERPAdmin/internal/fakeapi"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeEnv struct {
	client *api.Client
	srv    *fakeapi.Server
	ts     *httptest.Server
}

// newFakeEnv поднимает fake backend с демо-данными и клиент к нему.
func newFakeEnv(t *testing.T) fakeEnv {
	t.Helper()
	srv, err := fakeapi.Sample(fixedNow)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	st, err := fsrepo.NewSessionFSStore(t.TempDir())
	require.NoError(t, err)
	return fakeEnv{client: api.NewClient(ts.URL, auth.NewTokenStore(st, nil)), srv: srv, ts: ts}
}

func (e fakeEnv) login(t *testing.T) {
	t.Helper()
	_, err := e.client.Login(context.Background(), fakeapi.SampleAdminEmail, fakeapi.SampleAdminPassword)
	require.NoError(t, err)
}
