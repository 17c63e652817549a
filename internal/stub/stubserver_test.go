package stub_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/stub"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/testutil"
)

// testAnonKey is the anon key newStubServer configures.
const testAnonKey = "anon-test-key"

// newStubServer starts the stub backend on a fresh in-memory database.
// Both are torn down with the test.
func newStubServer(t *testing.T, opts stub.Options) (*stub.Server, *httptest.Server) {
	t.Helper()
	if opts.AnonKey == "" {
		opts.AnonKey = testAnonKey
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := stub.New(testutil.NewTestDB(t), opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}
