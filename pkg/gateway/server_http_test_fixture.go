package gateway

import (
	"net/http"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

// inMemoryTransport routes HTTP requests through the fiber test engine of a
// gateway instance, so tests exercise the full middleware and routing stack
// without binding a network listener.
type inMemoryTransport struct {
	t       *testing.T
	srv     *ServerHTTP
	timeout int
}

func (tr *inMemoryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr.t.Helper()
	return tr.srv.app.Test(req, tr.timeout)
}

// ServerTestFixture wraps a fully wired gateway behind an in-memory
// transport. Each fixture owns its own server instance, keeping tests that
// mutate draft state isolated from each other.
type ServerTestFixture struct {
	t         *testing.T
	transport http.RoundTripper
}

// Client returns a resty client whose requests hit the fixture's gateway
// directly. Transport-level failures fail the test immediately.
func (f *ServerTestFixture) Client() *resty.Client {
	f.t.Helper()

	c := resty.New()
	c.OnError(func(r *resty.Request, err error) {
		require.NoError(f.t, err, "HTTP request ended with unexpected error")
	})
	c.GetClient().Transport = f.transport

	return c
}

// NewServerTestFixture builds a gateway from the given options and exposes
// it through an in-memory transport. A timeout of -1 disables the fiber test
// engine's request deadline.
func NewServerTestFixture(t *testing.T, opts ...ServerOption) *ServerTestFixture {
	return &ServerTestFixture{
		t: t,
		transport: &inMemoryTransport{
			t:       t,
			timeout: -1,
			srv:     New(opts...),
		},
	}
}
