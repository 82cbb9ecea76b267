package logware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/benbjohnson/clock"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"
)

// recordedRequest is what fakeAPI saw for one call.
type recordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Body          []byte
	Authorization string
}

// fakeAPI serves both the main API (under /api) and the chain-data service (under /tx).
type fakeAPI struct {
	mu        sync.Mutex
	token     string // issued on login, empty means login returns no token
	status    int
	location  string
	body      string
	logins    int
	loginBody []byte
	requests  []recordedRequest
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/api/users/authenticate" {
		f.logins++
		f.loginBody = body
		w.Header().Set("Content-Type", "application/json")
		if f.token == "" {
			_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(AuthResponse{Token: f.token})
		return
	}

	f.requests = append(f.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
	})

	if f.location != "" {
		w.Header().Set("Location", f.location)
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	respBody := f.body
	if respBody == "" {
		respBody = `{"taskId":"42"}`
	}
	_, _ = w.Write([]byte(respBody))
}

func (f *fakeAPI) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

func (f *fakeAPI) lastLoginBody() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginBody
}

func (f *fakeAPI) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

// spyDoer counts and keeps every outgoing request before delegating.
type spyDoer struct {
	mu    sync.Mutex
	calls []*http.Request
	next  HTTPDoer
	err   error // returned instead of delegating when set
}

func (s *spyDoer) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.next.Do(req)
}

func (s *spyDoer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spyDoer) last() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// doerFunc adapts a function to HTTPDoer.
type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// brokenBodyDoer answers every request with status, headers and a body that
// yields partial then fails with errBodyRead.
func brokenBodyDoer(status int, header http.Header, partial string) doerFunc {
	return func(req *http.Request) (*http.Response, error) {
		if header == nil {
			header = http.Header{}
		}
		return &http.Response{
			StatusCode: status,
			Header:     header,
			Body:       io.NopCloser(io.MultiReader(strings.NewReader(partial), iotest.ErrReader(errBodyRead))),
			Request:    req,
		}, nil
	}
}

var (
	errDialFailed = errors.New("dial tcp: connection refused")
	errBodyRead   = errors.New("unexpected EOF")
)

type testEnv struct {
	api    *fakeAPI
	server *httptest.Server
	spy    *spyDoer
	clock  *clock.Mock
	client *Client
}

// newTestEnv builds a client wired to a fake API, a spy transport and a mock clock.
func newTestEnv(t *testing.T, api *fakeAPI, mutate func(*Config)) *testEnv {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	spy := &spyDoer{next: server.Client()}
	mock := clock.NewMock()

	config := Config{
		URL:          server.URL + "/api",
		ChainDataURL: server.URL,
		Username:     "ingest",
		Password:     "secret",
		HTTPClient:   spy,
		Clock:        mock,
		Logger:       testr.New(t),
	}
	if mutate != nil {
		mutate(&config)
	}

	client, err := New(config)
	require.NoError(t, err)

	return &testEnv{api: api, server: server, spy: spy, clock: mock, client: client}
}
