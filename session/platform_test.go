package session_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/jrsteele09/go-rdp-session/endpoints"
	"github.com/jrsteele09/go-rdp-session/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testUsername  = "u"
	testPassword  = "p"
	testClientID  = "k"
	testUniverse  = "IBM.N"
	tokenResponse = `{"access_token":"T1","refresh_token":"R1","expires_in":300}`
)

type basicAuth struct {
	User, Pass string
	OK         bool
}

type recordedRequest struct {
	Method      string
	Path        string
	Query       url.Values
	AuthHeaders []string
	Accept      string
	ContentType string
	Body        []byte
}

// fakePlatform mimics the token, revoke and data endpoints of the platform.
type fakePlatform struct {
	srv *httptest.Server

	mu            sync.Mutex
	tokenStatus   int
	tokenBody     string
	refreshStatus int
	refreshBody   string
	revokeStatus  int
	dataStatus    int
	dataBody      string
	tokenHold     chan struct{}

	tokenForms  []url.Values
	tokenAuth   []basicAuth
	tokenAccept []string
	revokeForms []url.Values
	revokeAuth  []basicAuth
	data        []recordedRequest
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{
		tokenStatus:   http.StatusOK,
		tokenBody:     tokenResponse,
		refreshStatus: http.StatusOK,
		refreshBody:   `{"access_token":"T2","refresh_token":"R2","expires_in":"600"}`,
		revokeStatus:  http.StatusOK,
		dataStatus:    http.StatusOK,
		dataBody:      `{"data":[["IBM.N",71.2]]}`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc(endpoints.TokenPath, p.token)
	mux.HandleFunc(endpoints.RevokePath, p.revoke)
	mux.HandleFunc("/", p.dataEndpoint)
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakePlatform) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	user, pass, ok := r.BasicAuth()

	p.mu.Lock()
	p.tokenForms = append(p.tokenForms, r.PostForm)
	p.tokenAuth = append(p.tokenAuth, basicAuth{user, pass, ok})
	p.tokenAccept = append(p.tokenAccept, r.Header.Get("Accept"))
	status, body := p.tokenStatus, p.tokenBody
	if r.PostForm.Get("grant_type") == "refresh_token" {
		status, body = p.refreshStatus, p.refreshBody
	}
	hold := p.tokenHold
	p.mu.Unlock()

	if hold != nil {
		<-hold
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (p *fakePlatform) revoke(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	user, pass, ok := r.BasicAuth()

	p.mu.Lock()
	p.revokeForms = append(p.revokeForms, r.PostForm)
	p.revokeAuth = append(p.revokeAuth, basicAuth{user, pass, ok})
	status := p.revokeStatus
	p.mu.Unlock()

	w.WriteHeader(status)
}

func (p *fakePlatform) dataEndpoint(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	p.mu.Lock()
	p.data = append(p.data, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		AuthHeaders: r.Header.Values("Authorization"),
		Accept:      r.Header.Get("Accept"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	status, respBody := p.dataStatus, p.dataBody
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}

func (p *fakePlatform) set(fn func(p *fakePlatform)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakePlatform) dataRequests() []recordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedRequest(nil), p.data...)
}

func (p *fakePlatform) tokenCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokenForms)
}

func (p *fakePlatform) tokenAuthAt(i int) basicAuth {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenAuth[i]
}

func (p *fakePlatform) tokenAcceptAt(i int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenAccept[i]
}

func (p *fakePlatform) revocations() ([]url.Values, []basicAuth) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.revokeForms...), append([]basicAuth(nil), p.revokeAuth...)
}

func (p *fakePlatform) lastTokenForm() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenForms[len(p.tokenForms)-1]
}

func (p *fakePlatform) newManager(t *testing.T, opts ...session.ManagerOption) *session.Manager {
	t.Helper()
	opts = append([]session.ManagerOption{
		session.WithHTTPClient(p.srv.Client()),
		session.WithLogger(zerolog.Nop()),
	}, opts...)
	m, err := session.NewManager(endpoints.FromBaseURL(p.srv.URL), opts...)
	require.NoError(t, err)
	return m
}

func testCredentials() session.Credentials {
	return session.Credentials{Username: testUsername, Password: testPassword, ClientID: testClientID}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
