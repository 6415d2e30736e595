package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/require"
)

type platform struct {
	mu          sync.Mutex
	tokenStatus int
	paths       []string
	revoked     []string
}

func newPlatform(t *testing.T) (*platform, *httptest.Server) {
	t.Helper()
	p := &platform{tokenStatus: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		switch {
		case r.URL.Path == "/auth/oauth2/v1/token":
			w.WriteHeader(p.tokenStatus)
			_, _ = io.WriteString(w, `{"access_token":"T1","refresh_token":"R1","expires_in":"300"}`)
		case r.URL.Path == "/auth/oauth2/v1/revoke":
			_ = r.ParseForm()
			p.revoked = append(p.revoked, r.PostForm.Get("token"))
		case strings.HasPrefix(r.URL.Path, "/data/company-fundamentals"):
			p.paths = append(p.paths, r.URL.Path)
			http.Error(w, `{"error":"entitlement"}`, http.StatusForbidden)
		default:
			p.paths = append(p.paths, r.URL.Path)
			_, _ = io.WriteString(w, `{"path":"`+r.URL.Path+`"}`)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("RDP_BASE_URL", srv.URL)
	t.Setenv("RDP_USERNAME", "u")
	t.Setenv("RDP_PASSWORD", "p")
	t.Setenv("RDP_APP_KEY", "k")
	t.Setenv("RDP_CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "disabled")
	return p, srv
}

func TestRun_FailedCallDoesNotStopOthers(t *testing.T) {
	p, _ := newPlatform(t)
	var out bytes.Buffer

	require.NoError(t, run([]string{"--no-banner", "--universe", "IBM.N"}, &out))

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.paths, 4)
	require.Equal(t, []string{"T1"}, p.revoked)

	require.Contains(t, out.String(), "ESG scores:")
	require.NotContains(t, out.String(), "Company fundamentals:")
	require.Contains(t, out.String(), "Business summary:")
	require.Contains(t, out.String(), "Historical pricing events:")
	require.Contains(t, out.String(), ": Closed")
}

func TestRun_KeepOpenSkipsRevoke(t *testing.T) {
	p, _ := newPlatform(t)

	require.NoError(t, run([]string{"--no-banner", "--keep-open"}, io.Discard))

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Empty(t, p.revoked)
}

func TestRun_AuthFailure(t *testing.T) {
	p, _ := newPlatform(t)
	p.tokenStatus = http.StatusUnauthorized

	err := run([]string{"--no-banner"}, io.Discard)
	require.Error(t, err)
	require.Contains(t, err.Error(), "open session")

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Empty(t, p.paths)
}

func TestRun_Help(t *testing.T) {
	err := run([]string{"--help"}, io.Discard)
	var ferr *flags.Error
	require.True(t, errors.As(err, &ferr))
	require.Equal(t, flags.ErrHelp, ferr.Type)
}

func TestDemoCalls(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	calls := demoCalls(&Options{Universe: "IBM.N", RIC: "EUR=", Count: 15}, now)

	require.Len(t, calls, 4)
	require.Equal(t, "2024-03-01T00:00:00.000000000Z", calls[3].request.Query["start"])
}

func TestPrettyJSON(t *testing.T) {
	require.Equal(t, "{\n  \"a\": 1\n}", prettyJSON([]byte(`{"a":1}`)))
	require.Equal(t, "not json", prettyJSON([]byte("not json")))
}

func TestRun_MockPlatform(t *testing.T) {
	for _, name := range []string{"RDP_BASE_URL", "RDP_USERNAME", "RDP_PASSWORD", "RDP_APP_KEY", "RDP_CLIENT_SECRET", "RDP_CONFIG_FILE", "RDP_REFRESH_MARGIN", "ENV"} {
		t.Setenv(name, "")
	}
	t.Setenv("LOG_LEVEL", "disabled")
	var out bytes.Buffer

	require.NoError(t, run([]string{"--no-banner", "--mock", "--universe", "VOD.L"}, &out))

	require.Contains(t, out.String(), "ESG scores:")
	require.Contains(t, out.String(), `"universe": "VOD.L"`)
	require.Contains(t, out.String(), `"user": "mock-user@example.com"`)
	require.Contains(t, out.String(), "Historical pricing events:")
	require.Contains(t, out.String(), ": Closed")
}
