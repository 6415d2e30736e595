package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	xoauth2 "golang.org/x/oauth2"
)

// Dispatch sends req with the session's bearer token. The session must be
// Open; otherwise Dispatch fails with ErrSessionNotOpen before any network
// call. A non-200 answer or a transport failure is a *RequestError and leaves
// the session Open.
func (m *Manager) Dispatch(ctx context.Context, s *Session, req Request) (*Response, error) {
	method, err := req.method()
	if err != nil {
		recordDispatch("invalid", 0, outcomeInvalid)
		return nil, &RequestError{Err: err}
	}
	if err := m.owns(s); err != nil {
		recordDispatch(method, 0, "precondition")
		return nil, &RequestError{Err: err}
	}
	if s.State() != Open {
		recordDispatch(method, 0, "precondition")
		return nil, &RequestError{Err: ErrSessionNotOpen}
	}

	if observed := s.RefreshToken(); m.autoRefresh && observed != "" && s.Stale(m.nowTime(), m.refreshMargin) {
		if err := m.refreshIfStale(ctx, s, observed); err != nil {
			return nil, &RequestError{Err: fmt.Errorf("refresh before dispatch: %w", err)}
		}
	}

	state, tok := s.snapshot()
	if state != Open || tok == nil {
		recordDispatch(method, 0, "precondition")
		return nil, &RequestError{Err: ErrSessionNotOpen}
	}

	target, err := m.endpoints.Resolve(req.URL)
	if err != nil {
		recordDispatch(method, 0, outcomeInvalid)
		return nil, &RequestError{Err: err}
	}
	httpReq, err := newHTTPRequest(ctx, method, target, req)
	if err != nil {
		recordDispatch(method, 0, outcomeInvalid)
		return nil, &RequestError{Err: err}
	}

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			recordDispatch(method, 0, "ratelimit")
			return nil, &RequestError{Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	logger := m.logger.With().Str("session_id", s.id).Str("method", method).Str("url", target).Logger()

	resp, err := m.bearerClient(tok).Do(httpReq)
	if err != nil {
		recordDispatch(method, 0, outcomeTransport)
		rerr := &RequestError{Err: &TransportError{Op: method, URL: target, Err: err}}
		logger.Err(rerr).Msg("Data request failed")
		return nil, rerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		recordDispatch(method, 0, outcomeTransport)
		rerr := &RequestError{StatusCode: resp.StatusCode, Header: resp.Header, Err: &TransportError{Op: method, URL: target, Err: err}}
		logger.Err(rerr).Msg("Data request failed")
		return nil, rerr
	}

	recordDispatch(method, resp.StatusCode, "")
	if resp.StatusCode != http.StatusOK {
		rerr := &RequestError{StatusCode: resp.StatusCode, Body: string(body), Header: resp.Header}
		logger.Err(rerr).Msg("Data request rejected")
		return nil, rerr
	}

	logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("Data request complete")
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// bearerClient wraps the manager's transport so that every request carries
// exactly one Authorization header for tok.
func (m *Manager) bearerClient(tok *xoauth2.Token) *http.Client {
	return &http.Client{
		Transport: &xoauth2.Transport{
			Source: xoauth2.StaticTokenSource(tok),
			Base:   m.httpClient.Transport,
		},
		CheckRedirect: m.httpClient.CheckRedirect,
		Jar:           m.httpClient.Jar,
		Timeout:       m.httpClient.Timeout,
	}
}

func newHTTPRequest(ctx context.Context, method, target string, req Request) (*http.Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("url %q: %w", target, ErrInvalidRequest)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if method == http.MethodPost && req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}
