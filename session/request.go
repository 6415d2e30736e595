package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Request describes one authenticated call. It has no identity beyond a single
// dispatch.
type Request struct {
	// Method is GET or POST.
	Method string
	// URL is absolute, or relative to the manager's base URL ("data/...").
	URL string
	// Query parameters; order is irrelevant.
	Query map[string]string
	// Body is marshalled as JSON for POST requests.
	Body any
}

// Get builds a GET request with query parameters.
func Get(url string, query map[string]string) Request {
	return Request{Method: http.MethodGet, URL: url, Query: query}
}

// Post builds a POST request with a JSON body.
func Post(url string, body any) Request {
	return Request{Method: http.MethodPost, URL: url, Body: body}
}

func (r Request) method() (string, error) {
	switch m := strings.ToUpper(strings.TrimSpace(r.Method)); m {
	case "":
		return http.MethodGet, nil
	case http.MethodGet, http.MethodPost:
		return m, nil
	default:
		return "", fmt.Errorf("%q: %w", r.Method, ErrUnsupportedMethod)
	}
}

// Response is the read-only result of a successful dispatch.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func (r *Response) String() string {
	return string(r.Body)
}
