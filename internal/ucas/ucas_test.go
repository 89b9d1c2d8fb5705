package ucas

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"ucas-grades/internal/httpx"
)

// routeTripper dispatches mock responses per request and records every
// request it sees (including body) for assertions.
type routeTripper struct {
	handler func(req *http.Request, body string) *http.Response

	mux      sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	method string
	url    string
	body   string
}

func (rt *routeTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		req.Body.Close()
		body = string(b)
	}

	rt.mux.Lock()
	rt.requests = append(rt.requests, recordedRequest{req.Method, req.URL.String(), body})
	rt.mux.Unlock()

	resp := rt.handler(req, body)
	if resp == nil {
		return nil, fmt.Errorf("no route for %s %s", req.Method, req.URL)
	}
	return resp, nil
}

func (rt *routeTripper) count(substr string) int {
	rt.mux.Lock()
	defer rt.mux.Unlock()
	n := 0
	for _, r := range rt.requests {
		if strings.Contains(r.url, substr) {
			n++
		}
	}
	return n
}

func jsonResponse(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func htmlResponse(body string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", "text/html")
	return &http.Response{
		StatusCode: 200,
		Header:     h,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func searchPageHTML(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><app-courses-view>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<app-course><article id=%q><header><h2>Course</h2></header></article></app-course>`, id)
	}
	b.WriteString("</app-courses-view></body></html>")
	return b.String()
}

// newTestClient wires a Client to a mock transport with fast retries and
// no rate limiting.
func newTestClient(rt *routeTripper) *Client {
	c := New("https://digital.test", "https://services.test")
	c.HTTP = &http.Client{Transport: rt}
	c.Retry = httpx.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retry5xx:    true,
	}
	c.Limiter = nil
	return c
}
