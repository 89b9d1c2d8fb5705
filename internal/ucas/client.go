package ucas

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"ucas-grades/internal/httpx"
)

// Client talks to the two UCAS hosts: the digital search frontend (HTML)
// and the services API (JSON). One Client is shared by a whole run; the
// limiter keeps services calls under the implicit quota.
type Client struct {
	SearchBaseURL   string
	ServicesBaseURL string
	HTTP            *http.Client
	Retry           httpx.RetryConfig
	Limiter         *httpx.Limiter

	mux        sync.Mutex
	failedURIs []string
}

func New(searchBaseURL, servicesBaseURL string) *Client {
	return &Client{
		SearchBaseURL:   searchBaseURL,
		ServicesBaseURL: servicesBaseURL,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // por-request
		},
		Retry:   httpx.DefaultRetryConfig(),
		Limiter: httpx.NewLimiter(10, time.Minute),
	}
}

// noteFailure records a URI whose retry budget was exhausted, for the
// errors.txt report at the end of a run.
func (c *Client) noteFailure(uri string) {
	c.mux.Lock()
	c.failedURIs = append(c.failedURIs, uri)
	c.mux.Unlock()
}

// FailedURIs returns the URIs that failed after all retries, in order.
func (c *Client) FailedURIs() []string {
	c.mux.Lock()
	defer c.mux.Unlock()
	out := make([]string, len(c.failedURIs))
	copy(out, c.failedURIs)
	return out
}

// SchemaError marks a 2xx response whose payload is semantically unusable
// (missing required keys). Retrying will not fix a malformed response, so
// it is surfaced immediately.
type SchemaError struct {
	URL    string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ucas: schema error: %s url=%s", e.Reason, e.URL)
}
