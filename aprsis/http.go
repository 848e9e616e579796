package aprsis

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/aprsgo/aprsis/aprs"
)

// requestTimeout bounds a single HTTP submission.
const requestTimeout = 30 * time.Second

// HTTP is the one-shot POST transport. Each Send submits the auth line
// and one frame to the configured endpoint; only a 204 response counts
// as success.
type HTTP struct {
	user     string
	password string
	auth     string

	url     string
	headers map[string]string

	client *resty.Client
	logger *log.Logger
}

// NewHTTP builds an HTTP transport. An empty url falls back to the
// standard submission endpoint and nil headers to DefaultHTTPHeaders.
func NewHTTP(user, password, url string, headers map[string]string, logger *log.Logger) *HTTP {
	if url == "" {
		url = DefaultURL
	}
	if headers == nil {
		headers = DefaultHTTPHeaders
	}

	return &HTTP{
		user:     user,
		password: password,
		auth:     authLine(user, password),
		url:      url,
		headers:  headers,
		logger:   ensureLogger(logger),
	}
}

// Start binds the POST capability. No connection is made until Send.
func (h *HTTP) Start() error {
	h.client = resty.New().SetTimeout(requestTimeout)
	return nil
}

// Send POSTs "<auth>\n<frame>" to the endpoint and returns the number
// of body bytes submitted. Any response other than 204 No Content, and
// any request failure, is an error; success is never inferred.
func (h *HTTP) Send(frame aprs.Frame) (int, error) {
	if h.client == nil {
		return 0, ErrNotConnected
	}

	h.logger.Infof("sending frame %q", frame.String())
	body := h.auth + "\n" + frame.String()

	resp, err := h.client.R().
		SetHeaders(h.headers).
		SetBody(body).
		Post(h.url)
	if err != nil {
		return 0, fmt.Errorf("failed to submit frame: %w", err)
	}

	if resp.StatusCode() != http.StatusNoContent {
		return 0, fmt.Errorf("server rejected frame: status %d", resp.StatusCode())
	}

	return len(body), nil
}

// Receive is not supported over HTTP.
func (h *HTTP) Receive(callback func(aprs.Frame)) error {
	return ErrReceiveUnsupported
}

// Close drops the POST capability.
func (h *HTTP) Close() error {
	h.client = nil
	return nil
}
