package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const successCode = "200"

// TokenSource yields the current access credential, typically by reading
// the persisted session. An empty string means unauthenticated; the
// request is still sent without an Authorization header.
type TokenSource func(ctx context.Context) string

// envelope is the {code, message, data} wrapper every backend response
// is expected to use.
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client issues requests against the API origin and normalizes every
// response through the envelope format. All endpoint methods go through
// Do; none bypass the normalization.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

// Do sends one request and returns the inner data field of the success
// envelope. Failures are classified as *ConfigError (request could not
// be built), *NetworkError (no response), or *RequestError (non-success
// envelope or status).
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if tok := c.token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	return normalize(resp.StatusCode, raw)
}

// normalize unwraps the response envelope. A success code yields exactly
// the data field. Everything else becomes a *RequestError carrying the
// server-supplied code and message, defaulting to the HTTP status and a
// generic message. A non-empty 2xx body that is not an envelope is a
// protocol violation and is rejected the same way; only an empty 2xx
// body passes through.
func normalize(status int, raw []byte) (json.RawMessage, error) {
	var env envelope
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil && env.Code != "" {
		if env.Code == successCode {
			return env.Data, nil
		}
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, &RequestError{Code: env.Code, Message: msg}
	}

	if status < 200 || status > 299 {
		return nil, &RequestError{
			Code:    strconv.Itoa(status),
			Message: http.StatusText(status),
		}
	}
	if len(raw) > 0 {
		return nil, &RequestError{
			Code:    strconv.Itoa(status),
			Message: "request failed",
		}
	}
	return raw, nil
}
