package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/common"
	"github.com/dmitrijs2005/prodauth/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "prodauth-cli"
	maxErrorBody     = 64 << 10
	maxPDFBody       = 32 << 20
)

// Options configures HTTPClient.
type Options struct {
	// BaseURL is the API root, e.g. "http://127.0.0.1:8000/api". Paths such as
	// "/auth/login" are appended to it.
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    logging.Logger

	// Transport overrides the default round tripper.
	Transport http.RoundTripper
}

// HTTPClient talks JSON over HTTP to the backend and turns every failure into
// an *Error.
type HTTPClient struct {
	baseURL   *url.URL
	hc        *http.Client
	userAgent string
	log       logging.Logger

	mu   sync.RWMutex
	auth Authenticator
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opt Options) (*HTTPClient, error) {
	if strings.TrimSpace(opt.BaseURL) == "" {
		return nil, errors.New("base url is required")
	}
	u, err := url.Parse(opt.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("base url has no host")
	}

	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := opt.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	log := opt.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &HTTPClient{
		baseURL:   u,
		hc:        &http.Client{Transport: opt.Transport, Timeout: timeout},
		userAgent: ua,
		log:       log,
	}, nil
}

// SetAuthenticator attaches the session the client reads its bearer token
// from. Passing nil detaches it.
func (c *HTTPClient) SetAuthenticator(a Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
}

func (c *HTTPClient) authenticator() Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

func (c *HTTPClient) sessionToken() string {
	if a := c.authenticator(); a != nil {
		return a.Token()
	}
	return ""
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "auth/login", "", creds, &resp); err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.Status == http.StatusUnauthorized {
			apiErr.Kind = KindInvalidCredentials
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &Error{Kind: KindUnknown, Message: "login response has no access token"}
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "auth/logout", token, nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, token string) (*models.RefreshResponse, error) {
	var resp models.RefreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "auth/refresh", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &Error{Kind: KindUnknown, Message: "refresh response has no access token"}
	}
	return &resp, nil
}

func (c *HTTPClient) Verify(ctx context.Context, serial string) (*models.VerificationResult, error) {
	var res models.VerificationResult
	if err := c.doJSON(ctx, http.MethodGet, "verify/"+pathSegment(serial), c.sessionToken(), nil, &res); err != nil {
		return nil, err
	}
	if res.SerialNumber == "" {
		res.SerialNumber = serial
	}
	return &res, nil
}

// pathSegment escapes s as a single path segment. JoinPath resolves "." and
// ".." segments, so those are percent-encoded as well.
func pathSegment(s string) string {
	switch s {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(s)
}

func (c *HTTPClient) Stats(ctx context.Context) (*models.ScanStats, error) {
	var stats models.ScanStats
	if err := c.doJSON(ctx, http.MethodGet, "verify/stats", c.sessionToken(), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) CertificatePDF(ctx context.Context, id int64) ([]byte, error) {
	var pdf []byte
	path := "certificates/" + strconv.FormatInt(id, 10) + "/pdf"
	if err := c.do(ctx, http.MethodGet, path, c.sessionToken(), nil, "application/pdf", func(r io.Reader) error {
		b, err := io.ReadAll(io.LimitReader(r, maxPDFBody))
		pdf = b
		return err
	}); err != nil {
		return nil, err
	}
	return pdf, nil
}

// doJSON sends body as JSON and decodes a JSON response into out. A nil out
// discards the response; an empty body leaves out untouched.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	return c.do(ctx, method, path, token, body, "application/json", func(r io.Reader) error {
		if out == nil {
			_, err := io.Copy(io.Discard, r)
			return err
		}
		err := json.NewDecoder(r).Decode(out)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	})
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any, accept string, read func(io.Reader) error) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindUnknown, Message: "cannot encode request", Err: err}
		}
		buf = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), buf)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: "cannot build request", Err: err}
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(common.RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerValue(token))
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := errorFromResponse(resp)
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			if a := c.authenticator(); a != nil {
				a.Expire(ctx, token)
			}
		}
		return apiErr
	}

	if err := read(resp.Body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return classifyTransportError(ctxErr)
		}
		return &Error{Kind: KindUnknown, Message: "malformed server response", Err: err}
	}
	return nil
}

func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnknown, Message: "request cancelled", Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

func errorFromResponse(resp *http.Response) *Error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	kind := KindServer
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = KindUnauthorized
	}
	return &Error{
		Kind:    kind,
		Status:  resp.StatusCode,
		Message: messageFromBody(b),
		Err:     errors.New(resp.Status),
	}
}

// messageFromBody understands the error shapes the backend and its proxies
// produce:
//
//	{"detail": "Certificate not found"}
//	{"detail": [{"loc": [...], "msg": "field required"}]}
//	{"error": "bad request"} / {"error": {"message": "..."}}
//	{"message": "..."}
func messageFromBody(b []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}

	if msg := rawMessage(body.Detail); msg != "" {
		return msg
	}
	if msg := rawMessage(body.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(body.Message)
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}
