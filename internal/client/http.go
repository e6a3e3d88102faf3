package client

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/cryptonaut/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenPath = "/oauth/token"

	// refreshLeeway is how long before expiry a token is renewed.
	refreshLeeway = 30 * time.Second
)

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RefreshToken string
	UserAgent    string
	Timeout      time.Duration
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
	Logger     logging.Logger
}

type HTTPClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	userAgent    string
	http         *http.Client
	log          logging.Logger
	now          func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	keyMu     sync.Mutex
	rescueKey *rsa.PrivateKey
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Connect exchanges the refresh token for an access token and returns a
// ready client.
func Connect(ctx context.Context, opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base url is empty")
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	c := &HTTPClient{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		userAgent:    opts.UserAgent,
		http:         hc,
		log:          log,
		now:          time.Now,
		refreshToken: opts.RefreshToken,
	}

	c.mu.Lock()
	err := c.refreshLocked(ctx)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.baseURL, err)
	}
	return c, nil
}

// Close drops the session and the cached rescue key.
func (c *HTTPClient) Close() error {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()

	c.keyMu.Lock()
	c.rescueKey = nil
	c.keyMu.Unlock()
	return nil
}

func (c *HTTPClient) refreshLocked(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	c.setUserAgent(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("%w: decode token response: %w", ErrRemoteAPI, err)
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("%w: token response has no access token", ErrRemoteAPI)
	}

	c.accessToken = tr.AccessToken
	if tr.RefreshToken != "" {
		c.refreshToken = tr.RefreshToken
	}
	c.expiresAt = tokenExpiry(tr.AccessToken, tr.ExpiresIn, c.now())

	c.log.Debug(ctx, "access token refreshed", "expires_at", c.expiresAt)
	return nil
}

// tokenExpiry prefers the exp claim of a JWT access token and falls back to
// expires_in. A zero time means the expiry is unknown.
func tokenExpiry(access string, expiresIn int64, now time.Time) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if expiresIn > 0 {
		return now.Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}

// token returns a usable access token, refreshing it when it is about to
// expire.
func (c *HTTPClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken == "" || (!c.expiresAt.IsZero() && !c.now().Add(refreshLeeway).Before(c.expiresAt)) {
		if err := c.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.accessToken, nil
}

// forceRefresh renews the token after the server rejected stale, unless a
// concurrent caller already did.
func (c *HTTPClient) forceRefresh(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != stale && c.accessToken != "" {
		return c.accessToken, nil
	}
	if err := c.refreshLocked(ctx); err != nil {
		return "", err
	}
	return c.accessToken, nil
}

func (c *HTTPClient) setUserAgent(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// do sends an authenticated request and decodes a JSON response into out.
// A 401 triggers one token refresh and one retry.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, query, payload, tok)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.log.Debug(ctx, "request unauthorized, refreshing token", "method", method, "path", path)

		if tok, err = c.forceRefresh(ctx, tok); err != nil {
			return err
		}
		if resp, err = c.send(ctx, method, path, query, payload, tok); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrRemoteAPI, path, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, payload []byte, tok string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setUserAgent(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}
